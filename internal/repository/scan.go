package repository

import (
	"database/sql"
	"time"

	"famlink/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func dateFromNull(nt sql.NullTime) *models.Date {
	if !nt.Valid {
		return nil
	}
	d := models.NewDate(nt.Time)
	return &d
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeFromNull(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
