package models

import "time"

// Child represents a child profile shared between its members
type Child struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	BirthDate *Date     `json:"birth_date,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether accountID may see and edit the child.
// The owner counts even if an old row lacks the membership entry.
func (c *Child) HasMember(accountID int64) bool {
	if c.OwnerID == accountID {
		return true
	}
	for _, id := range c.Members {
		if id == accountID {
			return true
		}
	}
	return false
}

// ChildPatch holds optional child fields to change
type ChildPatch struct {
	Name      *string `json:"name,omitempty"`
	BirthDate *Date   `json:"birth_date,omitempty"`
	Gender    *string `json:"gender,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p ChildPatch) IsEmpty() bool {
	return p.Name == nil && p.BirthDate == nil && p.Gender == nil
}

// ApplyTo copies the set fields onto c
func (p ChildPatch) ApplyTo(c *Child) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.BirthDate != nil {
		bd := *p.BirthDate
		c.BirthDate = &bd
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
}
