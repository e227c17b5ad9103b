package repository

import (
	"context"
	"testing"

	"famlink/internal/database"
	"famlink/internal/models"
	"famlink/internal/testutil"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}

func createTestAccount(t *testing.T, db *database.DB, name, code string) *models.Account {
	t.Helper()
	a := &models.Account{
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Name:         name,
		InviteCode:   code,
	}
	if err := NewAccountRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("Failed to create account %s: %v", name, err)
	}
	return a
}
