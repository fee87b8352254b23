package repository

import (
	"testing"

	"github.com/bloom-miniapp/internal/models"
)

func TestUserGetByTelegramID(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)

	missing, err := repo.GetByTelegramID(42)
	if err != nil {
		t.Fatalf("get missing user failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing user should return nil")
	}

	user := &models.User{TelegramID: 42, Username: "anna", FirstName: "Anna", Status: "active"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := repo.UpdatePhone(user.ID, "+79990000000"); err != nil {
		t.Fatalf("update phone failed: %v", err)
	}

	got, err := repo.GetByTelegramID(42)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if got == nil || got.ID != user.ID || got.Phone != "+79990000000" {
		t.Fatalf("unexpected user: %+v", got)
	}
}
