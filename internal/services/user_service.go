package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"cashflow/internal/auth"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// Profile is what a signed-in user sees about their own account.
type Profile struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

type UserService struct {
	storage *storage.SQLiteRepository
}

func NewUserService(storage *storage.SQLiteRepository) *UserService {
	return &UserService{storage: storage}
}

func (s *UserService) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Name: user.Username, Email: user.Email, IsAuthenticated: user.Verified}, nil
}

// UpdateUsername renames the account. Names are unique across users.
func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", core.Invalidf("username is required")
	}
	if utf8.RuneCountInString(username) < core.MinUsernameLen {
		return "", core.Invalidf("username must be at least %d characters long", core.MinUsernameLen)
	}

	taken, err := s.storage.UsernameTaken(ctx, username, userID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", core.Invalidf("username already exists")
	}
	if err := s.storage.UpdateUsername(ctx, userID, username); err != nil {
		return "", fmt.Errorf("update username: %w", err)
	}

	slog.InfoContext(ctx, "Username updated", "user_id", userID)
	return username, nil
}

// UpdatePassword changes the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" || confirm == "" {
		return core.Invalidf("all fields are required")
	}
	if newPassword != confirm {
		return core.Invalidf("passwords do not match")
	}
	if err := core.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(user.PasswordHash, current)
	if err != nil {
		return err
	}
	if !ok {
		return core.Invalidf("incorrect current password")
	}
	if current == newPassword {
		return core.Invalidf("new password cannot be the same as the old password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.storage.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	slog.InfoContext(ctx, "Password updated", "user_id", userID)
	return nil
}
