package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/core"
)

const userColumns = `id, username, email, password_hash, is_verified, verify_otp, verify_otp_expires_at,
	reset_otp, reset_otp_expires_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u                   core.User
		verified            int
		verifyExp, resetExp int64
		created             int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &verified, &u.VerifyOTP, &verifyExp,
		&u.ResetOTP, &resetExp, &created)
	if err != nil {
		return core.User{}, err
	}
	u.Verified = verified == 1
	u.VerifyOTPExpiresAt = timeOrZero(verifyExp)
	u.ResetOTPExpiresAt = timeOrZero(resetExp)
	u.CreatedAt = timeOrZero(created)
	return u, nil
}

// CreateUser stores a new account. Email and username are unique.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := r.nowMillis()
	u.ID = newID()
	u.CreatedAt = time.UnixMilli(now).UTC()

	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, username, email, password_hash, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, boolToInt(u.Verified), now, now)
	if isUniqueViolation(err) {
		return core.User{}, core.Invalidf("user already exists")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID)
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if isNoRows(err) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if isNoRows(err) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether another account already uses username.
func (r *SQLiteRepository) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`, username, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count usernames: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) updateUser(ctx context.Context, op, id, set string, args ...any) error {
	args = append(args, r.nowMillis(), id)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if isUniqueViolation(err) {
		return core.Invalidf("username already exists")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateUsername(ctx context.Context, id, username string) error {
	return r.updateUser(ctx, "update username", id, `username = ?`, username)
}

func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.updateUser(ctx, "update password", id, `password_hash = ?`, hash)
}

func (r *SQLiteRepository) SetVerifyOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.updateUser(ctx, "set verify otp", id, `verify_otp = ?, verify_otp_expires_at = ?`, code, millisOrZero(expiresAt))
}

// MarkVerified flags the account as verified and clears the pending code.
func (r *SQLiteRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateUser(ctx, "mark verified", id, `is_verified = 1, verify_otp = '', verify_otp_expires_at = 0`)
}

func (r *SQLiteRepository) SetResetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.updateUser(ctx, "set reset otp", id, `reset_otp = ?, reset_otp_expires_at = ?`, code, millisOrZero(expiresAt))
}

func (r *SQLiteRepository) ClearResetOTP(ctx context.Context, id string) error {
	return r.updateUser(ctx, "clear reset otp", id, `reset_otp = '', reset_otp_expires_at = 0`)
}
