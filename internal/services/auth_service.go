package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"cashflow/internal/auth"
	"cashflow/internal/core"
	mailer "cashflow/internal/mail"
	"cashflow/internal/storage"
)

// Session is a freshly issued login.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      core.User
}

// AuthService handles sign-up, login, logout and the two one-time-code
// flows (account verification and password reset).
type AuthService struct {
	storage *storage.SQLiteRepository
	tokens  *auth.TokenIssuer
	revoker auth.Revoker
	mail    mailer.Dispatcher
	otpTTL  time.Duration
	now     func() time.Time
}

func NewAuthService(
	storage *storage.SQLiteRepository,
	tokens *auth.TokenIssuer,
	revoker auth.Revoker,
	mail mailer.Dispatcher,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		storage: storage,
		tokens:  tokens,
		revoker: revoker,
		mail:    mail,
		otpTTL:  otpTTL,
		now:     time.Now,
	}
}

// SignUp creates an account and logs it in. The welcome mail is best
// effort.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (Session, error) {
	username = strings.TrimSpace(username)
	email = core.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return Session{}, core.Invalidf("username, email and password are required")
	}
	if utf8.RuneCountInString(username) < core.MinUsernameLen {
		return Session{}, core.Invalidf("username must be at least %d characters long", core.MinUsernameLen)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, core.Invalidf("email is not valid")
	}
	if err := core.ValidatePassword(password); err != nil {
		return Session{}, err
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return Session{}, core.Invalidf("user already exists")
	} else if !errors.Is(err, core.ErrUserNotFound) {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.storage.CreateUser(ctx, core.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.mail.Send(ctx, mailer.Welcome(user.Email, user.Username)); err != nil {
		slog.ErrorContext(ctx, "Failed to send welcome mail", "user_id", user.ID, "error", err)
	}

	return s.issue(user)
}

// Login checks the credentials and issues a session. Unknown email and
// wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = core.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, core.Invalidf("email and password are required")
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		return Session{}, core.ErrBadCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, core.ErrBadCredentials
	}
	return s.issue(user)
}

// Authenticate resolves a raw token into its claims, rejecting revoked
// tokens and tokens whose account no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Claims{}, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return auth.Claims{}, core.ErrSessionRequired
	}

	if _, err := s.storage.GetUserByID(ctx, claims.UserID()); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return auth.Claims{}, core.ErrSessionRequired
		}
		return auth.Claims{}, fmt.Errorf("lookup user: %w", err)
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims auth.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	slog.InfoContext(ctx, "Session revoked", "user_id", claims.UserID())
	return nil
}

// SendVerifyOTP mails a fresh verification code to an unverified account.
func (s *AuthService) SendVerifyOTP(ctx context.Context, userID string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Verified {
		return core.Invalidf("account already verified")
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.storage.SetVerifyOTP(ctx, user.ID, code, s.now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("store verify otp: %w", err)
	}
	if err := s.mail.Send(ctx, mailer.VerifyOTP(user.Email, code, s.otpTTL)); err != nil {
		return fmt.Errorf("send verify otp: %w", err)
	}
	return nil
}

// VerifyAccount checks the code sent by SendVerifyOTP and marks the
// account verified.
func (s *AuthService) VerifyAccount(ctx context.Context, userID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return core.Invalidf("otp is required")
	}
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkOTP(user.VerifyOTP, user.VerifyOTPExpiresAt, code); err != nil {
		return err
	}
	if err := s.storage.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	slog.InfoContext(ctx, "Account verified", "user_id", user.ID)
	return nil
}

// SendResetOTP mails a password reset code. Only verified accounts can
// reset their password.
func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	email = core.NormalizeEmail(email)
	if email == "" {
		return core.Invalidf("email is required")
	}
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.Verified {
		return core.Invalidf("account is not verified")
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.storage.SetResetOTP(ctx, user.ID, code, s.now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("store reset otp: %w", err)
	}
	if err := s.mail.Send(ctx, mailer.ResetOTP(user.Email, code, s.otpTTL)); err != nil {
		return fmt.Errorf("send reset otp: %w", err)
	}
	return nil
}

// VerifyResetOTP consumes a reset code and logs the account in so it can
// call ResetPassword.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) (Session, error) {
	email = core.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return Session{}, core.Invalidf("email and otp are required")
	}
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if err := s.checkOTP(user.ResetOTP, user.ResetOTPExpiresAt, code); err != nil {
		return Session{}, err
	}
	if err := s.storage.ClearResetOTP(ctx, user.ID); err != nil {
		return Session{}, fmt.Errorf("clear reset otp: %w", err)
	}
	return s.issue(user)
}

// ResetPassword sets a new password without asking for the old one. It
// is reached through the session VerifyResetOTP issued.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return core.Invalidf("new and confirm password are required")
	}
	if newPassword != confirmPassword {
		return core.Invalidf("passwords do not match")
	}
	if err := core.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.storage.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	slog.InfoContext(ctx, "Password reset", "user_id", userID)
	return nil
}

func (s *AuthService) checkOTP(stored string, expiresAt time.Time, provided string) error {
	if !auth.OTPEqual(stored, provided) {
		return core.ErrInvalidOTP
	}
	if expiresAt.Before(s.now()) {
		return core.ErrExpiredOTP
	}
	return nil
}

func (s *AuthService) issue(user core.User) (Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}
