package core

import (
	"errors"
	"fmt"
)

// Error classes. Every failure surfaced to a client wraps exactly one of
// these; anything else is reported as an unexpected error.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrProtected  = errors.New("protected entity")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("not authorized")
)

var (
	ErrInvalidAmount   = &messageError{kind: ErrValidation, msg: "amount must be greater than zero"}
	ErrEmptyUpdate     = &messageError{kind: ErrValidation, msg: "at least one field is required to update"}
	ErrUserNotFound    = &messageError{kind: ErrNotFound, msg: "user not found"}
	ErrInvalidOTP      = &messageError{kind: ErrValidation, msg: "OTP is not valid"}
	ErrExpiredOTP      = &messageError{kind: ErrValidation, msg: "OTP expired"}
	ErrBadCredentials  = &messageError{kind: ErrAuth, msg: "invalid email or password"}
	ErrSessionRequired = &messageError{kind: ErrAuth, msg: "not authorized, login again"}
	ErrSessionExpired  = &messageError{kind: ErrAuth, msg: "session expired, login again"}
)

// Invalidf builds a validation error with a client-facing message.
func Invalidf(format string, args ...any) error {
	return &messageError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error with a client-facing message.
func NotFoundf(format string, args ...any) error {
	return &messageError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Protectedf builds a protected-entity error with a client-facing message.
func Protectedf(format string, args ...any) error {
	return &messageError{kind: ErrProtected, msg: fmt.Sprintf(format, args...)}
}

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// Message returns the client-facing text of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var me *messageError
	if errors.As(err, &me) {
		return me.msg
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return fallback
}

// Usage counts rows referencing a category name.
type Usage struct {
	Expense int `json:"expense"`
	Income  int `json:"income"`
	Budget  int `json:"budget"`
}

func (u Usage) InUse() bool {
	return u.Expense > 0 || u.Income > 0 || u.Budget > 0
}

// ConflictError reports that an entity is still referenced elsewhere.
type ConflictError struct {
	Message string
	Usage   Usage
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (expense=%d income=%d budget=%d)", e.Message, e.Usage.Expense, e.Usage.Income, e.Usage.Budget)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
