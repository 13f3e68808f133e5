// Package backend builds the pluggable delivery backends: how mail leaves
// the process and where revoked session ids are remembered.
package backend

import (
	"context"

	"cashflow/internal/auth"
	"cashflow/internal/mail"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the built backends and a cleanup function releasing
// their connections. Cleanup is never nil.
type Result struct {
	Mailer  mail.Dispatcher
	Revoker auth.Revoker
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Mail MailBackend

	// Resend specific
	MailFrom     string
	ResendAPIKey string

	// AMQP outbox specific
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// RedisURL selects the Redis revocation list. Empty keeps revoked ids
	// in process memory.
	RedisURL        string
	RevokerCapacity int
}

// MailBackend represents how mail is delivered
type MailBackend string

const (
	MailLog    MailBackend = "log"
	MailResend MailBackend = "resend"
	MailAMQP   MailBackend = "amqp"
)

// String implements fmt.Stringer
func (mb MailBackend) String() string {
	return string(mb)
}

// IsValid returns true if the mail backend is valid
func (mb MailBackend) IsValid() bool {
	switch mb {
	case MailLog, MailResend, MailAMQP:
		return true
	default:
		return false
	}
}
