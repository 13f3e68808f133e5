package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	"cashflow/internal/auth"
	"cashflow/internal/cache"
	"cashflow/internal/log"
	"cashflow/internal/mail"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	caches *cache.Manager
}

// NewFactory creates a new backend factory. When caches is set, the
// in-memory revocation list is registered there for expiry sweeps.
func NewFactory(logger *slog.Logger, caches *cache.Manager) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(log.FieldComponent, log.ComponentBackend),
		caches: caches,
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	mailer, closeMail, err := f.createMailer(config)
	if err != nil {
		return nil, err
	}
	if closeMail != nil {
		cleanups = append(cleanups, closeMail)
	}

	revoker, closeRevoker, err := f.createRevoker(ctx, config)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	if closeRevoker != nil {
		cleanups = append(cleanups, closeRevoker)
	}

	return &Result{Mailer: mailer, Revoker: revoker, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createMailer(config Config) (mail.Dispatcher, CleanupFunc, error) {
	switch config.Mail {
	case MailResend:
		f.logger.Info("Initialized Resend mail backend", "from", config.MailFrom)
		return mail.NewResendDispatcher(config.ResendAPIKey, config.MailFrom), nil, nil

	case MailAMQP:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Info("Initialized AMQP mail outbox",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return mail.NewQueueDispatcher(client), client.Close, nil

	default:
		f.logger.Info("Initialized log mail backend; mail is logged, not sent")
		return mail.NewLogDispatcher(f.logger), nil, nil
	}
}

func (f *DefaultFactory) createRevoker(ctx context.Context, config Config) (auth.Revoker, CleanupFunc, error) {
	if config.RedisURL != "" {
		r, err := auth.NewRedisRevoker(ctx, config.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Redis revocation list: %w", err)
		}
		f.logger.Info("Initialized Redis revocation list")
		return r, r.Close, nil
	}

	capacity := config.RevokerCapacity
	if capacity <= 0 {
		capacity = defaultRevokerCapacity
	}
	m := auth.NewMemoryRevoker(capacity)
	if f.caches != nil {
		f.caches.Register("revoked_tokens", m.Cache())
	}
	f.logger.Info("Initialized in-memory revocation list", "capacity", capacity)
	return m, nil, nil
}
