package backend

import (
	"fmt"

	"cashflow/internal/config"
)

const defaultRevokerCapacity = 10000

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	mb := MailBackend(appConfig.MailBackend)
	if !mb.IsValid() {
		return Config{}, fmt.Errorf("invalid mail backend in config: %s", appConfig.MailBackend)
	}

	return Config{
		Mail:            mb,
		MailFrom:        appConfig.MailFrom,
		ResendAPIKey:    appConfig.ResendAPIKey,
		AMQPURL:         appConfig.AMQPURL,
		AMQPExchange:    appConfig.AMQPExchange,
		AMQPQueue:       appConfig.AMQPQueue,
		RedisURL:        appConfig.RedisURL,
		RevokerCapacity: defaultRevokerCapacity,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Mail.IsValid() {
		return fmt.Errorf("invalid mail backend: %s", c.Mail)
	}

	switch c.Mail {
	case MailResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("resend API key is required for resend mail backend")
		}
		if c.MailFrom == "" {
			return fmt.Errorf("sender address is required for resend mail backend")
		}
	case MailAMQP:
		if c.AMQPURL == "" || c.AMQPExchange == "" || c.AMQPQueue == "" {
			return fmt.Errorf("AMQP url, exchange and queue are required for amqp mail backend")
		}
	case MailLog:
		// nothing to connect to
	}

	return nil
}

// GetMailBackends returns all valid mail backends
func GetMailBackends() []MailBackend {
	return []MailBackend{MailLog, MailResend, MailAMQP}
}
