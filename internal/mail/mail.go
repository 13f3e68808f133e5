// Package mail builds and dispatches the account e-mails: welcome notes
// and one-time codes.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/amqp"

	"github.com/resend/resend-go/v2"
)

// Kinds of outgoing mail.
const (
	KindWelcome   = "welcome"
	KindVerifyOTP = "verify_otp"
	KindResetOTP  = "reset_otp"
)

type Message struct {
	Kind    string
	To      string
	Subject string
	Text    string
}

// Dispatcher hands a message to whatever delivers it.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

func Welcome(to, username string) Message {
	return Message{
		Kind:    KindWelcome,
		To:      to,
		Subject: "Welcome to CashFlow",
		Text:    fmt.Sprintf("Welcome %s to the CashFlow expense tracker! Your account e-mail is %s.", username, to),
	}
}

func VerifyOTP(to, code string, ttl time.Duration) Message {
	return Message{
		Kind:    KindVerifyOTP,
		To:      to,
		Subject: "Account verification OTP",
		Text:    fmt.Sprintf("Your code to verify your account is %s. It expires in %s.", code, humanMinutes(ttl)),
	}
}

func ResetOTP(to, code string, ttl time.Duration) Message {
	return Message{
		Kind:    KindResetOTP,
		To:      to,
		Subject: "Password reset OTP",
		Text:    fmt.Sprintf("Your code to reset your password is %s. It expires in %s.", code, humanMinutes(ttl)),
	}
}

func humanMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// LogDispatcher writes messages to the log instead of sending them.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, msg Message) error {
	d.logger.InfoContext(ctx, "Mail not sent, log backend",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text)
	return nil
}

// ResendDispatcher delivers messages through the Resend API.
type ResendDispatcher struct {
	client *resend.Client
	from   string
}

func NewResendDispatcher(apiKey, from string) *ResendDispatcher {
	return &ResendDispatcher{client: resend.NewClient(apiKey), from: from}
}

func (d *ResendDispatcher) Send(ctx context.Context, msg Message) error {
	resp, err := d.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Tags:    []resend.Tag{{Name: "kind", Value: msg.Kind}},
	})
	if err != nil {
		return fmt.Errorf("send %s mail: %w", msg.Kind, err)
	}
	slog.InfoContext(ctx, "Mail sent", "kind", msg.Kind, "resend_id", resp.Id)
	return nil
}

// Publisher is the part of the AMQP client the queue dispatcher needs.
type Publisher interface {
	PublishMailJob(ctx context.Context, job *amqp.MailJob) error
}

// QueueDispatcher defers delivery to the mail worker through the outbox
// queue.
type QueueDispatcher struct {
	publisher Publisher
}

func NewQueueDispatcher(p Publisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: p}
}

func (d *QueueDispatcher) Send(ctx context.Context, msg Message) error {
	job := amqp.NewMailJob(msg.Kind, msg.To, msg.Subject, msg.Text)
	if err := d.publisher.PublishMailJob(ctx, job); err != nil {
		return fmt.Errorf("queue %s mail: %w", msg.Kind, err)
	}
	return nil
}

// FromJob turns a queued job back into a message.
func FromJob(job *amqp.MailJob) Message {
	return Message{Kind: job.Kind, To: job.To, Subject: job.Subject, Text: job.Text}
}
