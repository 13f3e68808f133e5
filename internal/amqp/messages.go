package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MailJob is one outgoing e-mail waiting in the outbox queue.
type MailJob struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMailJob stamps a job with a fresh id and the current time.
func NewMailJob(kind, to, subject, text string) *MailJob {
	return &MailJob{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Subject:   subject,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func (m *MailJob) Validate() error {
	if m.To == "" {
		return errors.New("mail job has no recipient")
	}
	if m.Subject == "" {
		return errors.New("mail job has no subject")
	}
	return nil
}

func (m *MailJob) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MailJobFromJSON decodes and validates a queued job.
func MailJobFromJSON(data []byte) (*MailJob, error) {
	var msg MailJob
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
