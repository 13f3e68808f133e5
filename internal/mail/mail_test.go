package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cashflow/internal/amqp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	jobs []*amqp.MailJob
	err  error
}

func (f *fakePublisher) PublishMailJob(_ context.Context, job *amqp.MailJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func TestTemplates(t *testing.T) {
	msg := VerifyOTP("a@example.com", "123456", 15*time.Minute)
	assert.Equal(t, KindVerifyOTP, msg.Kind)
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.Text, "15 minutes")

	msg = ResetOTP("a@example.com", "654321", time.Minute)
	assert.Equal(t, KindResetOTP, msg.Kind)
	assert.True(t, strings.HasSuffix(msg.Text, "1 minute."))

	msg = Welcome("a@example.com", "alice")
	assert.Contains(t, msg.Text, "alice")
}

func TestQueueDispatcher(t *testing.T) {
	pub := &fakePublisher{}
	d := NewQueueDispatcher(pub)

	require.NoError(t, d.Send(context.Background(), Welcome("a@example.com", "alice")))
	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, KindWelcome, job.Kind)
	assert.Equal(t, "a@example.com", job.To)
	assert.NotEmpty(t, job.ID)

	assert.Equal(t, Welcome("a@example.com", "alice"), FromJob(job))

	pub.err = errors.New("circuit breaker is open")
	err := d.Send(context.Background(), Welcome("b@example.com", "bob"))
	assert.ErrorContains(t, err, "circuit breaker is open")
}

func TestLogDispatcher(t *testing.T) {
	assert.NoError(t, NewLogDispatcher(nil).Send(context.Background(), Welcome("a@example.com", "alice")))
}
