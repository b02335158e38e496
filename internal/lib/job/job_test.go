package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/go-insurance/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to   string
	data email.ClaimDecisionData
	err  error
}

func (f *fakeMailer) SendClaimDecisionEmail(_ context.Context, to string, data email.ClaimDecisionData) error {
	f.to = to
	f.data = data
	return f.err
}

func newTestJobService(m claimMailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, mailer: m}
}

func samplePayload() ClaimDecisionPayload {
	return ClaimDecisionPayload{
		To:            "ana@example.com",
		PersonName:    "Ana",
		ClaimID:       "C-1",
		PolicyNum:     "POL-1",
		Status:        "claimed",
		ClaimAmount:   "100",
		ClaimedAmount: "80",
		DecidedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewClaimDecisionTask(t *testing.T) {
	task, err := NewClaimDecisionTask(samplePayload())
	require.NoError(t, err)

	assert.Equal(t, TaskClaimDecision, task.Type())

	var decoded ClaimDecisionPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, samplePayload(), decoded)
}

func TestHandleClaimDecisionTask_SendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	j := newTestJobService(mailer)

	task, err := NewClaimDecisionTask(samplePayload())
	require.NoError(t, err)

	require.NoError(t, j.mux().ProcessTask(context.Background(), task))

	assert.Equal(t, "ana@example.com", mailer.to)
	assert.Equal(t, "C-1", mailer.data.ClaimID)
	assert.Equal(t, "80", mailer.data.ClaimedAmount)
}

func TestHandleClaimDecisionTask_MailerErrorRetries(t *testing.T) {
	j := newTestJobService(&fakeMailer{err: errors.New("provider down")})

	task, err := NewClaimDecisionTask(samplePayload())
	require.NoError(t, err)

	err = j.handleClaimDecisionTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleClaimDecisionTask_BadPayloadSkipsRetry(t *testing.T) {
	j := newTestJobService(&fakeMailer{})

	err := j.handleClaimDecisionTask(context.Background(), asynq.NewTask(TaskClaimDecision, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleClaimDecisionTask_EmailDisabled(t *testing.T) {
	j := newTestJobService(nil)

	task, err := NewClaimDecisionTask(samplePayload())
	require.NoError(t, err)

	assert.NoError(t, j.handleClaimDecisionTask(context.Background(), task))
}
