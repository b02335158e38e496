package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/go-insurance/internal/lib/email"
	"github.com/hibiken/asynq"
)

func (j *JobService) handleClaimDecisionTask(ctx context.Context, t *asynq.Task) error {
	var p ClaimDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal claim decision payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskClaimDecision).
		Str("claim_id", p.ClaimID).
		Str("status", p.Status).
		Logger()

	if j.mailer == nil {
		log.Warn().Msg("email disabled, dropping claim decision notification")
		return nil
	}

	log.Info().Msg("processing claim decision email")

	err := j.mailer.SendClaimDecisionEmail(ctx, p.To, email.ClaimDecisionData{
		PersonName:    p.PersonName,
		ClaimID:       p.ClaimID,
		PolicyNum:     p.PolicyNum,
		Status:        p.Status,
		ClaimAmount:   p.ClaimAmount,
		ClaimedAmount: p.ClaimedAmount,
		Remarks:       p.Remarks,
		DecidedAt:     p.DecidedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send claim decision email")
		return err
	}

	log.Info().Msg("sent claim decision email")
	return nil
}
