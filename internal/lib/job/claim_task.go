package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// TaskClaimDecision notifies a person that their claim was approved or rejected.
const TaskClaimDecision = "claim:decision"

type ClaimDecisionPayload struct {
	To            string    `json:"to"`
	PersonName    string    `json:"person_name"`
	ClaimID       string    `json:"claim_id"`
	PolicyNum     string    `json:"policy_num"`
	Status        string    `json:"status"`
	ClaimAmount   string    `json:"claim_amount"`
	ClaimedAmount string    `json:"claimed_amount"`
	Remarks       string    `json:"remarks"`
	DecidedAt     time.Time `json:"decided_at"`
}

func NewClaimDecisionTask(p ClaimDecisionPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskClaimDecision,
		payload,
		asynq.TaskID("claim-decision:"+p.ClaimID),
		asynq.MaxRetry(5),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}
