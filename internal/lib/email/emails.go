package email

import (
	"context"
	"fmt"
	"time"
)

// ClaimDecisionData feeds the claim_decision template.
type ClaimDecisionData struct {
	PersonName    string
	ClaimID       string
	PolicyNum     string
	Status        string
	ClaimAmount   string
	ClaimedAmount string
	Remarks       string
	DecidedAt     time.Time
}

func (c *Client) SendClaimDecisionEmail(ctx context.Context, to string, data ClaimDecisionData) error {
	subject := fmt.Sprintf("Your claim %s was %s", data.ClaimID, decisionVerb(data.Status))
	return c.SendEmail(ctx, to, subject, TemplateClaimDecision, data)
}

func decisionVerb(status string) string {
	if status == "claimed" {
		return "approved"
	}
	return status
}
