package email

import (
	"time"

	"github.com/pkg/errors"
)

// PreviewData holds sample data for rendering each template without sending it.
var PreviewData = map[Template]any{
	TemplateClaimDecision: ClaimDecisionData{
		PersonName:    "jane doe",
		ClaimID:       "CLM-0001",
		PolicyNum:     "POL-0001",
		Status:        "claimed",
		ClaimAmount:   "1500",
		ClaimedAmount: "1200",
		Remarks:       "Deductible applied",
		DecidedAt:     time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC),
	},
}

// Preview renders templateName with its sample data.
func Preview(templateName Template) (string, error) {
	data, ok := PreviewData[templateName]
	if !ok {
		return "", errors.Errorf("no preview data for template %s", templateName)
	}
	return Render(templateName, data)
}
