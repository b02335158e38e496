package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimStatus_IsDecided(t *testing.T) {
	assert.False(t, ClaimStatusOpen.IsDecided())
	assert.True(t, ClaimStatusClaimed.IsDecided())
	assert.True(t, ClaimStatusRejected.IsDecided())
}

func TestPersonRecord_FlattensPerson(t *testing.T) {
	record := PersonRecord{
		Person: Person{PersonID: "P1", Name: "Ana", Gender: "F"},
		Claims: []Claim{{ClaimID: "C1", Amount: decimal.RequireFromString("120.50"), Status: ClaimStatusOpen}},
	}

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "P1", decoded["personId"])
	assert.NotContains(t, decoded, "email")

	claims := decoded["claims"].([]any)
	claim := claims[0].(map[string]any)
	assert.Equal(t, "120.5", claim["claimAmount"])
	assert.Equal(t, "open", claim["status"])
}
