// Package model holds the insurance domain types shared by the
// repository, service and handler layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the lifecycle state of a claim. A claim starts open and
// is decided exactly once, either claimed (approved) or rejected.
type ClaimStatus string

const (
	ClaimStatusOpen     ClaimStatus = "open"
	ClaimStatusClaimed  ClaimStatus = "claimed"
	ClaimStatusRejected ClaimStatus = "rejected"
)

func (s ClaimStatus) IsDecided() bool {
	return s == ClaimStatusClaimed || s == ClaimStatusRejected
}

type Person struct {
	PersonID  string    `json:"personId" db:"person_id"`
	Name      string    `json:"name" db:"name"`
	Gender    string    `json:"gender" db:"gender"`
	Email     string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Policy is held by exactly one person at a time.
type Policy struct {
	PolicyNum     string          `json:"policyNum" db:"policy_num"`
	Plan          string          `json:"plan" db:"plan"`
	InsuredAmount decimal.Decimal `json:"insuredAmount" db:"insured_amount"`
	PersonID      string          `json:"personId" db:"person_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

type Claim struct {
	ClaimID       string          `json:"claimId" db:"claim_id"`
	Amount        decimal.Decimal `json:"claimAmount" db:"amount"`
	ClaimedAmount decimal.Decimal `json:"claimedAmount" db:"claimed_amount"`
	PersonID      string          `json:"personId" db:"person_id"`
	PolicyNum     string          `json:"policyNum" db:"policy_num"`
	Status        ClaimStatus     `json:"status" db:"status"`
	Remarks       string          `json:"remarks" db:"remarks"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty" db:"decided_at"`
}

// PersonRecord is a person together with everything they hold.
type PersonRecord struct {
	Person
	Policies []Policy `json:"policies"`
	Claims   []Claim  `json:"claims"`
}

// ClaimDecision is the state change applied when a claim is approved or rejected.
type ClaimDecision struct {
	ClaimID       string
	Status        ClaimStatus
	ClaimedAmount decimal.Decimal
	Remarks       string
	DecidedAt     time.Time
}

type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
