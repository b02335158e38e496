package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/go-insurance/internal/errs"
	"github.com/deppfellow/go-insurance/internal/lib/cache"
	"github.com/deppfellow/go-insurance/internal/lib/job"
	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/repository"
	"github.com/deppfellow/go-insurance/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type PersonStore interface {
	Create(ctx context.Context, person model.Person) (*model.Person, error)
	GetByID(ctx context.Context, personID string) (*model.Person, error)
	List(ctx context.Context, limit, offset int) ([]model.Person, int, error)
}

type PolicyStore interface {
	Create(ctx context.Context, policy model.Policy) (*model.Policy, error)
	GetByNum(ctx context.Context, policyNum string) (*model.Policy, error)
	ListByPerson(ctx context.Context, personID string) ([]model.Policy, error)
	ChangeHolder(ctx context.Context, policyNum, personID string) (*model.Policy, error)
}

type ClaimStore interface {
	Create(ctx context.Context, claim model.Claim) (*model.Claim, error)
	GetByID(ctx context.Context, claimID string) (*model.Claim, error)
	ListByPerson(ctx context.Context, personID string) ([]model.Claim, error)
	Decide(ctx context.Context, decision model.ClaimDecision) (*model.Claim, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type Notifier interface {
	EnqueueClaimDecision(ctx context.Context, payload job.ClaimDecisionPayload) error
}

// Deps are the collaborators of InsuranceService. Cache and Notifier are optional.
type Deps struct {
	Persons  PersonStore
	Policies PolicyStore
	Claims   ClaimStore
	Cache    Cache
	Notifier Notifier
	Logger   *zerolog.Logger
	Now      func() time.Time
}

type InsuranceService struct {
	persons  PersonStore
	policies PolicyStore
	claims   ClaimStore
	cache    Cache
	notifier Notifier
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewInsuranceService(d Deps) *InsuranceService {
	logger := d.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	now := d.Now
	if now == nil {
		now = time.Now
	}

	return &InsuranceService{
		persons:  d.Persons,
		policies: d.Policies,
		claims:   d.Claims,
		cache:    d.Cache,
		notifier: d.Notifier,
		logger:   logger,
		now:      now,
	}
}

var (
	codePolicyHolderMismatch = "POLICY_HOLDER_MISMATCH"
	codeClaimAlreadyDecided  = "CLAIM_ALREADY_DECIDED"
	codeClaimedAmountTooHigh = "CLAIMED_AMOUNT_EXCEEDS_CLAIM"
)

type AddPersonInput struct {
	PersonID string
	Name     string
	Gender   string
	Email    string
}

type AddPolicyInput struct {
	PolicyNum     string
	Plan          string
	InsuredAmount decimal.Decimal
	PersonID      string
}

type AddClaimInput struct {
	ClaimID   string
	PersonID  string
	PolicyNum string
	Amount    decimal.Decimal
}

// DecideClaimInput approves or rejects a claim. Holder is optional; when set,
// the claim must belong to that person.
type DecideClaimInput struct {
	ClaimID       string
	Holder        string
	ClaimedAmount decimal.Decimal
	Remarks       string
}

func (s *InsuranceService) AddPerson(ctx context.Context, in AddPersonInput) (*model.Person, error) {
	person, err := s.persons.Create(ctx, model.Person{
		PersonID: in.PersonID,
		Name:     in.Name,
		Gender:   in.Gender,
		Email:    in.Email,
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.log(ctx).Info().Str("person_id", person.PersonID).Msg("person added")
	return person, nil
}

// GetPerson returns the person with every policy and claim they hold.
func (s *InsuranceService) GetPerson(ctx context.Context, personID string) (*model.PersonRecord, error) {
	var record model.PersonRecord
	if s.cacheGet(ctx, cache.PersonKey(personID), &record) {
		return &record, nil
	}

	person, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	policies, err := s.policies.ListByPerson(ctx, personID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	claims, err := s.claims.ListByPerson(ctx, personID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	record = model.PersonRecord{
		Person:   *person,
		Policies: nonNil(policies),
		Claims:   nonNil(claims),
	}
	s.cacheSet(ctx, cache.PersonKey(personID), record)

	return &record, nil
}

func (s *InsuranceService) ListPersons(ctx context.Context, limit, offset int) (*model.Page[model.Person], error) {
	persons, total, err := s.persons.List(ctx, limit, offset)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return &model.Page[model.Person]{
		Data:   nonNil(persons),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *InsuranceService) AddPolicy(ctx context.Context, in AddPolicyInput) (*model.Policy, error) {
	if _, err := s.persons.GetByID(ctx, in.PersonID); err != nil {
		return nil, sqlerr.HandleError(err)
	}

	policy, err := s.policies.Create(ctx, model.Policy{
		PolicyNum:     in.PolicyNum,
		Plan:          in.Plan,
		InsuredAmount: in.InsuredAmount,
		PersonID:      in.PersonID,
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.invalidate(ctx, cache.PersonKey(in.PersonID))

	s.log(ctx).Info().
		Str("policy_num", policy.PolicyNum).
		Str("person_id", policy.PersonID).
		Msg("policy added")
	return policy, nil
}

// ChangeHolder transfers a policy to newHolder. Claims filed under the
// previous holder stay with them.
func (s *InsuranceService) ChangeHolder(ctx context.Context, policyNum, newHolder string) (*model.Policy, error) {
	if _, err := s.persons.GetByID(ctx, newHolder); err != nil {
		return nil, sqlerr.HandleError(err)
	}

	current, err := s.policies.GetByNum(ctx, policyNum)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if current.PersonID == newHolder {
		return current, nil
	}

	policy, err := s.policies.ChangeHolder(ctx, policyNum, newHolder)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.invalidate(ctx, cache.PolicyKey(policyNum), cache.PersonKey(current.PersonID), cache.PersonKey(newHolder))

	s.log(ctx).Info().
		Str("policy_num", policyNum).
		Str("from", current.PersonID).
		Str("to", newHolder).
		Msg("policy holder changed")
	return policy, nil
}

// GetPolicy returns a single policy by its number.
func (s *InsuranceService) GetPolicy(ctx context.Context, policyNum string) (*model.Policy, error) {
	var policy model.Policy
	if s.cacheGet(ctx, cache.PolicyKey(policyNum), &policy) {
		return &policy, nil
	}

	found, err := s.policies.GetByNum(ctx, policyNum)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.cacheSet(ctx, cache.PolicyKey(policyNum), found)
	return found, nil
}

func (s *InsuranceService) AddClaim(ctx context.Context, in AddClaimInput) (*model.Claim, error) {
	if _, err := s.persons.GetByID(ctx, in.PersonID); err != nil {
		return nil, sqlerr.HandleError(err)
	}

	policy, err := s.policies.GetByNum(ctx, in.PolicyNum)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if policy.PersonID != in.PersonID {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("Policy %s is not held by person %s", in.PolicyNum, in.PersonID),
			true, &codePolicyHolderMismatch, nil, nil,
		)
	}

	claimID := in.ClaimID
	if claimID == "" {
		claimID = uuid.NewString()
	}

	claim, err := s.claims.Create(ctx, model.Claim{
		ClaimID:   claimID,
		Amount:    in.Amount,
		PersonID:  in.PersonID,
		PolicyNum: in.PolicyNum,
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.invalidate(ctx, cache.PersonKey(in.PersonID))

	s.log(ctx).Info().
		Str("claim_id", claim.ClaimID).
		Str("policy_num", claim.PolicyNum).
		Str("amount", claim.Amount.String()).
		Msg("claim filed")
	return claim, nil
}

func (s *InsuranceService) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	var claim model.Claim
	if s.cacheGet(ctx, cache.ClaimKey(claimID), &claim) {
		return &claim, nil
	}

	found, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.cacheSet(ctx, cache.ClaimKey(claimID), found)
	return found, nil
}

// ApproveClaim settles an open claim for ClaimedAmount, which may not exceed
// the amount originally claimed.
func (s *InsuranceService) ApproveClaim(ctx context.Context, in DecideClaimInput) (*model.Claim, error) {
	return s.decide(ctx, in, model.ClaimStatusClaimed)
}

func (s *InsuranceService) RejectClaim(ctx context.Context, in DecideClaimInput) (*model.Claim, error) {
	in.ClaimedAmount = decimal.Zero
	return s.decide(ctx, in, model.ClaimStatusRejected)
}

func (s *InsuranceService) decide(ctx context.Context, in DecideClaimInput, status model.ClaimStatus) (*model.Claim, error) {
	// Read from the store, not the cache: the status check must see the latest state.
	claim, err := s.claims.GetByID(ctx, in.ClaimID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	// A claim owned by someone else is reported as missing.
	if in.Holder != "" && claim.PersonID != in.Holder {
		return nil, errs.NewNotFoundError("Claim not found", true, nil)
	}

	if claim.Status.IsDecided() {
		return nil, alreadyDecided(claim.ClaimID, claim.Status)
	}

	if status == model.ClaimStatusClaimed && in.ClaimedAmount.GreaterThan(claim.Amount) {
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("Claimed amount %s exceeds the claim amount %s", in.ClaimedAmount, claim.Amount),
			true, &codeClaimedAmountTooHigh, nil, nil,
		)
	}

	decided, err := s.claims.Decide(ctx, model.ClaimDecision{
		ClaimID:       claim.ClaimID,
		Status:        status,
		ClaimedAmount: in.ClaimedAmount,
		Remarks:       in.Remarks,
		DecidedAt:     s.now().UTC(),
	})
	if errors.Is(err, repository.ErrClaimNotOpen) {
		return nil, alreadyDecided(claim.ClaimID, "")
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	s.invalidate(ctx, cache.ClaimKey(decided.ClaimID), cache.PersonKey(decided.PersonID))

	s.log(ctx).Info().
		Str("claim_id", decided.ClaimID).
		Str("status", string(decided.Status)).
		Str("claimed_amount", decided.ClaimedAmount.String()).
		Msg("claim decided")

	s.notifyDecision(ctx, decided)
	return decided, nil
}

func alreadyDecided(claimID string, status model.ClaimStatus) error {
	msg := fmt.Sprintf("Claim %s has already been decided", claimID)
	if status != "" {
		msg = fmt.Sprintf("Claim %s has already been %s", claimID, status)
	}
	return errs.NewConflictError(msg, true, &codeClaimAlreadyDecided)
}

// notifyDecision enqueues the decision email. Failing to enqueue never
// fails the decision itself.
func (s *InsuranceService) notifyDecision(ctx context.Context, claim *model.Claim) {
	if s.notifier == nil {
		return
	}

	person, err := s.persons.GetByID(ctx, claim.PersonID)
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("claim_id", claim.ClaimID).Msg("could not load person for decision notification")
		return
	}
	if person.Email == "" {
		return
	}

	var decidedAt time.Time
	if claim.DecidedAt != nil {
		decidedAt = *claim.DecidedAt
	}

	err = s.notifier.EnqueueClaimDecision(ctx, job.ClaimDecisionPayload{
		To:            person.Email,
		PersonName:    person.Name,
		ClaimID:       claim.ClaimID,
		PolicyNum:     claim.PolicyNum,
		Status:        string(claim.Status),
		ClaimAmount:   claim.Amount.String(),
		ClaimedAmount: claim.ClaimedAmount.String(),
		Remarks:       claim.Remarks,
		DecidedAt:     decidedAt,
	})
	if err != nil {
		s.log(ctx).Error().Err(err).Str("claim_id", claim.ClaimID).Msg("failed to enqueue claim decision notification")
	}
}

func (s *InsuranceService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return found
}

func (s *InsuranceService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *InsuranceService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log(ctx).Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// log prefers the request-scoped logger carried in ctx.
func (s *InsuranceService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
