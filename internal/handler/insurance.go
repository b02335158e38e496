package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/go-insurance/internal/model"
	"github.com/deppfellow/go-insurance/internal/server"
	"github.com/deppfellow/go-insurance/internal/service"
	"github.com/deppfellow/go-insurance/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const defaultListLimit = 20

// InsuranceService is the part of service.InsuranceService the controller uses.
type InsuranceService interface {
	AddPerson(ctx context.Context, in service.AddPersonInput) (*model.Person, error)
	GetPerson(ctx context.Context, personID string) (*model.PersonRecord, error)
	ListPersons(ctx context.Context, limit, offset int) (*model.Page[model.Person], error)
	AddPolicy(ctx context.Context, in service.AddPolicyInput) (*model.Policy, error)
	GetPolicy(ctx context.Context, policyNum string) (*model.Policy, error)
	ChangeHolder(ctx context.Context, policyNum, newHolder string) (*model.Policy, error)
	AddClaim(ctx context.Context, in service.AddClaimInput) (*model.Claim, error)
	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)
	ApproveClaim(ctx context.Context, in service.DecideClaimInput) (*model.Claim, error)
	RejectClaim(ctx context.Context, in service.DecideClaimInput) (*model.Claim, error)
}

// InsuranceHandler serves the insurance routes. It satisfies
// router.Controller, router.PersonRegistrar and router.PolicyLookup.
type InsuranceHandler struct {
	Handler
	svc InsuranceService

	getPerson    echo.HandlerFunc
	getClaim     echo.HandlerFunc
	createClaim  echo.HandlerFunc
	approveClaim echo.HandlerFunc
	rejectClaim  echo.HandlerFunc
	addPolicy    echo.HandlerFunc
	addClaim     echo.HandlerFunc
	listPerson   echo.HandlerFunc
	changeHolder echo.HandlerFunc
	addPerson    echo.HandlerFunc
	getPolicy    echo.HandlerFunc
}

func NewInsuranceHandler(s *server.Server, svc InsuranceService) *InsuranceHandler {
	h := &InsuranceHandler{Handler: NewHandler(s), svc: svc}

	h.getPerson = Handle(h.Handler, h.handleGetPerson, http.StatusOK)
	h.getClaim = Handle(h.Handler, h.handleGetClaim, http.StatusOK)
	h.createClaim = Handle(h.Handler, h.handleCreateClaim, http.StatusCreated)
	h.approveClaim = Handle(h.Handler, h.handleApproveClaim, http.StatusOK)
	h.rejectClaim = Handle(h.Handler, h.handleRejectClaim, http.StatusOK)
	h.addPolicy = Handle(h.Handler, h.handleAddPolicy, http.StatusCreated)
	h.addClaim = Handle(h.Handler, h.handleAddClaim, http.StatusCreated)
	h.listPerson = Handle(h.Handler, h.handleListPerson, http.StatusOK)
	h.changeHolder = Handle(h.Handler, h.handleChangeHolder, http.StatusOK)
	h.addPerson = Handle(h.Handler, h.handleAddPerson, http.StatusCreated)
	h.getPolicy = Handle(h.Handler, h.handleGetPolicy, http.StatusOK)

	return h
}

func (h *InsuranceHandler) GetPerson(c echo.Context) error    { return h.getPerson(c) }
func (h *InsuranceHandler) GetClaim(c echo.Context) error     { return h.getClaim(c) }
func (h *InsuranceHandler) CreateClaim(c echo.Context) error  { return h.createClaim(c) }
func (h *InsuranceHandler) ApproveClaim(c echo.Context) error { return h.approveClaim(c) }
func (h *InsuranceHandler) RejectClaim(c echo.Context) error  { return h.rejectClaim(c) }
func (h *InsuranceHandler) AddPolicy(c echo.Context) error    { return h.addPolicy(c) }
func (h *InsuranceHandler) AddClaim(c echo.Context) error     { return h.addClaim(c) }
func (h *InsuranceHandler) ListPerson(c echo.Context) error   { return h.listPerson(c) }
func (h *InsuranceHandler) ChangeHolder(c echo.Context) error { return h.changeHolder(c) }
func (h *InsuranceHandler) AddPerson(c echo.Context) error    { return h.addPerson(c) }
func (h *InsuranceHandler) GetPolicy(c echo.Context) error    { return h.getPolicy(c) }

// ----------------------------------------------------------------------------
// Requests

type GetPersonRequest struct {
	ID string `param:"id" validate:"required,max=64"`
}

func (r *GetPersonRequest) Validate() error { return validation.Struct(r) }

type GetClaimRequest struct {
	ID string `param:"id" validate:"required,max=64"`
}

func (r *GetClaimRequest) Validate() error { return validation.Struct(r) }

type CreateClaimRequest struct {
	Holder    string          `param:"holder" validate:"required,max=64"`
	PolicyNum string          `query:"policy_num" validate:"required,max=64"`
	Amount    decimal.Decimal `query:"amount" validate:"amount"`
	ClaimID   string          `query:"claim_id" validate:"omitempty,max=64"`
}

func (r *CreateClaimRequest) Validate() error { return validation.Struct(r) }

type AddClaimRequest struct {
	PersonID  string          `query:"person_id" validate:"required,max=64"`
	PolicyNum string          `query:"policy_num" validate:"required,max=64"`
	Amount    decimal.Decimal `query:"amount" validate:"amount"`
	ClaimID   string          `query:"claim_id" validate:"omitempty,max=64"`
}

func (r *AddClaimRequest) Validate() error { return validation.Struct(r) }

// ApproveClaimRequest serves both /approve_claim/:holder and /approve_claim.
// The path holder takes precedence over the holder query parameter.
type ApproveClaimRequest struct {
	Holder        string          `param:"holder" validate:"omitempty,max=64"`
	HolderQuery   string          `query:"holder" validate:"omitempty,max=64"`
	ClaimID       string          `query:"claim_id" validate:"required,max=64"`
	ClaimedAmount decimal.Decimal `query:"claimed_amount" validate:"amount"`
	Remarks       string          `query:"remarks" validate:"omitempty,max=500"`
}

func (r *ApproveClaimRequest) Validate() error { return validation.Struct(r) }

func (r *ApproveClaimRequest) holder() string {
	if r.Holder != "" {
		return r.Holder
	}
	return r.HolderQuery
}

type RejectClaimRequest struct {
	Holder  string `param:"holder" validate:"required,max=64"`
	ClaimID string `query:"claim_id" validate:"required,max=64"`
	Remarks string `query:"remarks" validate:"omitempty,max=500"`
}

func (r *RejectClaimRequest) Validate() error { return validation.Struct(r) }

type AddPolicyRequest struct {
	PolicyNum     string          `query:"policy_num" validate:"required,max=64"`
	Plan          string          `query:"plan" validate:"required,max=64"`
	InsuredAmount decimal.Decimal `query:"insured_amount" validate:"amount"`
	PersonID      string          `query:"person_id" validate:"required,max=64"`
}

func (r *AddPolicyRequest) Validate() error { return validation.Struct(r) }

type GetPolicyRequest struct {
	PolicyNum string `param:"policy_num" validate:"required,max=64"`
}

func (r *GetPolicyRequest) Validate() error { return validation.Struct(r) }

type ListPersonRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

func (r *ListPersonRequest) Validate() error { return validation.Struct(r) }

type ChangeHolderRequest struct {
	Holder    string `param:"holder" validate:"required,max=64"`
	PolicyNum string `query:"policy_num" validate:"required,max=64"`
}

func (r *ChangeHolderRequest) Validate() error { return validation.Struct(r) }

type AddPersonRequest struct {
	PersonID string `query:"person_id" validate:"required,max=64"`
	Name     string `query:"name" validate:"required,max=200"`
	Gender   string `query:"gender" validate:"required,max=16"`
	Email    string `query:"email" validate:"omitempty,email,max=254"`
}

func (r *AddPersonRequest) Validate() error { return validation.Struct(r) }

// ----------------------------------------------------------------------------
// Endpoints

func (h *InsuranceHandler) handleGetPerson(c echo.Context, req *GetPersonRequest) (*model.PersonRecord, error) {
	return h.svc.GetPerson(c.Request().Context(), req.ID)
}

func (h *InsuranceHandler) handleGetClaim(c echo.Context, req *GetClaimRequest) (*model.Claim, error) {
	return h.svc.GetClaim(c.Request().Context(), req.ID)
}

func (h *InsuranceHandler) handleCreateClaim(c echo.Context, req *CreateClaimRequest) (*model.Claim, error) {
	return h.svc.AddClaim(c.Request().Context(), service.AddClaimInput{
		ClaimID:   req.ClaimID,
		PersonID:  req.Holder,
		PolicyNum: req.PolicyNum,
		Amount:    req.Amount,
	})
}

func (h *InsuranceHandler) handleAddClaim(c echo.Context, req *AddClaimRequest) (*model.Claim, error) {
	return h.svc.AddClaim(c.Request().Context(), service.AddClaimInput{
		ClaimID:   req.ClaimID,
		PersonID:  req.PersonID,
		PolicyNum: req.PolicyNum,
		Amount:    req.Amount,
	})
}

func (h *InsuranceHandler) handleApproveClaim(c echo.Context, req *ApproveClaimRequest) (*model.Claim, error) {
	return h.svc.ApproveClaim(c.Request().Context(), service.DecideClaimInput{
		ClaimID:       req.ClaimID,
		Holder:        req.holder(),
		ClaimedAmount: req.ClaimedAmount,
		Remarks:       req.Remarks,
	})
}

func (h *InsuranceHandler) handleRejectClaim(c echo.Context, req *RejectClaimRequest) (*model.Claim, error) {
	return h.svc.RejectClaim(c.Request().Context(), service.DecideClaimInput{
		ClaimID: req.ClaimID,
		Holder:  req.Holder,
		Remarks: req.Remarks,
	})
}

func (h *InsuranceHandler) handleAddPolicy(c echo.Context, req *AddPolicyRequest) (*model.Policy, error) {
	return h.svc.AddPolicy(c.Request().Context(), service.AddPolicyInput{
		PolicyNum:     req.PolicyNum,
		Plan:          req.Plan,
		InsuredAmount: req.InsuredAmount,
		PersonID:      req.PersonID,
	})
}

func (h *InsuranceHandler) handleGetPolicy(c echo.Context, req *GetPolicyRequest) (*model.Policy, error) {
	return h.svc.GetPolicy(c.Request().Context(), req.PolicyNum)
}

func (h *InsuranceHandler) handleListPerson(c echo.Context, req *ListPersonRequest) (*model.Page[model.Person], error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return h.svc.ListPersons(c.Request().Context(), limit, req.Offset)
}

func (h *InsuranceHandler) handleChangeHolder(c echo.Context, req *ChangeHolderRequest) (*model.Policy, error) {
	return h.svc.ChangeHolder(c.Request().Context(), req.PolicyNum, req.Holder)
}

func (h *InsuranceHandler) handleAddPerson(c echo.Context, req *AddPersonRequest) (*model.Person, error) {
	return h.svc.AddPerson(c.Request().Context(), service.AddPersonInput{
		PersonID: req.PersonID,
		Name:     req.Name,
		Gender:   req.Gender,
		Email:    req.Email,
	})
}
