package repository

import (
	"github.com/deppfellow/go-insurance/internal/server"
)

type Repositories struct {
	Person *PersonRepository
	Policy *PolicyRepository
	Claim  *ClaimRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Person: NewPersonRepository(s.DB.Pool),
		Policy: NewPolicyRepository(s.DB.Pool),
		Claim:  NewClaimRepository(s.DB.Pool),
	}
}
