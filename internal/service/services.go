package service

import (
	"github.com/deppfellow/go-insurance/internal/lib/cache"
	"github.com/deppfellow/go-insurance/internal/lib/job"
	"github.com/deppfellow/go-insurance/internal/repository"
	"github.com/deppfellow/go-insurance/internal/server"
)

type Services struct {
	Insurance *InsuranceService
	Job       *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var notifier Notifier
	if s.Job != nil {
		notifier = s.Job
	}

	insurance := NewInsuranceService(Deps{
		Persons:  repos.Person,
		Policies: repos.Policy,
		Claims:   repos.Claim,
		Cache:    cacheFor(s),
		Notifier: notifier,
		Logger:   s.Logger,
	})

	return &Services{
		Insurance: insurance,
		Job:       s.Job,
	}, nil
}

// cacheFor returns the Redis cache, or nil when Redis did not answer at
// startup so lookups go straight to the store.
func cacheFor(s *server.Server) Cache {
	if s.Redis == nil || !s.RedisReady {
		return nil
	}
	return cache.New(s.Redis, s.Config.Redis.CacheTTL)
}
