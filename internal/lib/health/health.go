// Package health probes the service's dependencies.
//
// A Checker runs a fixed list of checks on demand (for the /status
// endpoint) and a Monitor runs the same checks on a cron schedule so
// failures show up in logs and New Relic even when nobody is polling.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is a single named probe. A failing required check makes the
// whole report unhealthy; a failing advisory check is only reported.
type Check struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func DatabaseCheck(db Pinger) Check {
	return Check{Name: "database", Required: true, Probe: db.Ping}
}

func RedisCheck(client redis.Cmdable) Check {
	return Check{
		Name: "redis",
		Probe: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

type Result struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type Report struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Checks      map[string]Result `json:"checks"`
}

func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type Checker struct {
	checks      []Check
	timeout     time.Duration
	environment string
	logger      *zerolog.Logger
	nrApp       *newrelic.Application
}

func NewChecker(environment string, timeout time.Duration, logger *zerolog.Logger, nrApp *newrelic.Application, checks ...Check) *Checker {
	return &Checker{
		checks:      checks,
		timeout:     timeout,
		environment: environment,
		logger:      logger,
		nrApp:       nrApp,
	}
}

// Run executes every check concurrently, each bounded by the checker timeout.
func (c *Checker) Run(ctx context.Context) Report {
	report := Report{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: c.environment,
		Checks:      make(map[string]Result, len(c.checks)),
	}

	type outcome struct {
		check   Check
		err     error
		elapsed time.Duration
	}

	outcomes := make([]outcome, len(c.checks))
	var wg sync.WaitGroup
	for i, check := range c.checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check.Probe(checkCtx)
			outcomes[i] = outcome{check: check, err: err, elapsed: time.Since(start)}
		}(i, check)
	}
	wg.Wait()

	for _, o := range outcomes {
		result := Result{Status: StatusHealthy, ResponseTime: o.elapsed.String()}

		if o.err != nil {
			result.Status = StatusUnhealthy
			result.Error = o.err.Error()
			if o.check.Required {
				report.Status = StatusUnhealthy
			}

			c.logger.Error().
				Err(o.err).
				Str("check", o.check.Name).
				Bool("required", o.check.Required).
				Dur("response_time", o.elapsed).
				Msg("health check failed")

			c.recordFailure(o.check.Name, o.err, o.elapsed)
		} else {
			c.logger.Debug().
				Str("check", o.check.Name).
				Dur("response_time", o.elapsed).
				Msg("health check passed")
		}

		report.Checks[o.check.Name] = result
	}

	return report
}

func (c *Checker) recordFailure(name string, err error, elapsed time.Duration) {
	if c.nrApp == nil {
		return
	}

	c.nrApp.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       name,
		"operation":        "health_check",
		"error_type":       name + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
