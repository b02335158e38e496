package health

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Monitor runs a Checker periodically in the background.
type Monitor struct {
	cron    *cron.Cron
	checker *Checker
	logger  *zerolog.Logger
}

func NewMonitor(checker *Checker, interval time.Duration, logger *zerolog.Logger) (*Monitor, error) {
	m := &Monitor{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		checker: checker,
		logger:  logger,
	}

	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", interval), m.tick); err != nil {
		return nil, fmt.Errorf("scheduling health monitor: %w", err)
	}

	return m, nil
}

func (m *Monitor) tick() {
	report := m.checker.Run(context.Background())
	if !report.Healthy() {
		m.logger.Warn().Msg("periodic health check reported unhealthy")
	}
}

func (m *Monitor) Start() {
	m.logger.Info().Msg("starting health monitor")
	m.cron.Start()
}

// Stop halts scheduling and waits for a running check to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}
