package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/infrastructure/logger"
)

// JobFunc runs one scheduled billing job to completion
type JobFunc func(ctx context.Context) error

// entry is one job that runs once per day at a fixed local time
type entry struct {
	name        string
	hour        int
	minute      int
	run         JobFunc
	lastRunDate string
}

// Config holds configuration for the billing scheduler
type Config struct {
	// Location is the business timezone the run times are expressed in
	Location *time.Location
	// CheckInterval is how often to check whether an entry is due
	CheckInterval time.Duration
	// JobTimeout bounds a single job run
	JobTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Location:      time.UTC,
		CheckInterval: time.Minute,
		JobTimeout:    30 * time.Minute,
	}
}

// BillingScheduler runs registered jobs once per day at their configured
// times. A per-entry lastRunDate guard makes the minute-granularity ticker
// safe: an entry fires at most once per calendar day even when the check
// interval lands on the same minute repeatedly.
type BillingScheduler struct {
	config  Config
	logger  *zap.Logger
	entries []*entry
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBillingScheduler creates a new scheduler
func NewBillingScheduler(config Config, log *zap.Logger) *BillingScheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 30 * time.Minute
	}
	return &BillingScheduler{
		config: config,
		logger: log,
		now:    time.Now,
	}
}

// Register adds a job that runs daily at the given "15:04" local time.
// Must be called before Start.
func (s *BillingScheduler) Register(name, at string, run JobFunc) error {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return fmt.Errorf("scheduler: invalid time %q for job %s: %w", at, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.name == name {
			return fmt.Errorf("scheduler: job %s already registered", name)
		}
	}

	s.entries = append(s.entries, &entry{
		name:   name,
		hour:   t.Hour(),
		minute: t.Minute(),
		run:    run,
	})
	return nil
}

// Start starts the scheduler loop
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Billing scheduler started",
		zap.String("timezone", s.config.Location.String()),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("jobs", len(s.entries)),
	)

	return nil
}

// Stop stops the scheduler, waiting for an in-flight job to finish
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow triggers a registered job immediately, outside its schedule.
// Used by the operator endpoint; the daily guard is not updated, so the
// scheduled run still happens.
func (s *BillingScheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var target *entry
	for _, e := range s.entries {
		if e.name == name {
			target = e
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return fmt.Errorf("scheduler: unknown job %s", name)
	}

	return s.execute(ctx, target)
}

// JobNames returns the registered job names
func (s *BillingScheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.name)
	}
	return names
}

func (s *BillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs every due entry that has not yet run today
func (s *BillingScheduler) checkAndTrigger(ctx context.Context) {
	now := s.now().In(s.config.Location)
	currentDate := now.Format("2006-01-02")

	for _, e := range s.due(now, currentDate) {
		if err := s.execute(ctx, e); err != nil {
			s.logger.Error("Scheduled job failed",
				zap.String("job", e.name),
				zap.Error(err),
			)
		}
	}
}

// due collects entries whose time matches and marks them as run for the day
func (s *BillingScheduler) due(now time.Time, currentDate string) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entry
	for _, e := range s.entries {
		if e.lastRunDate == currentDate {
			continue
		}
		if now.Hour() != e.hour || now.Minute() != e.minute {
			continue
		}
		e.lastRunDate = currentDate
		due = append(due, e)
	}
	return due
}

func (s *BillingScheduler) execute(ctx context.Context, e *entry) error {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	runCtx, _ = logger.WithJob(runCtx, s.logger, e.name)

	start := s.now()
	s.logger.Info("Running scheduled job", zap.String("job", e.name))

	err := e.run(runCtx)

	if err != nil {
		s.logger.Error("Scheduled job finished with error",
			zap.String("job", e.name),
			zap.Duration("elapsed", s.now().Sub(start)),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("Scheduled job finished",
		zap.String("job", e.name),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return nil
}
