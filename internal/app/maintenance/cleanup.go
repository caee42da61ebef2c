package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/accountd/pkg/logger"
	"github.com/charlesng35/accountd/pkg/metrics"
)

const defaultSweepSpec = "@every 10m"

// Sweeper drops revocation entries whose token has expired on its own.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// Cleaner coordinates background maintenance: it sweeps expired entries out of
// the revocation registry on a cron schedule.
type Cleaner struct {
	revocations Sweeper
	cron        *cron.Cron
	now         func() time.Time
	log         *zap.Logger

	sweepSchedule string

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSweepSchedule overrides the cron specification for the revocation sweep.
func WithSweepSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sweepSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil registry disables the sweep.
func NewCleaner(revocations Sweeper, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		revocations:   revocations,
		now:           time.Now,
		sweepSchedule: defaultSweepSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.revocations == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.sweepSchedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("revocation sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule sweep %q: %w", c.sweepSchedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every maintenance routine sequentially. It also runs during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.revocations != nil {
		errs = multierr.Append(errs, c.sweep(ctx))
	}

	c.mu.Lock()
	c.lastRun = c.now()
	c.lastErr = errs
	c.mu.Unlock()

	return errs
}

// LastRun reports when RunOnce last finished and the error it returned.
func (c *Cleaner) LastRun() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun, c.lastErr
}

func (c *Cleaner) sweep(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sweep revocations: %w", err)
	}

	removed := c.revocations.Sweep(c.now())
	metrics.RevokedTokens.Set(float64(c.revocations.Len()))
	if removed > 0 {
		c.log.Debug("revocation sweep", zap.Int("removed", removed), zap.Int("remaining", c.revocations.Len()))
	}
	return nil
}
