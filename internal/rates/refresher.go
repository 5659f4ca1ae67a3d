package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/robfig/cron/v3"
)

// Refresher periodically re-warms a CachedStore so admin edits made
// directly in the backing store become visible without a restart.
type Refresher struct {
	cache   *CachedStore
	keys    []string
	cron    *cron.Cron
	timeout time.Duration
	logger  domain.Logger
}

// NewRefresher schedules a refresh of keys on the given cron spec
// (standard five-field syntax or descriptors such as "@every 5m").
func NewRefresher(cache *CachedStore, spec string, keys []string, logger domain.Logger) (*Refresher, error) {
	r := &Refresher{
		cache:   cache,
		keys:    keys,
		cron:    cron.New(),
		timeout: 10 * time.Second,
		logger:  domain.OrNop(logger),
	}
	if _, err := r.cron.AddFunc(spec, r.Refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// Refresh re-reads every tracked key into the cache
func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.cache.Invalidate(ctx, r.keys...); err != nil {
		r.logger.Warnf("rate cache invalidation failed: %v", err)
	}
	if err := r.cache.Warm(ctx, r.keys...); err != nil {
		r.logger.Errorf("rate cache refresh failed: %v", err)
		return
	}
	r.logger.Debugf("refreshed %d cached rates", len(r.keys))
}

// Start runs the schedule in the background
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
