package transaction

import (
	"context"
	"time"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/metrics"
)

// Sweep evicts every pending transaction older than the engine timeout and
// reports each one to the handler. It returns the number evicted.
func (e *Engine) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-e.timeout)
	var expired []Expired
	counts := map[string]int{}

	e.mu.Lock()
	for key, p := range e.pendingSubs {
		if p.sub.Created.After(cutoff) {
			continue
		}
		delete(e.pendingSubs, key)
		sub := p.sub
		expired = append(expired, Expired{
			Kind:         e2ap.KindSubscribeRequest,
			ID:           sub.ID,
			Endpoint:     sub.Endpoint,
			Subscription: &sub,
			Age:          now.Sub(sub.Created),
		})
		counts[tablePendingSubs]++
	}
	for key, p := range e.pendingDeletes {
		if p.created.After(cutoff) {
			continue
		}
		delete(e.pendingDeletes, key)
		sub := p.sub
		expired = append(expired, Expired{
			Kind:         e2ap.KindDeleteRequest,
			ID:           sub.ID,
			Endpoint:     sub.Endpoint,
			Subscription: &sub,
			Age:          now.Sub(p.created),
		})
		counts[tablePendingDeletes]++
	}
	for instance, p := range e.pendingControls {
		if p.created.After(cutoff) {
			continue
		}
		delete(e.pendingControls, instance)
		expired = append(expired, Expired{
			Kind:     e2ap.KindControlRequest,
			ID:       p.id,
			Endpoint: p.endpoint,
			Control:  p.control,
			Age:      now.Sub(p.created),
		})
		counts[tablePendingControls]++
	}
	h := e.handler
	stats := e.statsLocked()
	e.mu.Unlock()

	publishStats(stats)
	for table, n := range counts {
		metrics.RecordExpired(table, n)
	}
	for _, exp := range expired {
		e.logger.Warn().Str("kind", exp.Kind.String()).Str("meid", exp.Endpoint).Str("key", exp.ID.Key()).Dur("age", exp.Age).Msg("transaction expired")
		h.OnExpired(ctx, exp)
	}
	return len(expired)
}

// RunReaper sweeps every interval until ctx is done.
func (e *Engine) RunReaper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = e.timeout / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	e.logger.Info().Dur("interval", interval).Dur("timeout", e.timeout).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("reaper stopped")
			return nil
		case <-ticker.C:
			e.Sweep(ctx, e.now())
		}
	}
}
