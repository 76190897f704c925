// Package requestgroup tracks the control requests a northbound call fans out
// so clients can poll for their combined outcome.
package requestgroup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status is the combined state of a group.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusExpired  Status = "expired"
)

const DefaultTimeout = 8 * time.Second

type result struct {
	ok  bool
	msg string
	at  time.Time
}

type group struct {
	id       uuid.UUID
	created  time.Time
	finished time.Time
	status   Status
	keys     map[string]*result
	unsent   int
	errors   []string
}

// View is the externally visible state of a group.
type View struct {
	ID       uuid.UUID `json:"id"`
	Status   Status    `json:"status"`
	Total    int       `json:"total"`
	Acked    int       `json:"acked"`
	Failed   int       `json:"failed"`
	Pending  int       `json:"pending"`
	Errors   []string  `json:"errors,omitempty"`
	Created  time.Time `json:"created"`
	Finished time.Time `json:"finished,omitempty"`
}

// Tracker correlates transaction keys with request groups. Results that
// arrive before their group is opened are held until it is, or until they
// age out.
type Tracker struct {
	mu     sync.Mutex
	groups map[uuid.UUID]*group
	byKey  map[string]uuid.UUID
	early  map[string]*result

	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func NewTracker(timeout time.Duration, now func() time.Time, logger zerolog.Logger) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		groups:  make(map[uuid.UUID]*group),
		byKey:   make(map[string]uuid.UUID),
		early:   make(map[string]*result),
		timeout: timeout,
		now:     now,
		logger:  logger.With().Str("service", "requestgroup").Logger(),
	}
}

// Open starts a group waiting on keys. sendErrors are requests that failed
// before reaching the wire; they count as failed members.
func (t *Tracker) Open(keys []string, sendErrors []error) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	g := &group{
		id:      uuid.New(),
		created: t.now(),
		status:  StatusPending,
		keys:    make(map[string]*result, len(keys)),
	}
	for _, err := range sendErrors {
		g.unsent++
		g.errors = append(g.errors, err.Error())
	}
	for _, key := range keys {
		if r, ok := t.early[key]; ok {
			delete(t.early, key)
			g.keys[key] = r
			if !r.ok && r.msg != "" {
				g.errors = append(g.errors, r.msg)
			}
			continue
		}
		g.keys[key] = nil
		t.byKey[key] = g.id
	}
	t.groups[g.id] = g
	t.settleLocked(g)
	return g.id
}

// Resolve records the outcome of the request with key.
func (t *Tracker) Resolve(key string, ok bool, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &result{ok: ok, msg: msg, at: t.now()}
	id, tracked := t.byKey[key]
	if !tracked {
		t.early[key] = r
		return
	}
	delete(t.byKey, key)
	g, exists := t.groups[id]
	if !exists || g.status != StatusPending {
		return
	}
	g.keys[key] = r
	if !ok && msg != "" {
		g.errors = append(g.errors, msg)
	}
	t.settleLocked(g)
}

func (t *Tracker) settleLocked(g *group) {
	if g.status != StatusPending {
		return
	}
	failed := g.unsent > 0
	for _, r := range g.keys {
		if r == nil {
			return
		}
		if !r.ok {
			failed = true
		}
	}
	g.status = StatusComplete
	if failed {
		g.status = StatusFailed
	}
	g.finished = t.now()
}

// Get returns the state of group id.
func (t *Tracker) Get(id uuid.UUID) (View, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.groups[id]
	if !ok {
		return View{}, false
	}
	return g.view(), true
}

func (g *group) view() View {
	v := View{
		ID:       g.id,
		Status:   g.status,
		Total:    len(g.keys) + g.unsent,
		Failed:   g.unsent,
		Created:  g.created,
		Finished: g.finished,
	}
	for _, r := range g.keys {
		switch {
		case r == nil:
			v.Pending++
		case r.ok:
			v.Acked++
		default:
			v.Failed++
		}
	}
	v.Errors = append([]string(nil), g.errors...)
	sort.Strings(v.Errors)
	return v
}

// Sweep expires pending groups older than the timeout, forgets finished
// groups after ten timeouts and drops stale early results.
func (t *Tracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	expired := 0
	for id, g := range t.groups {
		switch {
		case g.status == StatusPending && now.Sub(g.created) >= t.timeout:
			g.status = StatusExpired
			g.finished = now
			for key, r := range g.keys {
				if r == nil {
					delete(t.byKey, key)
				}
			}
			expired++
			t.logger.Debug().Str("group", id.String()).Msg("request group expired")
		case g.status != StatusPending && now.Sub(g.finished) >= 10*t.timeout:
			delete(t.groups, id)
		}
	}
	for key, r := range t.early {
		if now.Sub(r.at) >= t.timeout {
			delete(t.early, key)
		}
	}
	return expired
}

// Run sweeps every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Sweep(t.now())
		}
	}
}
