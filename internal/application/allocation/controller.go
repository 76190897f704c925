// Package allocation is the slice allocation controller: it owns the NodeB,
// slice and UE registry, turns KPM reports into share decisions and pushes
// every configuration change to the nodes as control requests.
package allocation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexran/nexran/internal/application/requestgroup"
	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/domain/nexran"
	"github.com/nexran/nexran/internal/domain/slice"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_engine.go -package=mocks . Engine,EventPublisher

// Engine is the part of the transaction engine the controller drives.
type Engine interface {
	Subscribe(ctx context.Context, endpoint string, req transaction.SubscribeRequest) (transaction.Handle, error)
	Unsubscribe(ctx context.Context, endpoint string, fn e2ap.FunctionID) ([]transaction.Handle, error)
	DeleteAll(ctx context.Context, endpoint string) ([]transaction.Handle, error)
	SendControl(ctx context.Context, endpoint string, control e2sm.Control, ackRequested bool) (transaction.Handle, error)
}

// EventPublisher fans controller events out to observers.
type EventPublisher interface {
	Publish(event string, data any)
}

// Event names.
const (
	EventDecision = "decision"
	EventNodeB    = "nodeb"
)

// Config tunes a Controller.
type Config struct {
	KPMPeriod kpm.Period

	// KPMFunction is the function id KPM subscriptions are registered under.
	KPMFunction e2ap.FunctionID

	// SliceStatus also subscribes every node to slice status reports.
	SliceStatus bool

	Now func() time.Time
}

// Controller is safe for concurrent use. Its lock is never held while
// calling into the engine.
type Controller struct {
	mu        sync.Mutex
	nodebs    map[string]*slice.NodeB
	slices    map[string]*slice.Slice
	ues       map[string]*slice.UE
	ueSlice   map[string]string
	kpmPeriod kpm.Period

	kpmFunction e2ap.FunctionID
	sliceStatus bool

	engine  Engine
	groups  *requestgroup.Tracker
	archive kpm.Archive
	events  EventPublisher
	now     func() time.Time
	logger  zerolog.Logger
}

// NewController returns a controller holding only the default slice.
// archive and events may be nil.
func NewController(
	engine Engine,
	groups *requestgroup.Tracker,
	archive kpm.Archive,
	events EventPublisher,
	cfg Config,
	logger zerolog.Logger,
) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.KPMPeriod.Valid() {
		cfg.KPMPeriod = kpm.PeriodDefault
	}
	c := &Controller{
		nodebs:      make(map[string]*slice.NodeB),
		slices:      make(map[string]*slice.Slice),
		ues:         make(map[string]*slice.UE),
		ueSlice:     make(map[string]string),
		kpmPeriod:   cfg.KPMPeriod,
		kpmFunction: cfg.KPMFunction,
		sliceStatus: cfg.SliceStatus,
		engine:      engine,
		groups:      groups,
		archive:     archive,
		events:      events,
		now:         cfg.Now,
		logger:      logger.With().Str("service", "allocation").Logger(),
	}
	def, _ := slice.NewSlice(slice.DefaultSliceName, slice.DefaultPolicy(cfg.Now))
	c.slices[def.Name] = def
	return c
}

// outbound is a control built under the lock and sent after it is released.
type outbound struct {
	endpoint string
	control  e2sm.Control
}

// subscription is a subscribe or delete built under the lock.
type subscription struct {
	endpoint string
	request  *transaction.SubscribeRequest
	remove   e2ap.FunctionID
	dropAll  bool
}

// dispatch sends every control and subscription change and opens one request
// group covering them. It returns uuid.Nil when there was nothing to send.
func (c *Controller) dispatch(ctx context.Context, controls []outbound, subs []subscription) uuid.UUID {
	if len(controls) == 0 && len(subs) == 0 {
		return uuid.Nil
	}
	var keys []string
	var errs []error
	for _, s := range subs {
		var handles []transaction.Handle
		var err error
		switch {
		case s.dropAll:
			handles, err = c.engine.DeleteAll(ctx, s.endpoint)
		case s.request != nil:
			var h transaction.Handle
			h, err = c.engine.Subscribe(ctx, s.endpoint, *s.request)
			if err == nil {
				handles = append(handles, h)
			}
		default:
			handles, err = c.engine.Unsubscribe(ctx, s.endpoint, s.remove)
			if errors.Is(err, transaction.ErrNoSubscription) {
				err = nil
			}
		}
		for _, h := range handles {
			keys = append(keys, h.Key())
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("meid", s.endpoint).Msg("subscription change failed")
			errs = append(errs, err)
		}
	}
	for _, o := range controls {
		h, err := c.engine.SendControl(ctx, o.endpoint, o.control, true)
		if err != nil {
			c.logger.Warn().Err(err).Str("meid", o.endpoint).Msg("control request failed")
			errs = append(errs, err)
			continue
		}
		keys = append(keys, h.Key())
	}
	if c.groups == nil {
		return uuid.Nil
	}
	return c.groups.Open(keys, errs)
}

func (c *Controller) publish(event string, data any) {
	if c.events != nil {
		c.events.Publish(event, data)
	}
}

// RequestStatus reports the combined outcome of a request group.
func (c *Controller) RequestStatus(id uuid.UUID) (requestgroup.View, error) {
	if c.groups == nil {
		return requestgroup.View{}, notFound("request", id.String())
	}
	v, ok := c.groups.Get(id)
	if !ok {
		return requestgroup.View{}, notFound("request", id.String())
	}
	return v, nil
}

func (c *Controller) kpmSubscriptionLocked() *transaction.SubscribeRequest {
	return &transaction.SubscribeRequest{
		Trigger: &kpm.EventTrigger{Period: c.kpmPeriod},
		Actions: []e2sm.Action{{ID: 1, Type: e2ap.ActionReport}},
	}
}

func (c *Controller) statusSubscriptionLocked() *transaction.SubscribeRequest {
	return &transaction.SubscribeRequest{
		Trigger: &nexran.EventTrigger{PeriodMs: c.kpmPeriod.Milliseconds()},
		Actions: []e2sm.Action{{ID: 1, Type: e2ap.ActionReport}},
	}
}

// nodebsForSliceLocked lists, sorted, the nodes the slice is bound to.
func (c *Controller) nodebsForSliceLocked(name string) []string {
	var out []string
	for _, nb := range c.nodebs {
		if nb.HasSlice(name) {
			out = append(out, nb.Name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedNames[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
