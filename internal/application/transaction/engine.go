package transaction

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/metrics"
)

var (
	ErrDuplicatePending = errors.New("transaction already pending")
	ErrNoSubscription   = errors.New("no active subscription")
	ErrSubIDCollision   = errors.New("subscription id already active")
	ErrEncode           = errors.New("encode failed")
	ErrSend             = errors.New("transport send failed")
	ErrOutcomeDecode    = errors.New("control outcome undecodable")
)

// Table names used in logs, stats and metrics.
const (
	tablePendingSubs     = "pending_subscriptions"
	tableActiveSubs      = "active_subscriptions"
	tablePendingDeletes  = "pending_deletes"
	tablePendingControls = "pending_controls"
)

// Config tunes an Engine.
type Config struct {
	// RequestorID fixes the requestor id; negative picks a random one in
	// [0, 65535].
	RequestorID int64

	// Timeout is how long a pending transaction may wait for a response
	// before the reaper evicts it.
	Timeout time.Duration

	Now func() time.Time
}

func (c Config) normalized() Config {
	out := c
	if out.RequestorID < 0 || out.RequestorID > e2ap.MaxRequestorID {
		out.RequestorID = rand.Int64N(e2ap.MaxRequestorID + 1)
	}
	if out.Timeout <= 0 {
		out.Timeout = 30 * time.Second
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}

type pendingSub struct {
	sub Subscription
}

type pendingDelete struct {
	sub     Subscription
	created time.Time
}

type pendingControl struct {
	id       e2ap.TransactionID
	endpoint string
	control  e2sm.Control
	created  time.Time
}

// Engine correlates E2AP requests with their responses. One mutex guards the
// four transaction tables; nothing is sent while it is held.
type Engine struct {
	mu              sync.Mutex
	requestorID     int64
	nextInstance    int64
	pendingSubs     map[string]*pendingSub
	active          map[int32]*Subscription
	pendingDeletes  map[string]*pendingDelete
	pendingControls map[int64]*pendingControl
	handler         Handler

	transport e2ap.Transport
	codec     e2ap.Codec
	models    *e2sm.Registry
	timeout   time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

func NewEngine(transport e2ap.Transport, codec e2ap.Codec, models *e2sm.Registry, cfg Config, logger zerolog.Logger) *Engine {
	cfg = cfg.normalized()
	return &Engine{
		requestorID:     cfg.RequestorID,
		nextInstance:    1,
		pendingSubs:     make(map[string]*pendingSub),
		active:          make(map[int32]*Subscription),
		pendingDeletes:  make(map[string]*pendingDelete),
		pendingControls: make(map[int64]*pendingControl),
		handler:         NopHandler{},
		transport:       transport,
		codec:           codec,
		models:          models,
		timeout:         cfg.Timeout,
		now:             cfg.Now,
		logger:          logger.With().Str("service", "transaction").Logger(),
	}
}

// SetHandler installs the receiver of correlated events.
func (e *Engine) SetHandler(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	e.mu.Lock()
	e.handler = h
	e.mu.Unlock()
}

func (e *Engine) RequestorID() int64 {
	return e.requestorID
}

// NextInstanceID returns a fresh, process-unique instance id.
func (e *Engine) NextInstanceID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextInstanceLocked()
}

func (e *Engine) nextInstanceLocked() int64 {
	id := e.nextInstance
	e.nextInstance++
	return id
}

// Subscribe sends a subscription request to endpoint.
func (e *Engine) Subscribe(ctx context.Context, endpoint string, req SubscribeRequest) (Handle, error) {
	model, err := e.models.For(req.Trigger)
	if err != nil {
		return Handle{}, err
	}
	trigger, err := model.EncodeEventTrigger(req.Trigger)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: event trigger: %w", ErrEncode, err)
	}
	actions, err := e2sm.EncodeActions(model, req.Actions)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: actions: %w", ErrEncode, err)
	}

	e.mu.Lock()
	if req.InstanceID == 0 {
		req.InstanceID = e.nextInstanceLocked()
	}
	id := e2ap.TransactionID{RequestorID: e.requestorID, InstanceID: req.InstanceID}
	key := id.Key()
	if _, ok := e.pendingSubs[key]; ok {
		e.mu.Unlock()
		return Handle{}, fmt.Errorf("%w: subscription %s", ErrDuplicatePending, key)
	}
	if existing, ok := e.active[id.SubID()]; ok {
		e.mu.Unlock()
		return Handle{}, fmt.Errorf("%w: %d held by %s", ErrSubIDCollision, id.SubID(), existing.ID.Key())
	}
	sub := Subscription{
		ID:         id,
		SubID:      id.SubID(),
		Endpoint:   endpoint,
		FunctionID: model.FunctionID(),
		Request:    req,
		Created:    e.now(),
	}
	entry := &pendingSub{sub: sub}
	e.pendingSubs[key] = entry
	e.mu.Unlock()

	pdu := &e2ap.SubscriptionRequest{
		ID:           id,
		FunctionID:   model.FunctionID(),
		EventTrigger: trigger,
		Actions:      actions,
	}
	if err := e.send(ctx, endpoint, sub.SubID, pdu); err != nil {
		e.mu.Lock()
		if e.pendingSubs[key] == entry {
			delete(e.pendingSubs, key)
		}
		e.mu.Unlock()
		return Handle{}, err
	}
	return Handle{ID: id, SubID: sub.SubID, Endpoint: endpoint, Kind: e2ap.KindSubscribeRequest}, nil
}

// Unsubscribe deletes every active subscription endpoint holds for fn.
func (e *Engine) Unsubscribe(ctx context.Context, endpoint string, fn e2ap.FunctionID) ([]Handle, error) {
	e.mu.Lock()
	subs := e.activeLocked(func(s *Subscription) bool {
		return s.Endpoint == endpoint && s.FunctionID == fn
	})
	e.mu.Unlock()
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: %s function %d", ErrNoSubscription, endpoint, fn)
	}
	return e.deleteSubscriptions(ctx, subs, false)
}

// DeleteAll decommissions endpoint: it sends one delete per active
// subscription and stops attributing indications to them.
func (e *Engine) DeleteAll(ctx context.Context, endpoint string) ([]Handle, error) {
	e.mu.Lock()
	subs := e.activeLocked(func(s *Subscription) bool { return s.Endpoint == endpoint })
	e.mu.Unlock()
	return e.deleteSubscriptions(ctx, subs, true)
}

func (e *Engine) deleteSubscriptions(ctx context.Context, subs []Subscription, drop bool) ([]Handle, error) {
	var handles []Handle
	var errs []error
	for _, sub := range subs {
		h, err := e.sendDelete(ctx, sub, drop)
		if err != nil {
			if drop && errors.Is(err, ErrDuplicatePending) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		handles = append(handles, h)
	}
	return handles, errors.Join(errs...)
}

func (e *Engine) sendDelete(ctx context.Context, sub Subscription, drop bool) (Handle, error) {
	key := sub.ID.Key()
	e.mu.Lock()
	if _, ok := e.pendingDeletes[key]; ok {
		e.mu.Unlock()
		return Handle{}, fmt.Errorf("%w: delete %s", ErrDuplicatePending, key)
	}
	entry := &pendingDelete{sub: sub, created: e.now()}
	e.pendingDeletes[key] = entry
	if drop {
		e.removeActiveLocked(sub)
	}
	e.mu.Unlock()

	pdu := &e2ap.SubscriptionDeleteRequest{ID: sub.ID, FunctionID: sub.FunctionID}
	if err := e.send(ctx, sub.Endpoint, sub.SubID, pdu); err != nil {
		e.mu.Lock()
		if e.pendingDeletes[key] == entry {
			delete(e.pendingDeletes, key)
		}
		e.mu.Unlock()
		return Handle{}, err
	}
	return Handle{ID: sub.ID, SubID: sub.SubID, Endpoint: sub.Endpoint, Kind: e2ap.KindDeleteRequest}, nil
}

// SendControl sends a control request with a fresh instance id. With
// ackRequested the engine tracks it until an ack, failure or expiry.
func (e *Engine) SendControl(ctx context.Context, endpoint string, control e2sm.Control, ackRequested bool) (Handle, error) {
	model, err := e.models.For(control)
	if err != nil {
		return Handle{}, err
	}
	enc, err := model.EncodeControl(control)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: control: %w", ErrEncode, err)
	}

	e.mu.Lock()
	id := e2ap.TransactionID{RequestorID: e.requestorID, InstanceID: e.nextInstanceLocked()}
	var entry *pendingControl
	if ackRequested {
		if _, ok := e.pendingControls[id.InstanceID]; ok {
			e.mu.Unlock()
			// The counter is monotonic; reaching this is a programming error.
			panic(fmt.Sprintf("transaction: instance id %d reused", id.InstanceID))
		}
		entry = &pendingControl{id: id, endpoint: endpoint, control: control, created: e.now()}
		e.pendingControls[id.InstanceID] = entry
	}
	e.mu.Unlock()

	ack := e2ap.AckNone
	if ackRequested {
		ack = e2ap.AckAck
	}
	pdu := &e2ap.ControlRequest{
		ID:            id,
		FunctionID:    model.FunctionID(),
		CallProcessID: enc.CallProcessID,
		Header:        enc.Header,
		Message:       enc.Message,
		AckRequest:    ack,
	}
	if err := e.send(ctx, endpoint, e2ap.NoSubID, pdu); err != nil {
		if entry != nil {
			e.mu.Lock()
			if e.pendingControls[id.InstanceID] == entry {
				delete(e.pendingControls, id.InstanceID)
			}
			e.mu.Unlock()
		}
		return Handle{}, err
	}
	return Handle{ID: id, SubID: e2ap.NoSubID, Endpoint: endpoint, Kind: e2ap.KindControlRequest}, nil
}

func (e *Engine) send(ctx context.Context, endpoint string, subID int32, pdu e2ap.PDU) error {
	payload, err := e.codec.Encode(pdu)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, pdu.Kind(), err)
	}
	env := e2ap.Envelope{
		Kind:    pdu.Kind(),
		SubID:   subID,
		Meid:    endpoint,
		Xid:     pdu.Transaction().Key(),
		Payload: payload,
	}
	if err := e.transport.Send(ctx, env); err != nil {
		metrics.RecordSendFailure(pdu.Kind().String())
		e.logger.Warn().Err(err).Str("kind", pdu.Kind().String()).Str("meid", endpoint).Str("key", env.Xid).Msg("send failed")
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	metrics.RecordSent(pdu.Kind().String())
	publishStats(e.Stats())
	e.logger.Debug().Str("kind", pdu.Kind().String()).Str("meid", endpoint).Str("key", env.Xid).Int32("sub_id", subID).Msg("sent")
	return nil
}

func (e *Engine) activeLocked(match func(*Subscription) bool) []Subscription {
	var out []Subscription
	for _, s := range e.active {
		if match(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.InstanceID < out[j].ID.InstanceID })
	return out
}

func (e *Engine) removeActiveLocked(sub Subscription) {
	if cur, ok := e.active[sub.SubID]; ok && cur.ID == sub.ID {
		delete(e.active, sub.SubID)
	}
}

// Subscriptions lists the active subscriptions held by endpoint; an empty
// endpoint lists all of them.
func (e *Engine) Subscriptions(endpoint string) []Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeLocked(func(s *Subscription) bool { return endpoint == "" || s.Endpoint == endpoint })
}

// Stats reports the size of each transaction table.
type Stats struct {
	RequestorID          int64 `json:"requestor_id"`
	NextInstanceID       int64 `json:"next_instance_id"`
	PendingSubscriptions int   `json:"pending_subscriptions"`
	ActiveSubscriptions  int   `json:"active_subscriptions"`
	PendingDeletes       int   `json:"pending_deletes"`
	PendingControls      int   `json:"pending_controls"`
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() Stats {
	return Stats{
		RequestorID:          e.requestorID,
		NextInstanceID:       e.nextInstance,
		PendingSubscriptions: len(e.pendingSubs),
		ActiveSubscriptions:  len(e.active),
		PendingDeletes:       len(e.pendingDeletes),
		PendingControls:      len(e.pendingControls),
	}
}

func publishStats(s Stats) {
	metrics.SetPending(tablePendingSubs, s.PendingSubscriptions)
	metrics.SetPending(tableActiveSubs, s.ActiveSubscriptions)
	metrics.SetPending(tablePendingDeletes, s.PendingDeletes)
	metrics.SetPending(tablePendingControls, s.PendingControls)
}
