package transaction

import (
	"context"
	"time"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_handler.go -package=mocks . Handler

// Handler receives correlated protocol events. The engine never holds its
// lock while calling a handler, so handlers may call back into the engine.
type Handler interface {
	OnSubscribeResponse(ctx context.Context, sub Subscription)
	OnSubscribeFailure(ctx context.Context, sub Subscription, cause e2ap.Cause)
	OnDeleteResponse(ctx context.Context, sub Subscription)
	OnDeleteFailure(ctx context.Context, sub Subscription, cause e2ap.Cause)
	OnControlAck(ctx context.Context, res ControlResult)
	OnControlFailure(ctx context.Context, res ControlResult)
	OnIndication(ctx context.Context, ind IndicationEvent)
	OnExpired(ctx context.Context, exp Expired)
}

// NopHandler ignores every event. Embed it to implement a subset.
type NopHandler struct{}

func (NopHandler) OnSubscribeResponse(context.Context, Subscription)            {}
func (NopHandler) OnSubscribeFailure(context.Context, Subscription, e2ap.Cause) {}
func (NopHandler) OnDeleteResponse(context.Context, Subscription)               {}
func (NopHandler) OnDeleteFailure(context.Context, Subscription, e2ap.Cause)    {}
func (NopHandler) OnControlAck(context.Context, ControlResult)                  {}
func (NopHandler) OnControlFailure(context.Context, ControlResult)              {}
func (NopHandler) OnIndication(context.Context, IndicationEvent)                {}
func (NopHandler) OnExpired(context.Context, Expired)                           {}

// SubscribeRequest asks an endpoint for a subscription. InstanceID is
// optional; zero lets the engine mint one.
type SubscribeRequest struct {
	InstanceID int64
	Trigger    e2sm.EventTrigger
	Actions    []e2sm.Action
}

// Subscription is a subscription the engine tracks, pending or active.
type Subscription struct {
	ID         e2ap.TransactionID
	SubID      int32
	Endpoint   string
	FunctionID e2ap.FunctionID
	Request    SubscribeRequest
	Created    time.Time
}

// Handle identifies a transaction that was sent.
type Handle struct {
	ID       e2ap.TransactionID
	SubID    int32
	Endpoint string
	Kind     e2ap.Kind
}

func (h Handle) Key() string {
	return h.ID.Key()
}

// ControlResult is a resolved acknowledged control request.
type ControlResult struct {
	ID       e2ap.TransactionID
	Endpoint string
	Control  e2sm.Control
	Outcome  e2sm.ControlOutcome
	Status   int64
	Cause    e2ap.Cause
	// Err is set on a failure the engine detected itself, such as an
	// outcome it could not decode.
	Err error
}

// IndicationEvent is a decoded indication attributed to its subscription.
type IndicationEvent struct {
	Subscription Subscription
	Endpoint     string
	ActionID     int64
	SerialNumber int64
	Indication   e2sm.Indication
}

// Expired is a pending transaction the reaper evicted.
type Expired struct {
	Kind         e2ap.Kind
	ID           e2ap.TransactionID
	Endpoint     string
	Subscription *Subscription
	Control      e2sm.Control
	Age          time.Duration
}
