package transaction

import (
	"context"
	"fmt"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/metrics"
)

// Outcome reports what HandleMessage did with an inbound message.
type Outcome int

const (
	OutcomeHandled Outcome = iota
	OutcomeDiscarded
)

func (o Outcome) String() string {
	if o == OutcomeHandled {
		return "handled"
	}
	return "discarded"
}

// Discard reasons.
const (
	reasonDecode          = "decode"
	reasonUnexpectedKind  = "unexpected_kind"
	reasonNoPendingSub    = "no_pending_subscription"
	reasonDuplicate       = "duplicate_response"
	reasonSubIDCollision  = "sub_id_collision"
	reasonNoPendingDelete = "no_pending_delete"
	reasonNoPendingCtrl   = "no_pending_control"
	reasonForeignControl  = "foreign_requestor"
	reasonUnknownSub      = "unknown_subscription"
	reasonIndDecode       = "indication_decode"
)

// Receive adapts HandleMessage to e2ap.Receiver.
func (e *Engine) Receive(ctx context.Context, env e2ap.Envelope) {
	e.HandleMessage(ctx, env)
}

// HandleMessage correlates one inbound envelope with the transaction tables
// and notifies the handler. Messages that match nothing are discarded.
func (e *Engine) HandleMessage(ctx context.Context, env e2ap.Envelope) Outcome {
	pdu, err := e.codec.Decode(env.Kind, env.Payload)
	if err != nil {
		e.logger.Warn().Err(err).Str("kind", env.Kind.String()).Str("meid", env.Meid).Msg("undecodable message")
		return e.discard(env, reasonDecode)
	}

	var out Outcome
	switch p := pdu.(type) {
	case *e2ap.SubscriptionResponse:
		out = e.onSubscriptionResponse(ctx, env, p)
	case *e2ap.SubscriptionFailure:
		out = e.onSubscriptionFailure(ctx, env, p)
	case *e2ap.SubscriptionDeleteResponse:
		out = e.onDeleteOutcome(ctx, env, p.ID, nil)
	case *e2ap.SubscriptionDeleteFailure:
		out = e.onDeleteOutcome(ctx, env, p.ID, &p.Cause)
	case *e2ap.ControlAck:
		out = e.onControlOutcome(ctx, env, p.ID, p.Outcome, func(r *ControlResult) { r.Status = p.Status }, false)
	case *e2ap.ControlFailure:
		out = e.onControlOutcome(ctx, env, p.ID, p.Outcome, func(r *ControlResult) { r.Cause = p.Cause }, true)
	case *e2ap.Indication:
		out = e.onIndication(ctx, env, p)
	case *e2ap.ErrorIndication:
		e.logger.Warn().
			Str("meid", env.Meid).
			Str("key", p.ID.Key()).
			Int64("cause_type", p.Cause.Type).
			Int64("cause_value", p.Cause.Value).
			Msg("error indication")
		out = OutcomeHandled
	default:
		return e.discard(env, reasonUnexpectedKind)
	}
	if out == OutcomeHandled {
		metrics.RecordReceived(env.Kind.String(), out.String())
	}
	publishStats(e.Stats())
	return out
}

func (e *Engine) discard(env e2ap.Envelope, reason string) Outcome {
	metrics.RecordReceived(env.Kind.String(), OutcomeDiscarded.String())
	metrics.RecordDiscarded(reason)
	e.logger.Debug().Str("kind", env.Kind.String()).Str("meid", env.Meid).Str("xid", env.Xid).Str("reason", reason).Msg("discarded")
	return OutcomeDiscarded
}

func (e *Engine) onSubscriptionResponse(ctx context.Context, env e2ap.Envelope, p *e2ap.SubscriptionResponse) Outcome {
	key := p.ID.Key()
	e.mu.Lock()
	pending, ok := e.pendingSubs[key]
	if !ok {
		cur, active := e.active[p.ID.SubID()]
		e.mu.Unlock()
		if active && cur.ID == p.ID {
			return e.discard(env, reasonDuplicate)
		}
		return e.discard(env, reasonNoPendingSub)
	}
	delete(e.pendingSubs, key)
	sub := pending.sub
	if cur, taken := e.active[sub.SubID]; taken && cur.ID != sub.ID {
		e.mu.Unlock()
		e.logger.Error().Str("key", key).Str("holder", cur.ID.Key()).Int32("sub_id", sub.SubID).Msg("subscription id collision")
		return e.discard(env, reasonSubIDCollision)
	}
	e.active[sub.SubID] = &sub
	h := e.handler
	e.mu.Unlock()

	e.logger.Info().Str("meid", sub.Endpoint).Str("key", key).Int32("sub_id", sub.SubID).Ints64("not_admitted", p.NotAdmitted).Msg("subscription active")
	h.OnSubscribeResponse(ctx, sub)
	return OutcomeHandled
}

func (e *Engine) onSubscriptionFailure(ctx context.Context, env e2ap.Envelope, p *e2ap.SubscriptionFailure) Outcome {
	key := p.ID.Key()
	e.mu.Lock()
	pending, ok := e.pendingSubs[key]
	if !ok {
		e.mu.Unlock()
		return e.discard(env, reasonNoPendingSub)
	}
	delete(e.pendingSubs, key)
	h := e.handler
	e.mu.Unlock()

	e.logger.Warn().Str("meid", pending.sub.Endpoint).Str("key", key).Int64("cause_type", p.Cause.Type).Int64("cause_value", p.Cause.Value).Msg("subscription failed")
	h.OnSubscribeFailure(ctx, pending.sub, p.Cause)
	return OutcomeHandled
}

func (e *Engine) onDeleteOutcome(ctx context.Context, env e2ap.Envelope, id e2ap.TransactionID, cause *e2ap.Cause) Outcome {
	key := id.Key()
	e.mu.Lock()
	pending, ok := e.pendingDeletes[key]
	if !ok {
		e.mu.Unlock()
		return e.discard(env, reasonNoPendingDelete)
	}
	delete(e.pendingDeletes, key)
	if cause == nil {
		e.removeActiveLocked(pending.sub)
	}
	h := e.handler
	e.mu.Unlock()

	if cause != nil {
		e.logger.Warn().Str("meid", pending.sub.Endpoint).Str("key", key).Int64("cause_type", cause.Type).Int64("cause_value", cause.Value).Msg("subscription delete failed")
		h.OnDeleteFailure(ctx, pending.sub, *cause)
		return OutcomeHandled
	}
	e.logger.Info().Str("meid", pending.sub.Endpoint).Str("key", key).Msg("subscription deleted")
	h.OnDeleteResponse(ctx, pending.sub)
	return OutcomeHandled
}

func (e *Engine) onControlOutcome(ctx context.Context, env e2ap.Envelope, id e2ap.TransactionID, outcome []byte, fill func(*ControlResult), failed bool) Outcome {
	if id.RequestorID != e.requestorID {
		return e.discard(env, reasonForeignControl)
	}
	e.mu.Lock()
	pending, ok := e.pendingControls[id.InstanceID]
	if !ok {
		e.mu.Unlock()
		return e.discard(env, reasonNoPendingCtrl)
	}
	delete(e.pendingControls, id.InstanceID)
	h := e.handler
	e.mu.Unlock()

	res := ControlResult{ID: id, Endpoint: pending.endpoint, Control: pending.control}
	fill(&res)
	if len(outcome) > 0 {
		decoded, err := e.decodeOutcome(pending.control, outcome)
		if err != nil {
			e.logger.Warn().Err(err).Str("meid", res.Endpoint).Str("key", id.Key()).Msg("undecodable control outcome")
			res.Err = fmt.Errorf("%w: %v", ErrOutcomeDecode, err)
			h.OnControlFailure(ctx, res)
			return OutcomeHandled
		}
		res.Outcome = decoded
	}

	if failed {
		e.logger.Warn().Str("meid", res.Endpoint).Str("key", id.Key()).Int64("cause_type", res.Cause.Type).Int64("cause_value", res.Cause.Value).Msg("control failed")
		h.OnControlFailure(ctx, res)
		return OutcomeHandled
	}
	e.logger.Debug().Str("meid", res.Endpoint).Str("key", id.Key()).Msg("control acknowledged")
	h.OnControlAck(ctx, res)
	return OutcomeHandled
}

func (e *Engine) decodeOutcome(control e2sm.Control, outcome []byte) (e2sm.ControlOutcome, error) {
	model, err := e.models.For(control)
	if err != nil {
		return nil, err
	}
	return model.DecodeControlOutcome(control, outcome)
}

func (e *Engine) onIndication(ctx context.Context, env e2ap.Envelope, p *e2ap.Indication) Outcome {
	subID := env.SubID
	if subID == e2ap.NoSubID {
		subID = p.ID.SubID()
	}
	e.mu.Lock()
	cur, ok := e.active[subID]
	var sub Subscription
	if ok {
		sub = *cur
	}
	h := e.handler
	e.mu.Unlock()
	if !ok {
		return e.discard(env, reasonUnknownSub)
	}

	model, err := e.models.For(sub.Request.Trigger)
	if err != nil {
		return e.discard(env, reasonIndDecode)
	}
	ind, err := model.DecodeIndication(sub.Request.Trigger, p.Header, p.Message)
	if err != nil {
		e.logger.Warn().Err(err).Str("meid", env.Meid).Int32("sub_id", subID).Msg("undecodable indication")
		return e.discard(env, reasonIndDecode)
	}

	endpoint := env.Meid
	if endpoint == "" {
		endpoint = sub.Endpoint
	}
	h.OnIndication(ctx, IndicationEvent{
		Subscription: sub,
		Endpoint:     endpoint,
		ActionID:     p.ActionID,
		SerialNumber: p.SerialNumber,
		Indication:   ind,
	})
	return OutcomeHandled
}
