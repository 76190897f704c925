package allocation

import (
	"context"
	"fmt"

	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/domain/nexran"
	"github.com/nexran/nexran/internal/domain/zylinium"
)

var _ transaction.Handler = (*Controller)(nil)

func (c *Controller) resolve(key string, ok bool, msg string) {
	if c.groups != nil {
		c.groups.Resolve(key, ok, msg)
	}
}

func causeMessage(what, endpoint string, cause e2ap.Cause) string {
	return fmt.Sprintf("%s: %s failed (cause %d/%d)", endpoint, what, cause.Type, cause.Value)
}

func (c *Controller) OnSubscribeResponse(_ context.Context, sub transaction.Subscription) {
	c.setConnected(sub.Endpoint, true)
	c.resolve(sub.ID.Key(), true, "")
}

func (c *Controller) OnSubscribeFailure(_ context.Context, sub transaction.Subscription, cause e2ap.Cause) {
	c.resolve(sub.ID.Key(), false, causeMessage("subscription", sub.Endpoint, cause))
}

func (c *Controller) OnDeleteResponse(_ context.Context, sub transaction.Subscription) {
	c.resolve(sub.ID.Key(), true, "")
}

func (c *Controller) OnDeleteFailure(_ context.Context, sub transaction.Subscription, cause e2ap.Cause) {
	c.resolve(sub.ID.Key(), false, causeMessage("subscription delete", sub.Endpoint, cause))
}

func (c *Controller) OnControlAck(_ context.Context, res transaction.ControlResult) {
	c.resolve(res.ID.Key(), true, "")
}

func (c *Controller) OnControlFailure(_ context.Context, res transaction.ControlResult) {
	if res.Err != nil {
		c.resolve(res.ID.Key(), false, fmt.Sprintf("%s: control failed: %v", res.Endpoint, res.Err))
		return
	}
	c.resolve(res.ID.Key(), false, causeMessage("control", res.Endpoint, res.Cause))
}

// OnIndication routes KPM reports into the allocation loop. Status reports
// are only logged.
func (c *Controller) OnIndication(ctx context.Context, ev transaction.IndicationEvent) {
	switch ind := ev.Indication.(type) {
	case *kpm.Indication:
		c.HandleReport(ctx, ev.Endpoint, ind.Report)
	case *nexran.SliceStatusReport:
		c.setConnected(ev.Endpoint, true)
		for _, st := range ind.Statuses {
			c.logger.Debug().
				Str("meid", ev.Endpoint).
				Str("slice", st.Name).
				Int("share", st.Policy.Share).
				Strs("imsis", st.IMSIs).
				Msg("slice status")
		}
	case *zylinium.MaskStatusIndication:
		c.setConnected(ev.Endpoint, true)
		c.logger.Debug().
			Str("meid", ev.Endpoint).
			Str("dl_rbg_mask", ind.Mask.DLRBGMask).
			Str("ul_prb_mask", ind.Mask.ULPRBMask).
			Msg("mask status")
	default:
		c.logger.Warn().Str("meid", ev.Endpoint).Str("type", fmt.Sprintf("%T", ind)).Msg("unhandled indication")
	}
}

// OnExpired fails the transaction in its request group. A node that never
// answered a subscription is marked disconnected.
func (c *Controller) OnExpired(_ context.Context, exp transaction.Expired) {
	c.resolve(exp.ID.Key(), false, fmt.Sprintf("%s: %s timed out after %s", exp.Endpoint, exp.Kind, exp.Age))
	if exp.Kind == e2ap.KindSubscribeRequest {
		c.setConnected(exp.Endpoint, false)
	}
}
