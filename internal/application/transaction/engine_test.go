package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/application/transaction/mocks"
	"github.com/nexran/nexran/internal/domain/e2ap"
	e2apmocks "github.com/nexran/nexran/internal/domain/e2ap/mocks"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/infrastructure/codec"
)

const (
	testOID    = "1.3.6.1.4.1.53148.1.1.2.7"
	testMeid   = "gnB_001_001_00000a"
	requestor  = int64(7)
	testExpiry = 30 * time.Second
)

type testTrigger struct{}

func (testTrigger) ModelOID() string { return testOID }

type testControl struct{ Body string }

func (testControl) ModelOID() string { return testOID }

type testIndication struct{ Body string }

func (testIndication) ModelOID() string { return testOID }

type testOutcome struct{ Body string }

func (testOutcome) ModelOID() string { return testOID }

type testModel struct {
	e2sm.Unimplemented
}

func (testModel) Name() string { return "test" }

func (testModel) OID() string { return testOID }

func (testModel) FunctionID() e2ap.FunctionID { return 3 }

func (testModel) EncodeEventTrigger(e2sm.EventTrigger) ([]byte, error) {
	return []byte("trigger"), nil
}

func (testModel) EncodeControl(c e2sm.Control) (e2sm.EncodedControl, error) {
	ctl, ok := c.(testControl)
	if !ok {
		return e2sm.EncodedControl{}, e2sm.ErrWrongModel
	}
	return e2sm.EncodedControl{Message: []byte(ctl.Body)}, nil
}

func (testModel) DecodeIndication(_ e2sm.EventTrigger, _, message []byte) (e2sm.Indication, error) {
	if string(message) == "garbage" {
		return nil, errors.New("bad indication")
	}
	return testIndication{Body: string(message)}, nil
}

func (testModel) DecodeControlOutcome(_ e2sm.Control, outcome []byte) (e2sm.ControlOutcome, error) {
	if string(outcome) == "garbage" {
		return nil, errors.New("bad outcome")
	}
	return testOutcome{Body: string(outcome)}, nil
}

type fixture struct {
	engine    *transaction.Engine
	transport *e2apmocks.MockTransport
	handler   *mocks.MockHandler
	codec     *codec.Msgpack
	now       time.Time

	mu   sync.Mutex
	sent []e2ap.Envelope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	models, err := e2sm.NewRegistry(testModel{})
	require.NoError(t, err)

	f := &fixture{
		transport: e2apmocks.NewMockTransport(ctrl),
		handler:   mocks.NewMockHandler(ctrl),
		codec:     codec.NewMsgpack(),
		now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.engine = transaction.NewEngine(f.transport, f.codec, models, transaction.Config{
		RequestorID: requestor,
		Timeout:     testExpiry,
		Now:         func() time.Time { return f.now },
	}, zerolog.Nop())
	f.engine.SetHandler(f.handler)
	return f
}

func (f *fixture) acceptSends() {
	f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, env e2ap.Envelope) error {
		f.mu.Lock()
		f.sent = append(f.sent, env)
		f.mu.Unlock()
		return nil
	}).AnyTimes()
}

func (f *fixture) lastSent(t *testing.T) e2ap.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fixture) envelope(t *testing.T, pdu e2ap.PDU, subID int32) e2ap.Envelope {
	t.Helper()
	payload, err := f.codec.Encode(pdu)
	require.NoError(t, err)
	return e2ap.Envelope{Kind: pdu.Kind(), SubID: subID, Meid: testMeid, Xid: pdu.Transaction().Key(), Payload: payload}
}

func (f *fixture) activate(t *testing.T, ctx context.Context) transaction.Handle {
	t.Helper()
	h, err := f.engine.Subscribe(ctx, testMeid, transaction.SubscribeRequest{Trigger: testTrigger{}})
	require.NoError(t, err)
	f.handler.EXPECT().OnSubscribeResponse(gomock.Any(), gomock.Any())
	out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.SubscriptionResponse{ID: h.ID}, h.SubID))
	require.Equal(t, transaction.OutcomeHandled, out)
	return h
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("response activates once", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		h, err := f.engine.Subscribe(ctx, testMeid, transaction.SubscribeRequest{Trigger: testTrigger{}})
		require.NoError(t, err)
		assert.Equal(t, requestor, h.ID.RequestorID)
		assert.Equal(t, h.ID.SubID(), h.SubID)

		env := f.lastSent(t)
		assert.Equal(t, e2ap.KindSubscribeRequest, env.Kind)
		assert.Equal(t, h.Key(), env.Xid)
		assert.Equal(t, h.SubID, env.SubID)
		assert.Equal(t, 1, f.engine.Stats().PendingSubscriptions)

		f.handler.EXPECT().OnSubscribeResponse(gomock.Any(), gomock.Any()).Do(func(_ context.Context, sub transaction.Subscription) {
			assert.Equal(t, h.ID, sub.ID)
			assert.Equal(t, e2ap.FunctionID(3), sub.FunctionID)
			assert.Equal(t, testMeid, sub.Endpoint)
		})
		resp := f.envelope(t, &e2ap.SubscriptionResponse{ID: h.ID, Admitted: []int64{1}}, h.SubID)
		assert.Equal(t, transaction.OutcomeHandled, f.engine.HandleMessage(ctx, resp))

		stats := f.engine.Stats()
		assert.Equal(t, 0, stats.PendingSubscriptions)
		assert.Equal(t, 1, stats.ActiveSubscriptions)

		// A repeated response neither notifies nor changes state.
		assert.Equal(t, transaction.OutcomeDiscarded, f.engine.HandleMessage(ctx, resp))
		assert.Equal(t, 1, f.engine.Stats().ActiveSubscriptions)
		assert.Len(t, f.engine.Subscriptions(testMeid), 1)
		assert.Empty(t, f.engine.Subscriptions("other"))
	})

	t.Run("failure clears pending", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		h, err := f.engine.Subscribe(ctx, testMeid, transaction.SubscribeRequest{Trigger: testTrigger{}})
		require.NoError(t, err)

		cause := e2ap.Cause{Type: 1, Value: 4}
		f.handler.EXPECT().OnSubscribeFailure(gomock.Any(), gomock.Any(), cause)
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.SubscriptionFailure{ID: h.ID, Cause: cause}, h.SubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
		assert.Equal(t, transaction.Stats{RequestorID: requestor, NextInstanceID: 2}, f.engine.Stats())
	})

	t.Run("duplicate pending key rejected", func(t *testing.T) {
		f := newFixture(t)
		f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		req := transaction.SubscribeRequest{InstanceID: 5, Trigger: testTrigger{}}
		first, err := f.engine.Subscribe(ctx, testMeid, req)
		require.NoError(t, err)

		_, err = f.engine.Subscribe(ctx, testMeid, req)
		assert.ErrorIs(t, err, transaction.ErrDuplicatePending)
		assert.Equal(t, 1, f.engine.Stats().PendingSubscriptions)

		f.handler.EXPECT().OnSubscribeResponse(gomock.Any(), gomock.Any())
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.SubscriptionResponse{ID: first.ID}, first.SubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
	})

	t.Run("send failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := f.engine.Subscribe(ctx, testMeid, transaction.SubscribeRequest{Trigger: testTrigger{}})
		assert.ErrorIs(t, err, transaction.ErrSend)
		assert.Equal(t, 0, f.engine.Stats().PendingSubscriptions)
	})

	t.Run("unknown model", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Subscribe(ctx, testMeid, transaction.SubscribeRequest{})
		assert.ErrorIs(t, err, e2sm.ErrUnknownModel)
	})
}

func TestUnsolicitedMessagesDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stray := e2ap.TransactionID{RequestorID: requestor, InstanceID: 99}

	tests := []struct {
		name string
		pdu  e2ap.PDU
	}{
		{"subscription response", &e2ap.SubscriptionResponse{ID: stray}},
		{"subscription failure", &e2ap.SubscriptionFailure{ID: stray}},
		{"delete response", &e2ap.SubscriptionDeleteResponse{ID: stray}},
		{"delete failure", &e2ap.SubscriptionDeleteFailure{ID: stray}},
		{"control ack", &e2ap.ControlAck{ID: stray}},
		{"control failure", &e2ap.ControlFailure{ID: stray}},
		{"foreign control ack", &e2ap.ControlAck{ID: e2ap.TransactionID{RequestorID: requestor + 1, InstanceID: 1}}},
		{"indication", &e2ap.Indication{ID: stray}},
		{"inbound request", &e2ap.ControlRequest{ID: stray}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.engine.HandleMessage(ctx, f.envelope(t, tt.pdu, e2ap.NoSubID))
			assert.Equal(t, transaction.OutcomeDiscarded, out)
		})
	}

	t.Run("undecodable", func(t *testing.T) {
		out := f.engine.HandleMessage(ctx, e2ap.Envelope{Kind: e2ap.KindIndication, Payload: []byte{0xc1}})
		assert.Equal(t, transaction.OutcomeDiscarded, out)
	})

	t.Run("error indication is logged", func(t *testing.T) {
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.ErrorIndication{ID: stray, Cause: e2ap.Cause{Type: 2, Value: 1}}, e2ap.NoSubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
	})
}

func TestControl(t *testing.T) {
	ctx := context.Background()

	t.Run("acknowledged", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		h, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "cfg"}, true)
		require.NoError(t, err)
		env := f.lastSent(t)
		assert.Equal(t, e2ap.KindControlRequest, env.Kind)
		assert.Equal(t, e2ap.NoSubID, env.SubID)
		assert.Equal(t, 1, f.engine.Stats().PendingControls)

		pdu, err := f.codec.Decode(env.Kind, env.Payload)
		require.NoError(t, err)
		req := pdu.(*e2ap.ControlRequest)
		assert.Equal(t, e2ap.AckAck, req.AckRequest)
		assert.Equal(t, []byte("cfg"), req.Message)

		f.handler.EXPECT().OnControlAck(gomock.Any(), gomock.Any()).Do(func(_ context.Context, res transaction.ControlResult) {
			assert.Equal(t, h.ID, res.ID)
			assert.Equal(t, testControl{Body: "cfg"}, res.Control)
			assert.Equal(t, testOutcome{Body: "ok"}, res.Outcome)
			assert.Equal(t, int64(0), res.Status)
		})
		ack := f.envelope(t, &e2ap.ControlAck{ID: h.ID, Outcome: []byte("ok")}, e2ap.NoSubID)
		assert.Equal(t, transaction.OutcomeHandled, f.engine.HandleMessage(ctx, ack))
		assert.Equal(t, 0, f.engine.Stats().PendingControls)
		assert.Equal(t, transaction.OutcomeDiscarded, f.engine.HandleMessage(ctx, ack))
	})

	t.Run("failure carries cause", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		h, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "cfg"}, true)
		require.NoError(t, err)

		f.handler.EXPECT().OnControlFailure(gomock.Any(), gomock.Any()).Do(func(_ context.Context, res transaction.ControlResult) {
			assert.Equal(t, e2ap.Cause{Type: 3, Value: 2}, res.Cause)
			assert.Nil(t, res.Outcome)
		})
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.ControlFailure{ID: h.ID, Cause: e2ap.Cause{Type: 3, Value: 2}}, e2ap.NoSubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
	})

	t.Run("undecodable outcome fails the control", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		h, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "cfg"}, true)
		require.NoError(t, err)
		f.handler.EXPECT().OnControlFailure(gomock.Any(), gomock.Any()).Do(func(_ context.Context, res transaction.ControlResult) {
			assert.Equal(t, h.ID, res.ID)
			assert.Equal(t, testMeid, res.Endpoint)
			assert.ErrorIs(t, res.Err, transaction.ErrOutcomeDecode)
			assert.Nil(t, res.Outcome)
		})
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.ControlAck{ID: h.ID, Outcome: []byte("garbage")}, e2ap.NoSubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
		assert.Equal(t, 0, f.engine.Stats().PendingControls)
	})

	t.Run("fire and forget", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()

		first, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "a"}, false)
		require.NoError(t, err)
		second, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "a"}, false)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, 0, f.engine.Stats().PendingControls)
	})

	t.Run("send failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("closed"))
		_, err := f.engine.SendControl(ctx, testMeid, testControl{Body: "cfg"}, true)
		assert.ErrorIs(t, err, transaction.ErrSend)
		assert.Equal(t, 0, f.engine.Stats().PendingControls)
	})
}

func TestIndication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.acceptSends()
	h := f.activate(t, ctx)

	t.Run("by transport sub id", func(t *testing.T) {
		f.handler.EXPECT().OnIndication(gomock.Any(), gomock.Any()).Do(func(_ context.Context, ind transaction.IndicationEvent) {
			assert.Equal(t, h.ID, ind.Subscription.ID)
			assert.Equal(t, int64(3), ind.SerialNumber)
			assert.Equal(t, testIndication{Body: "report"}, ind.Indication)
		})
		pdu := &e2ap.Indication{ID: h.ID, SerialNumber: 3, Message: []byte("report")}
		assert.Equal(t, transaction.OutcomeHandled, f.engine.HandleMessage(ctx, f.envelope(t, pdu, h.SubID)))
	})

	t.Run("by transaction id", func(t *testing.T) {
		f.handler.EXPECT().OnIndication(gomock.Any(), gomock.Any())
		pdu := &e2ap.Indication{ID: h.ID, Message: []byte("report")}
		assert.Equal(t, transaction.OutcomeHandled, f.engine.HandleMessage(ctx, f.envelope(t, pdu, e2ap.NoSubID)))
	})

	t.Run("unknown sub id", func(t *testing.T) {
		pdu := &e2ap.Indication{ID: h.ID, Message: []byte("report")}
		assert.Equal(t, transaction.OutcomeDiscarded, f.engine.HandleMessage(ctx, f.envelope(t, pdu, h.SubID+1)))
	})

	t.Run("undecodable body", func(t *testing.T) {
		pdu := &e2ap.Indication{ID: h.ID, Message: []byte("garbage")}
		assert.Equal(t, transaction.OutcomeDiscarded, f.engine.HandleMessage(ctx, f.envelope(t, pdu, h.SubID)))
	})
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to delete", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Unsubscribe(ctx, testMeid, 3)
		assert.ErrorIs(t, err, transaction.ErrNoSubscription)
	})

	t.Run("delete response removes subscription", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()
		h := f.activate(t, ctx)

		handles, err := f.engine.Unsubscribe(ctx, testMeid, 3)
		require.NoError(t, err)
		require.Len(t, handles, 1)
		assert.Equal(t, h.ID, handles[0].ID)
		assert.Equal(t, e2ap.KindDeleteRequest, f.lastSent(t).Kind)

		stats := f.engine.Stats()
		assert.Equal(t, 1, stats.PendingDeletes)
		assert.Equal(t, 1, stats.ActiveSubscriptions)

		_, err = f.engine.Unsubscribe(ctx, testMeid, 3)
		assert.ErrorIs(t, err, transaction.ErrDuplicatePending)

		f.handler.EXPECT().OnDeleteResponse(gomock.Any(), gomock.Any())
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.SubscriptionDeleteResponse{ID: h.ID}, h.SubID))
		assert.Equal(t, transaction.OutcomeHandled, out)

		stats = f.engine.Stats()
		assert.Equal(t, 0, stats.PendingDeletes)
		assert.Equal(t, 0, stats.ActiveSubscriptions)
	})

	t.Run("delete failure keeps subscription", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()
		h := f.activate(t, ctx)

		_, err := f.engine.Unsubscribe(ctx, testMeid, 3)
		require.NoError(t, err)

		f.handler.EXPECT().OnDeleteFailure(gomock.Any(), gomock.Any(), gomock.Any())
		out := f.engine.HandleMessage(ctx, f.envelope(t, &e2ap.SubscriptionDeleteFailure{ID: h.ID}, h.SubID))
		assert.Equal(t, transaction.OutcomeHandled, out)
		assert.Equal(t, 1, f.engine.Stats().ActiveSubscriptions)
	})

	t.Run("delete all drops subscriptions", func(t *testing.T) {
		f := newFixture(t)
		f.acceptSends()
		h := f.activate(t, ctx)

		handles, err := f.engine.DeleteAll(ctx, testMeid)
		require.NoError(t, err)
		assert.Len(t, handles, 1)
		assert.Equal(t, 0, f.engine.Stats().ActiveSubscriptions)

		pdu := &e2ap.Indication{ID: h.ID, Message: []byte("report")}
		assert.Equal(t, transaction.OutcomeDiscarded, f.engine.HandleMessage(ctx, f.envelope(t, pdu, h.SubID)))

		handles, err = f.engine.DeleteAll(ctx, testMeid)
		require.NoError(t, err)
		assert.Empty(t, handles)
	})
}

func TestRandomRequestorID(t *testing.T) {
	models, err := e2sm.NewRegistry(testModel{})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		e := transaction.NewEngine(nil, codec.NewMsgpack(), models, transaction.Config{RequestorID: -1}, zerolog.Nop())
		assert.GreaterOrEqual(t, e.RequestorID(), int64(0))
		assert.LessOrEqual(t, e.RequestorID(), int64(e2ap.MaxRequestorID))
	}
}
