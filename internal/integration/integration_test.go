//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/nexran/nexran/internal/api/http"
	"github.com/nexran/nexran/internal/application/allocation"
	"github.com/nexran/nexran/internal/application/requestgroup"
	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/infrastructure/codec"
	"github.com/nexran/nexran/internal/infrastructure/postgres"
	"github.com/nexran/nexran/internal/infrastructure/servicemodel"
	"github.com/nexran/nexran/internal/infrastructure/sse"
	"github.com/nexran/nexran/internal/infrastructure/transport"
)

const nodeName = "gnB_001_001_00000a"

// termination is an E2 termination with a single node behind it that admits
// every subscription and acknowledges every control.
type termination struct {
	t     *testing.T
	codec *codec.Msgpack

	mu       sync.Mutex
	conn     *websocket.Conn
	kpmSub   e2ap.Envelope
	kpmTxn   e2ap.TransactionID
	controls int
}

func (term *termination) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	term.mu.Lock()
	term.conn = conn
	term.mu.Unlock()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var env e2ap.Envelope
		if err := term.codec.Unmarshal(data, &env); err != nil {
			return
		}
		pdu, err := term.codec.Decode(env.Kind, env.Payload)
		if err != nil {
			return
		}
		switch p := pdu.(type) {
		case *e2ap.SubscriptionRequest:
			term.mu.Lock()
			if p.FunctionID == servicemodel.FunctionKPM {
				term.kpmSub, term.kpmTxn = env, p.ID
			}
			term.mu.Unlock()
			admitted := make([]int64, 0, len(p.Actions))
			for _, a := range p.Actions {
				admitted = append(admitted, a.ID)
			}
			term.reply(r.Context(), env, &e2ap.SubscriptionResponse{ID: p.ID, FunctionID: p.FunctionID, Admitted: admitted})
		case *e2ap.ControlRequest:
			term.mu.Lock()
			term.controls++
			term.mu.Unlock()
			term.reply(r.Context(), env, &e2ap.ControlAck{ID: p.ID, FunctionID: p.FunctionID})
		}
	}
}

// reply and write run on the server goroutine, so they report with assert
// rather than stopping the test.
func (term *termination) reply(ctx context.Context, req e2ap.Envelope, pdu e2ap.PDU) {
	payload, err := term.codec.Encode(pdu)
	if !assert.NoError(term.t, err) {
		return
	}
	term.write(ctx, e2ap.Envelope{Kind: pdu.Kind(), SubID: req.SubID, Meid: req.Meid, Xid: req.Xid, Payload: payload})
}

func (term *termination) write(ctx context.Context, env e2ap.Envelope) {
	data, err := term.codec.Marshal(env)
	if !assert.NoError(term.t, err) {
		return
	}
	term.mu.Lock()
	conn := term.conn
	term.mu.Unlock()
	if assert.NotNil(term.t, conn) {
		assert.NoError(term.t, conn.Write(ctx, websocket.MessageBinary, data))
	}
}

// indicate pushes report on the KPM subscription.
func (term *termination) indicate(ctx context.Context, report *kpm.Report) {
	header, message, err := servicemodel.NewKPM(term.codec, time.Now).EncodeIndication(time.Now(), report)
	require.NoError(term.t, err)
	term.mu.Lock()
	sub, txn := term.kpmSub, term.kpmTxn
	term.mu.Unlock()
	payload, err := term.codec.Encode(&e2ap.Indication{
		ID:           txn,
		FunctionID:   servicemodel.FunctionKPM,
		ActionID:     1,
		SerialNumber: 1,
		Type:         e2ap.ActionReport,
		Header:       header,
		Message:      message,
	})
	require.NoError(term.t, err)
	term.write(ctx, e2ap.Envelope{Kind: e2ap.KindIndication, SubID: sub.SubID, Meid: sub.Meid, Payload: payload})
}

func (term *termination) controlCount() int {
	term.mu.Lock()
	defer term.mu.Unlock()
	return term.controls
}

func TestReportRebalancesAndArchives(t *testing.T) {
	env := newTestEnv(t)
	client := &http.Client{Timeout: 10 * time.Second}

	for _, name := range []string{"a", "b"} {
		postJSON(t, client, env.api.URL+"/v1/slices", map[string]any{
			"name":              name,
			"allocation_policy": map[string]any{"auto_equalize": true},
		}, nil)
	}

	var created struct {
		RequestID string `json:"request_id"`
	}
	postJSON(t, client, env.api.URL+"/v1/nodebs", map[string]any{"type": "gNB", "mcc": "001", "mnc": "1", "id": 10}, &created)
	require.NotEmpty(t, created.RequestID)
	require.Eventually(t, func() bool {
		var status struct {
			Status string `json:"status"`
		}
		getJSON(t, client, env.api.URL+"/v1/requests/"+created.RequestID, &status)
		return status.Status == string(requestgroup.StatusComplete)
	}, 5*time.Second, 20*time.Millisecond)

	for _, name := range []string{"a", "b"} {
		postJSON(t, client, env.api.URL+"/v1/nodebs/"+nodeName+"/slices/"+name, nil, nil)
	}
	require.Eventually(t, func() bool { return env.term.controlCount() == 2 }, 5*time.Second, 20*time.Millisecond)

	env.term.indicate(context.Background(), &kpm.Report{
		PeriodMs:        1000,
		AvailableDLPRBs: 100,
		Slices: map[string]kpm.Sample{
			"a": {DLBytes: 100, DLPRBs: 20000},
			"b": {DLBytes: 50, DLPRBs: 20000},
		},
	})

	require.Eventually(t, func() bool {
		var s struct {
			AllocationPolicy struct {
				Share int `json:"share"`
			} `json:"allocation_policy"`
		}
		getJSON(t, client, env.api.URL+"/v1/slices/a", &s)
		return s.AllocationPolicy.Share == 384
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool { return env.term.controlCount() == 4 }, 5*time.Second, 20*time.Millisecond)

	var reports, samples int
	require.NoError(t, env.pool.QueryRow(context.Background(), `SELECT count(*) FROM kpm_reports WHERE nodeb = $1`, nodeName).Scan(&reports))
	require.NoError(t, env.pool.QueryRow(context.Background(), `SELECT count(*) FROM kpm_samples WHERE nodeb = $1 AND scope = 'slice'`, nodeName).Scan(&samples))
	assert.Equal(t, 1, reports)
	assert.Equal(t, 2, samples)
}

type testEnv struct {
	api  *httptest.Server
	term *termination
	pool *pgxpool.Pool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := testDatabaseURL(t)
	ctx, cancel := context.WithCancel(context.Background())

	pool, err := postgres.NewPool(ctx, dsn, 4)
	require.NoError(t, err, "db pool")
	root := repoRoot(t)
	require.NoError(t, postgres.RunMigrations(ctx, pool, filepath.Join(root, "internal", "migrations")), "migrations")
	require.NoError(t, resetDatabase(ctx, pool), "reset db")

	msgpack := codec.NewMsgpack()
	term := &termination{t: t, codec: msgpack}
	e2term := httptest.NewServer(http.HandlerFunc(term.serve))

	logger := zerolog.Nop()
	models, err := servicemodel.NewRegistry(msgpack, time.Now)
	require.NoError(t, err)
	ws := transport.NewWebSocket("ws"+strings.TrimPrefix(e2term.URL, "http"), msgpack, logger)
	engine := transaction.NewEngine(ws, msgpack, models, transaction.Config{RequestorID: 7}, logger)
	groups := requestgroup.NewTracker(requestgroup.DefaultTimeout, time.Now, logger)
	hub := sse.NewHub(logger)
	ctl := allocation.NewController(engine, groups, postgres.NewKPMArchive(pool), hub, allocation.Config{
		KPMPeriod:   kpm.PeriodDefault,
		KPMFunction: servicemodel.FunctionKPM,
	}, logger)
	engine.SetHandler(ctl)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ws.Run(ctx, engine.Receive)
	}()
	require.Eventually(t, ws.Connected, 5*time.Second, 10*time.Millisecond)

	api := httptest.NewServer(httpapi.NewServer(ctl, engine, hub, nil, httpapi.Info{Name: "nexran", Version: "test", Connected: ws.Connected}, logger).Router())

	t.Cleanup(func() {
		api.Close()
		cancel()
		<-done
		e2term.Close()
		hub.Stop()
		pool.Close()
	})
	return &testEnv{api: api, term: term, pool: pool}
}

func postJSON(t *testing.T, client *http.Client, url string, body interface{}, out interface{}) {
	t.Helper()
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err, "marshal request")
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err, "post %s", url)
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("post %s status %d: %s", url, resp.StatusCode, string(bodyBytes))
	}
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "decode response")
	}
}

func getJSON(t *testing.T, client *http.Client, url string, out interface{}) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err, "get %s", url)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300, "get %s", url)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "decode response")
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	return ""
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err, "getwd")
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE TABLE kpm_samples, kpm_reports RESTART IDENTITY`)
	return err
}
