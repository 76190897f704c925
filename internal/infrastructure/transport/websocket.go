// Package transport moves E2AP envelopes between the controller and the E2
// termination.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

var ErrNotConnected = errors.New("transport not connected")

// Serializer frames envelopes on the wire.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// WebSocket carries one envelope per binary frame over a client connection
// to the E2 termination, redialing after failures.
type WebSocket struct {
	url          string
	s            Serializer
	logger       zerolog.Logger
	writeTimeout time.Duration
	retry        time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocket(url string, s Serializer, logger zerolog.Logger) *WebSocket {
	return &WebSocket{
		url:          url,
		s:            s,
		logger:       logger.With().Str("service", "transport").Str("url", url).Logger(),
		writeTimeout: 5 * time.Second,
		retry:        2 * time.Second,
	}
}

// Run dials, then feeds every inbound envelope to receive until ctx is done.
// Receive is called from the read goroutine, one envelope at a time.
func (w *WebSocket) Run(ctx context.Context, receive e2ap.Receiver) error {
	for {
		err := w.session(ctx, receive)
		if ctx.Err() != nil {
			return nil
		}
		w.logger.Warn().Err(err).Dur("retry", w.retry).Msg("e2 termination connection lost")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retry):
		}
	}
}

func (w *WebSocket) session(ctx context.Context, receive e2ap.Receiver) error {
	conn, _, err := websocket.Dial(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	conn.SetReadLimit(4 << 20)
	w.setConn(conn)
	w.logger.Info().Msg("connected to e2 termination")
	defer func() {
		w.setConn(nil)
		_ = conn.Close(websocket.StatusNormalClosure, "closed")
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageBinary {
			w.logger.Debug().Str("type", typ.String()).Msg("ignoring non-binary frame")
			continue
		}
		var env e2ap.Envelope
		if err := w.s.Unmarshal(data, &env); err != nil {
			w.logger.Warn().Err(err).Msg("malformed envelope")
			continue
		}
		receive(ctx, env)
	}
}

func (w *WebSocket) setConn(conn *websocket.Conn) {
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
}

// Connected reports whether a session is up.
func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

func (w *WebSocket) Send(ctx context.Context, env e2ap.Envelope) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	data, err := w.s.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageBinary, data)
}
