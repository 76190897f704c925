package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexran/nexran/internal/application/allocation"
	"github.com/nexran/nexran/internal/application/transaction"
	"github.com/nexran/nexran/internal/infrastructure/sse"
)

// Info describes the running xApp.
type Info struct {
	Name    string
	Version string

	// Connected reports whether the E2 termination link is up. Nil means
	// always up.
	Connected func() bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	ctl     *allocation.Controller
	engine  *transaction.Engine
	hub     *sse.Hub
	metrics http.Handler
	info    Info
	logger  zerolog.Logger
}

func NewServer(
	ctl *allocation.Controller,
	engine *transaction.Engine,
	hub *sse.Hub,
	metrics http.Handler,
	info Info,
	logger zerolog.Logger,
) *Server {
	return &Server{
		ctl:     ctl,
		engine:  engine,
		hub:     hub,
		metrics: metrics,
		info:    info,
		logger:  logger.With().Str("service", "httpapi").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	// The event stream is long-lived and stays outside the request timeout.
	r.Get("/v1/events", s.streamEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/version", s.version)
			r.Get("/appconfig", s.getAppConfig)
			r.Put("/appconfig", s.updateAppConfig)

			r.Route("/nodebs", func(r chi.Router) {
				r.Get("/", s.listNodeBs)
				r.Post("/", s.createNodeB)
				r.Get("/{name}", s.getNodeB)
				r.Put("/{name}", s.updateNodeB)
				r.Delete("/{name}", s.deleteNodeB)
				r.Put("/{name}/mask", s.setMask)
				r.Post("/{name}/slices/{slice}", s.bindSlice)
				r.Delete("/{name}/slices/{slice}", s.unbindSlice)
			})

			r.Route("/slices", func(r chi.Router) {
				r.Get("/", s.listSlices)
				r.Post("/", s.createSlice)
				r.Get("/{name}", s.getSlice)
				r.Put("/{name}", s.updateSlice)
				r.Delete("/{name}", s.deleteSlice)
				r.Post("/{name}/ues/{imsi}", s.bindUE)
				r.Delete("/{name}/ues/{imsi}", s.unbindUE)
			})

			r.Route("/ues", func(r chi.Router) {
				r.Get("/", s.listUEs)
				r.Post("/", s.createUE)
				r.Get("/{imsi}", s.getUE)
				r.Put("/{imsi}", s.updateUE)
				r.Delete("/{imsi}", s.deleteUE)
			})

			r.Get("/requests/{id}", s.getRequest)
			r.Get("/transactions", s.transactions)
			r.Get("/subscriptions", s.subscriptions)
		})
	})

	return r
}

// mutation is the body returned by calls that sent controls or
// subscription changes. RequestID is polled at /v1/requests/{id}.
type mutation struct {
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondMutation(w http.ResponseWriter, status int, data any, requestID uuid.UUID) {
	body := mutation{Data: data}
	if requestID != uuid.Nil {
		body.RequestID = requestID.String()
		w.Header().Set("Location", "/v1/requests/"+body.RequestID)
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondControllerError maps controller failures to status codes and keeps
// every validation message.
func respondControllerError(w http.ResponseWriter, err error) {
	var cerr *allocation.Error
	if !errors.As(err, &cerr) {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, allocation.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, allocation.ErrAlreadyExists):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, allocation.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, allocation.ErrInvalid):
		status, code = http.StatusBadRequest, "INVALID_PARAM"
	}
	respondJSON(w, status, map[string]interface{}{
		"error":    code,
		"message":  cerr.Error(),
		"messages": cerr.Messages,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	connected := s.info.Connected == nil || s.info.Connected()
	status := http.StatusOK
	if !connected {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"status":           http.StatusText(status),
		"e2term_connected": connected,
	})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    s.info.Name,
		"version": s.info.Version,
	})
}

func (s *Server) getAppConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.ctl.AppConfig())
}

func (s *Server) updateAppConfig(w http.ResponseWriter, r *http.Request) {
	var req allocation.AppConfigUpdate
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	cfg, id, err := s.ctl.UpdateAppConfig(r.Context(), req)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondMutation(w, http.StatusOK, cfg, id)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request id")
		return
	}
	view, err := s.ctl.RequestStatus(id)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.engine.Stats())
}

type subscriptionView struct {
	Key        string    `json:"key"`
	SubID      int32     `json:"sub_id"`
	Endpoint   string    `json:"endpoint"`
	FunctionID int64     `json:"function_id"`
	Created    time.Time `json:"created"`
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request) {
	subs := s.engine.Subscriptions(r.URL.Query().Get("nodeb"))
	out := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, subscriptionView{
			Key:        sub.ID.Key(),
			SubID:      sub.SubID,
			Endpoint:   sub.Endpoint,
			FunctionID: int64(sub.FunctionID),
			Created:    sub.Created,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
