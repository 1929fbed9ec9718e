package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/report"
	"github.com/fentz26/breakroom/internal/store"
)

// Version is reported by /health.
var Version = "dev"

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithStore enables /absences and the database health check.
func WithStore(st *store.Store) ServerOption {
	return func(s *Server) { s.store = st }
}

// WithHub enables /ws.
func WithHub(h *Hub) ServerOption {
	return func(s *Server) { s.hub = h }
}

// WithServerMetrics enables /metrics.
func WithServerMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithServerLogger sets the request logger.
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server provides the HTTP API for breakroom.
type Server struct {
	service *Service
	store   *store.Store
	hub     *Hub
	metrics *Metrics
	logger  *zap.Logger
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		addr:    addr,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/messages", s.postMessage)
	r.Get("/snapshot", s.getSnapshot)
	r.Get("/absences", s.listAbsences)
	r.Get("/health", s.handleHealth)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	if s.hub != nil {
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			s.hub.ServeWS(w, req, s.service.Snapshot())
		})
	}
	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting breakroom daemon", zap.String("addr", s.addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// --- Message Handlers ---

// MessageRequest is the body of POST /messages.
type MessageRequest struct {
	AgentID     string    `json:"agent_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	At          time.Time `json:"at,omitempty"`
}

// MessageResponse is the result plus the reply text a chat transport posts.
type MessageResponse struct {
	models.Result
	Reply string `json:"reply"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg := models.Message{
		AgentID:     models.AgentID(req.AgentID),
		DisplayName: req.DisplayName,
		Text:        req.Text,
		At:          req.At,
	}
	if err := Validate(msg); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res := s.service.Handle(r.Context(), msg)
	writeJSON(w, http.StatusOK, MessageResponse{Result: res, Reply: report.Compose(res)})
}

// --- Snapshot Handlers ---

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, snap)
	case "markdown":
		writeText(w, report.Format(snap))
	case "text":
		writeText(w, report.Render(snap))
	default:
		writeError(w, http.StatusBadRequest, ErrInvalidQuery.Error()+": format")
	}
}

// --- Absence Handlers ---

func (s *Server) listAbsences(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, statusFor(ErrNoStore), ErrNoStore.Error())
		return
	}

	q := r.URL.Query()
	filter := store.AbsenceFilter{AgentID: models.AgentID(q.Get("agent"))}
	if v := q.Get("open"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrInvalidQuery.Error()+": open")
			return
		}
		filter.OpenOnly = open
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, ErrInvalidQuery.Error()+": limit")
			return
		}
		filter.Limit = limit
	}

	absences, err := s.store.ListAbsences(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, absences)
}

// --- Health ---

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
	Clients int    `json:"ws_clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		OK:      true,
		DB:      "none",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			health.OK = false
			health.DB = "error: " + err.Error()
		} else {
			health.DB = "ok"
		}
	}
	if s.hub != nil {
		health.Clients = s.hub.ClientCount()
	}

	status := http.StatusOK
	if !health.OK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// --- Helpers ---

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidMessage), errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
