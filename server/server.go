package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lunargen/core"
	"lunargen/export"
	"lunargen/logging"
	"lunargen/worker"
)

const maxRequestBytes = 1 << 20

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser renderers are served from anywhere during development
	},
}

// Server exposes surface generation over HTTP and websockets
type Server struct {
	service  *Service
	defaults core.GenerationParams
	registry *prometheus.Registry
	metrics  *Metrics
	logger   *slog.Logger

	maxSegments int // 0 disables the cap

	clientsMu sync.Mutex
	clients   map[uuid.UUID]*client
}

// client is one websocket connection. Writes are serialised by mu.
type client struct {
	id    uuid.UUID
	conn  *websocket.Conn
	mu    sync.Mutex
	regen *worker.Regenerator
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// errorMessage is pushed to websocket clients when their params are rejected
type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DefaultMaxSegments caps the latitude and longitude segments of a single request
const DefaultMaxSegments = 1024

// Option configures a Server
type Option func(*Server)

// WithMaxSegments sets the per-request segment cap. Zero disables it.
func WithMaxSegments(n int) Option {
	return func(s *Server) {
		s.maxSegments = n
	}
}

// New creates a server. defaults fill in whatever a request leaves out.
func New(service *Service, registry *prometheus.Registry, metrics *Metrics, defaults core.GenerationParams, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service:     service,
		defaults:    defaults,
		registry:    registry,
		metrics:     metrics,
		logger:      logger,
		maxSegments: DefaultMaxSegments,
		clients:     make(map[uuid.UUID]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// decode overlays request fields on the defaults and applies the
// per-request limits.
func (s *Server) decode(fields map[string]any) (core.GenerationParams, error) {
	params, err := decodeParams(s.defaults, fields)
	if err != nil {
		return params, err
	}
	if s.maxSegments <= 0 {
		return params, nil
	}

	var errs []error
	if params.LatSegments > s.maxSegments {
		errs = append(errs, &core.ParamError{Field: "latSegments", Reason: fmt.Sprintf("must be <= %d", s.maxSegments), Value: params.LatSegments})
	}
	if params.LonSegments > s.maxSegments {
		errs = append(errs, &core.ParamError{Field: "lonSegments", Reason: fmt.Sprintf("must be <= %d", s.maxSegments), Value: params.LonSegments})
	}
	return params, errors.Join(errs...)
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/generate", s.handleGenerate)
	r.Get("/generate.bin", s.handleGenerateBinary)
	r.Get("/ws", s.handleWebSocket)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	fields, err := readJSONFields(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, err)
		return
	}
	params, err := s.decode(fields)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, cached, err := s.service.Fetch(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(cached))
	writeJSON(w, http.StatusOK, core.NewMeshData(result.Mesh, result.Seed, &result.Stats), s.logger)
}

func (s *Server) handleGenerateBinary(w http.ResponseWriter, r *http.Request) {
	params, err := s.decode(queryFields(r.URL.Query()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, cached, err := s.service.Fetch(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	body, err := export.MarshalBinary(result.Mesh)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Cache", cacheHeader(cached))
	w.Header().Set("X-Seed", strconv.FormatUint(result.Seed, 10))
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("binary response write failed", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:    uuid.New(),
		conn:  conn,
		regen: worker.NewRegenerator(s.service, worker.WithLogger(s.logger)),
	}
	s.addClient(c)
	logger := s.logger.With("client", c.id)
	logger.Info("client connected")

	defer func() {
		s.removeClient(c.id)
		c.regen.Close()
		conn.Close()
		logger.Info("client disconnected")
	}()

	// Publish every result the regenerator lets through
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range c.regen.Updates() {
			if err := c.send(core.NewMeshData(result.Mesh, result.Seed, &result.Stats)); err != nil {
				logger.Debug("mesh push failed", "error", err)
			}
		}
	}()

	// Start with the defaults so the client has something to draw
	c.regen.Submit(s.defaults)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			break
		}
		if err := s.handleClientMessage(c, data); err != nil {
			logger.Debug("rejected client message", "error", err)
			if err := c.send(errorMessage{Type: "error", Error: err.Error()}); err != nil {
				break
			}
		}
	}

	c.regen.Close()
	<-done
}

func (s *Server) handleClientMessage(c *client, data []byte) error {
	msg, err := parseClientMessage(data)
	if err != nil {
		return err
	}
	switch msg.Type {
	case "", "generate":
	default:
		return fmt.Errorf("%w: unknown message type %q", core.ErrInvalidParameter, msg.Type)
	}

	params, err := s.decode(msg.Params)
	if err != nil {
		return err
	}
	// Reject early so the previous mesh stays on screen
	if err := params.Validate(); err != nil {
		return err
	}
	c.regen.Submit(params)
	return nil
}

func (s *Server) addClient(c *client) {
	s.clientsMu.Lock()
	s.clients[c.id] = c
	n := len(s.clients)
	s.clientsMu.Unlock()
	if s.metrics != nil {
		s.metrics.Clients.Set(float64(n))
	}
}

func (s *Server) removeClient(id uuid.UUID) {
	s.clientsMu.Lock()
	delete(s.clients, id)
	n := len(s.clients)
	s.clientsMu.Unlock()
	if s.metrics != nil {
		s.metrics.Clients.Set(float64(n))
	}
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, c := range s.clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrGenerationAborted):
		// Client went away
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("response encode failed", "error", err)
	}
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
