// Package server exposes scene rendering and the spike envelope over HTTP
// and a websocket session that re-renders on every config message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/oxygene76/vb3d-sim/pkg/court"
	"github.com/oxygene76/vb3d-sim/pkg/envelope"
	"github.com/oxygene76/vb3d-sim/pkg/scene"
	"github.com/oxygene76/vb3d-sim/pkg/utils"
	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

const shutdownTimeout = 5 * time.Second

// Server serves the scene API.
type Server struct {
	cfg      utils.ServerConfig
	defaults scene.Config
	version  string
	logger   *zap.Logger
	upgrader websocket.Upgrader
	router   *mux.Router
	started  time.Time

	// renderSlots bounds concurrent renders.
	renderSlots *semaphore.Weighted
	inFlight    atomic.Int64
	renders     atomic.Int64
	sessions    atomic.Int64
}

// New builds a server. Partial request bodies are merged onto defaults.
func New(cfg utils.ServerConfig, defaults scene.Config, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := utils.DefaultConfig().Server
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = def.MaxMessageBytes
	}
	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = def.MaxConcurrentRenders
	}
	s := &Server{
		cfg:      cfg,
		defaults: defaults,
		version:  version,
		logger:   logger,
		started:  time.Now(),

		renderSlots: semaphore.NewWeighted(int64(cfg.MaxConcurrentRenders)),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/presets", s.handlePresets).Methods("GET")
	api.HandleFunc("/defaults", s.handleDefaults).Methods("GET")

	api.HandleFunc("/scene", s.handleScene).Methods("POST", "OPTIONS")
	api.HandleFunc("/envelope", s.handleEnvelope).Methods("POST", "OPTIONS")

	api.HandleFunc("/live", s.handleLive).Methods("GET")

	r.Use(s.corsMiddleware)
	s.router = r
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("scene API listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down scene API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusResponse struct {
	Status     string  `json:"status"`
	Version    string  `json:"version"`
	Uptime     float64 `json:"uptime_seconds"`
	Renders    int64   `json:"renders"`
	InFlight   int64   `json:"renders_in_flight"`
	MaxRenders int     `json:"max_concurrent_renders"`
	Sessions   int64   `json:"live_sessions"`
	Timestamp  string  `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:     "ok",
		Version:    s.version,
		Uptime:     time.Since(s.started).Seconds(),
		Renders:    s.renders.Load(),
		InFlight:   s.inFlight.Load(),
		MaxRenders: s.cfg.MaxConcurrentRenders,
		Sessions:   s.sessions.Load(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, court.Presets())
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.defaults)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	cfg := cloneConfig(s.defaults)
	if err := s.decode(w, r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	release, err := s.acquire(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	sc, err := scene.Render(cfg)
	release()
	if err != nil {
		s.logger.Debug("scene rejected", zap.Error(err))
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// envelopeRequest asks for a bare envelope without the set flight.
type envelopeRequest struct {
	Contact         vecmath.Vector3 `json:"contact"`
	Net             court.NetPreset `json:"net"`
	CustomNetHeight float64         `json:"custom_net_height"`
	NX              int             `json:"nx"`
	NY              int             `json:"ny"`
	K               int             `json:"k"`
	Grid            *envelope.Grid  `json:"grid,omitempty"`
	Blockers        *envelope.Block `json:"blockers,omitempty"`
}

type envelopeResponse struct {
	NetHeight float64          `json:"net_height"`
	Result    *envelope.Result `json:"result"`
	Stats     envelope.Stats   `json:"stats"`
}

func (s *Server) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	d := s.defaults
	req := envelopeRequest{
		Contact: d.Set.Contact,
		Net:     d.Net,
		NX:      d.Envelope.NX,
		NY:      d.Envelope.NY,
		K:       d.Envelope.K,
	}
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	net, err := court.GetPreset(req.Net, req.CustomNetHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorsmod.Wrap(scene.ErrInvalidConfig, err.Error()))
		return
	}

	params := envelope.Params{
		Contact:   req.Contact,
		NetHeight: net.Top,
		NX:        req.NX,
		NY:        req.NY,
		K:         req.K,
		Grid:      req.Grid,
		Blockers:  req.Blockers,
	}
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, errorsmod.Wrap(scene.ErrInvalidGrid, err.Error()))
		return
	}
	release, err := s.acquire(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	res, err := envelope.Generate(params)
	release()
	if err != nil {
		writeError(w, http.StatusBadRequest, errorsmod.Wrap(scene.ErrInvalidGrid, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, envelopeResponse{
		NetHeight: net.Top,
		Result:    res,
		Stats:     envelope.Summarize(res, net.Top),
	})
}

// acquire waits for a render slot. The returned func releases it and
// counts the render.
func (s *Server) acquire(ctx context.Context) (func(), error) {
	if err := s.renderSlots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("no render slot: %w", err)
	}
	s.inFlight.Add(1)
	return func() {
		s.inFlight.Add(-1)
		s.renders.Add(1)
		s.renderSlots.Release(1)
	}, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxMessageBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// corsMiddleware enables CORS for browser front ends
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.originAllowed(origin)
}

type errorResponse struct {
	Error     string `json:"error"`
	Codespace string `json:"codespace,omitempty"`
	Code      uint32 `json:"code,omitempty"`
}

func newErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	for _, known := range []*errorsmod.Error{scene.ErrInvalidConfig, scene.ErrInvalidFlight, scene.ErrInvalidGrid} {
		if errors.Is(err, known) {
			resp.Codespace = known.Codespace()
			resp.Code = known.ABCICode()
			break
		}
	}
	return resp
}

func statusFor(err error) int {
	if errorsmod.IsOf(err, scene.ErrInvalidConfig, scene.ErrInvalidFlight, scene.ErrInvalidGrid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, newErrorResponse(err))
}

// cloneConfig copies cfg so that decoding into the copy never writes
// through to shared pointers.
func cloneConfig(cfg scene.Config) scene.Config {
	if cfg.Envelope.Blockers != nil {
		b := *cfg.Envelope.Blockers
		cfg.Envelope.Blockers = &b
	}
	return cfg
}
