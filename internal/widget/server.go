package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bookwidget/internal/config"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const sessionCookie = "bkw_session"

// Server exposes the widget host over HTTP for the embed script. Every
// response is JSON; the session travels in a cookie so the embed needs no
// state of its own.
type Server struct {
	host    *Host
	cfg     config.WidgetConfig
	server  *http.Server
	logger  *zerolog.Logger
	limiter *sessionLimiter
}

func NewServer(cfg config.WidgetConfig, host *Host, logger *zerolog.Logger) *Server {
	mux := http.NewServeMux()
	srv := &Server{
		host:    host,
		cfg:     cfg,
		logger:  logger,
		limiter: newSessionLimiter(cfg.RateLimit),
	}

	mux.HandleFunc("/widget/open", srv.handleOpen)
	mux.HandleFunc("/widget/view", srv.handleView)
	mux.HandleFunc("/widget/action", srv.handleAction)
	mux.HandleFunc("/widget/close", srv.handleClose)
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("widget HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	view, err := s.host.Open(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not open widget session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    view.SessionID,
		Path:     "/widget",
		MaxAge:   s.cfg.SessionTTL,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	view, err := s.host.View(r.Context(), sessionID)
	if err != nil {
		s.writeHostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if !s.limiter.allow(sessionID) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var action Action
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	view, err := s.host.Dispatch(r.Context(), sessionID, action)
	if err != nil {
		s.writeHostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.host.Close(r.Context(), sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to close session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/widget",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "no widget session")
		return "", false
	}
	return cookie.Value, true
}

func (s *Server) writeHostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownSession):
		writeError(w, http.StatusGone, "session expired")
	case errors.Is(err, ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests")
	default:
		writeError(w, http.StatusBadGateway, "temporary failure")
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// sessionLimiter keeps one token bucket per session ID.
type sessionLimiter struct {
	cfg      config.WidgetRateLimit
	limiters sync.Map // map[string]*rate.Limiter
}

func newSessionLimiter(cfg config.WidgetRateLimit) *sessionLimiter {
	return &sessionLimiter{cfg: cfg}
}

func (l *sessionLimiter) allow(sessionID string) bool {
	if l.cfg.RPS <= 0 {
		return true
	}
	return l.get(sessionID).Allow()
}

func (l *sessionLimiter) get(sessionID string) *rate.Limiter {
	if v, ok := l.limiters.Load(sessionID); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(sessionID, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
