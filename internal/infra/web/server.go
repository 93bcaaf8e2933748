package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// SessionCounter reports how many announcement sessions are live. The
// in-memory store implements it; Redis-backed deployments return -1.
type SessionCounter interface {
	Len() int
}

// Server is the ops HTTP surface: health, Prometheus metrics, and a small
// bearer-gated status endpoint.
type Server struct {
	sessions     SessionCounter
	destinations int
	apiKey       string
	started      time.Time
	log          *zerolog.Logger
}

func NewServer(sessions SessionCounter, destinations int, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{
		sessions:     sessions,
		destinations: destinations,
		apiKey:       apiKey,
		started:      time.Now(),
		log:          logger,
	}
}

// Register attaches handlers to the provided mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/v1/status", s.authMiddleware(http.HandlerFunc(s.handleStatus)))
}

// authMiddleware provides simple Bearer token authentication for the ops API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("ops API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LiveSessions  int    `json:"live_sessions"`
	Destinations  int    `json:"destinations"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	live := -1
	if s.sessions != nil {
		live = s.sessions.Len()
	}
	resp := statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		LiveSessions:  live,
		Destinations:  s.destinations,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn().Err(err).Msg("failed to write status response")
	}
}
