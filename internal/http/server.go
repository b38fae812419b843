// Package http serves the JSON API: authentication, time entry CRUD,
// analytics reports, and admin user management.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"worklog/internal/middleware/ratelimit"
	"worklog/internal/middleware/security"
	"worklog/internal/middleware/trace"
	"worklog/internal/services"
	"worklog/internal/session"
)

// Pinger reports backend reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	auth      *services.AuthService
	users     *services.UserService
	entries   *services.EntryService
	analytics *services.AnalyticsService
	sessions  *session.Store
	pinger    Pinger

	tracer       *trace.Middleware
	limiter      *ratelimit.Limiter
	secHeaders   *security.HeadersMiddleware
	shutdownOnce sync.Once
}

// Deps carries everything the server needs.
type Deps struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Entries   *services.EntryService
	Analytics *services.AnalyticsService
	Sessions  *session.Store
	Pinger    Pinger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		auth:       deps.Auth,
		users:      deps.Users,
		entries:    deps.Entries,
		analytics:  deps.Analytics,
		sessions:   deps.Sessions,
		pinger:     deps.Pinger,
		tracer:     trace.NewMiddleware(extractClientIP),
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		secHeaders: security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("GET /api/me", s.requireSession(s.handleMe))
	mux.HandleFunc("POST /api/me/password", s.requireSession(s.handleChangePassword))

	mux.HandleFunc("GET /api/taxonomy", s.requireSession(s.handleTaxonomy))
	mux.HandleFunc("GET /api/entries", s.requireSession(s.handleListEntries))
	mux.HandleFunc("POST /api/entries", s.requireSession(s.handleCreateEntry))
	mux.HandleFunc("GET /api/entries/{id}", s.requireSession(s.handleGetEntry))
	mux.HandleFunc("PUT /api/entries/{id}", s.requireSession(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.requireSession(s.handleDeleteEntry))

	mux.HandleFunc("GET /api/analytics", s.requireSession(s.handleAnalytics))

	mux.HandleFunc("GET /api/users", s.requireAdmin(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.requireAdmin(s.handleCreateUser))
	mux.HandleFunc("GET /api/users/{id}", s.requireAdmin(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}", s.requireAdmin(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.requireAdmin(s.handleDeleteUser))
	mux.HandleFunc("POST /api/users/{id}/password", s.requireAdmin(s.handleResetPassword))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(extractClientIP)(handler)
	handler = s.secHeaders.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// extractClientIP honors proxy headers before falling back to the
// connection address.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_requests":        m.TotalRequests,
		"last_response_time_ms": m.LastResponseTimeMs,
		"rate_limited_clients":  s.limiter.ActiveClients(),
		"active_sessions":       s.sessions.Size(),
	})
}
