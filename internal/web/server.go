// Package web provides the HTTP API of the back-office: imports, territorial
// lookups, the dashboard redirect and the two-factor reminder.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/config"
	"github.com/JonMunkholm/estateadmin/internal/core"
	"github.com/JonMunkholm/estateadmin/internal/reminder"
	"github.com/JonMunkholm/estateadmin/internal/territory"
	appmw "github.com/JonMunkholm/estateadmin/internal/web/middleware"
)

// ImportService is the import pipeline as used by the handlers.
// *core.Service implements it.
type ImportService interface {
	Entities() []core.EntityDefinition
	Profiles() []core.ImportProfile
	Template(key, format string) ([]byte, string, string, error)
	PreviewMapping(key string, headers []string, overrides map[string]string) (core.ColumnMapping, error)
	Import(ctx context.Context, in core.ImportInput) (*core.Result, error)
	History(ctx context.Context, key string, limit int) ([]core.Run, error)
	Rollback(ctx context.Context, importID string) (core.RollbackResult, error)
	LimiterStatus() core.LimiterStatus
}

// ReminderMailer sends the two-factor reminder email.
type ReminderMailer interface {
	Send(ctx context.Context, p auth.Principal) error
}

// Deps are the collaborators of the server.
type Deps struct {
	Imports   ImportService
	Territory territory.Lookup
	Tokens    appmw.TokenParser
	Reminders *reminder.Store
	Mailer    ReminderMailer
}

// Server is the HTTP server.
type Server struct {
	deps     Deps
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer wires routes and middleware.
func NewServer(deps Deps, cfg *config.Config) *Server {
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/html", "text/csv"))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}

	s.router.Use(appmw.SessionAuth(s.deps.Tokens, s.cfg.Security.CookieName))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/dashboard", s.handleDashboard)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(appmw.RequireAuth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/territory/voivodeships", s.handleVoivodeships)
			r.Get("/territory/voivodeships/{voivodeship}/cities", s.handleCities)
			r.Get("/territory/voivodeships/{voivodeship}/cities/{city}/streets", s.handleStreets)

			r.Get("/two-factor/reminder", s.handleReminderStatus)
			r.Post("/two-factor/reminder/dismiss", s.handleReminderDismiss)
			r.Post("/two-factor/reminder/email", s.handleReminderEmail)
		})

		// Imports run under the import timeout instead of the request timeout.
		r.Route("/import", func(r chi.Router) {
			r.Use(appmw.RequireRole(auth.RoleAdmin, auth.RoleManager))
			if s.cfg.Rate.Enabled && s.cfg.Rate.ImportLimit > 0 {
				r.Use(s.newRateLimiter(s.cfg.Rate.ImportLimit).middleware)
			}

			r.Get("/entities", s.handleEntities)
			r.Get("/profiles", s.handleProfiles)
			r.Post("/runs/{importID}/rollback", s.handleRollback)
			r.Get("/{entity}/template", s.handleTemplate)
			r.Post("/{entity}/mapping", s.handleMapping)
			r.Get("/{entity}/history", s.handleHistory)
			r.Post("/{entity}", s.handleImport)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

const csp = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; frame-ancestors 'none'"

func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	perMinute int
	burst     int

	mu       sync.Mutex
	visitors map[string]*visitor
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (s *Server) newRateLimiter(perMinute int) *rateLimiter {
	rl := &rateLimiter{
		perMinute: perMinute,
		burst:     max(1, perMinute/4),
		visitors:  make(map[string]*visitor),
		done:      make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	go rl.cleanup(time.Minute)
	return rl
}

func (rl *rateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > 3*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60), rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(appmw.ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(max(1, 60/max(1, rl.perMinute))))
			respondErrorJSON(w, userMessage(errRateLimited), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with status. Encoding errors are only logged since
// the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
