package http

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	loginflow "adminconsole/frontend/login"
	sessioncontext "adminconsole/frontend/shared/context"
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/viewstate"
	"adminconsole/infrastructure/api"
	"adminconsole/infrastructure/audit"
	"adminconsole/infrastructure/cache"
	"adminconsole/infrastructure/metrics"
	"adminconsole/infrastructure/rbac"
	sessioncookie "adminconsole/infrastructure/session"
	"adminconsole/infrastructure/sqlite"
	"adminconsole/models"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// SweepInterval is how often expired sessions and their screens are dropped.
var SweepInterval = time.Minute

// Options carries what NewServer wires into the routes.
type Options struct {
	Addr            string
	DB              *sqlite.DB
	API             *api.Client
	Metrics         *metrics.Recorder
	MetricsPath     string
	Settings        html.Settings
	SessionDuration time.Duration
	SecureCookie    bool
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB            *sqlite.DB
	API           *api.Client
	SessionCache  *cache.SessionCache
	OperatorCache *cache.OperatorCache
	RbacCache     *cache.RbacRolesCache
	Rbac          *rbac.Rbac
	Audit         *audit.Service
	Metrics       *metrics.Recorder
	Screens       *viewstate.Registry

	settings        html.Settings
	sessionDuration time.Duration
	secureCookie    bool
	stopSweep       context.CancelFunc
}

// NewServer creates the console http server.
func NewServer(opts Options) *Server {
	rbacCache := cache.NewRbacRolesCache()
	s := &Server{
		Addr:            opts.Addr,
		router:          chi.NewRouter(),
		DB:              opts.DB,
		API:             opts.API,
		SessionCache:    cache.NewSessionCache(),
		OperatorCache:   cache.NewOperatorCache(),
		RbacCache:       rbacCache,
		Rbac:            rbac.New(rbacCache),
		Audit:           audit.NewService(opts.DB),
		Metrics:         opts.Metrics,
		Screens:         viewstate.NewRegistry(),
		settings:        opts.Settings,
		sessionDuration: opts.SessionDuration,
		secureCookie:    opts.SecureCookie,
		server: &http.Server{
			MaxHeaderBytes:    1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if s.Metrics != nil {
		s.Screens.OnStale = s.Metrics.StaleLoad
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessionFromRequest(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, loginflow.Landing, http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.Metrics != nil && opts.MetricsPath != "" {
		s.router.Handle(opts.MetricsPath, s.Metrics.Handler())
	}

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Route("/console", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterUserRoutes(r)
		s.RegisterProjectRoutes(r)
		s.RegisterActivityRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router to tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware loads the session and applies RBAC checks.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		token := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), token)
		if !ok {
			slog.Warn("session not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			http.SetCookie(w, sessioncookie.Expired(s.secureCookie))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if session.Expired() {
			s.endSession(r.Context(), token)
			http.SetCookie(w, sessioncookie.Expired(s.secureCookie))
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		session.ScreenPermissions = s.RbacCache.Permissions(session.OperatorRoles)
		if !rbac.Allowed(s.RbacCache.Resources(session.OperatorRoles), r.URL.Path, r.Method) {
			slog.Warn("rbac denied",
				slog.String("operator", session.Operator.Username),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			if r.Method == http.MethodGet {
				http.Redirect(w, r, loginflow.Landing+"?error=Acceso+denegado", http.StatusSeeOther)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) sessionFromRequest(r *http.Request) (models.Session, bool) {
	c, err := r.Cookie(sessioncookie.CookieName)
	if err != nil || c.Value == "" {
		return models.Session{}, false
	}
	session, ok := s.resolveSession(r.Context(), c.Value)
	if !ok || session.Expired() {
		return models.Session{}, false
	}
	return session, true
}

func (s *Server) resolveSession(ctx context.Context, token string) (models.Session, bool) {
	if cached, found := s.SessionCache.Get(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("load session from db failed", slog.Any("err", err))
		}
		return models.Session{}, false
	}

	s.SessionCache.Add(dbSession)
	s.OperatorCache.Add(dbSession.Operator)
	return dbSession, true
}

// endSession forgets token everywhere, its screens included.
func (s *Server) endSession(ctx context.Context, token string) {
	s.SessionCache.Delete(token)
	s.Screens.Drop(token)
	if err := loginflow.DeleteSessionByToken(ctx, s.DB, token); err != nil {
		slog.Error("cannot delete session from DB", slog.Any("err", err))
	}
}

// sweep drops sessions that expired without a request noticing.
func (s *Server) sweep(ctx context.Context, now time.Time) {
	for _, token := range s.SessionCache.Sweep(now) {
		s.Screens.Drop(token)
	}
	n, err := loginflow.DeleteExpiredSessions(ctx, s.DB, now)
	if err != nil {
		slog.Error("delete expired sessions", slog.Any("err", err))
		return
	}
	if n > 0 {
		slog.Info("expired sessions removed", slog.Int64("count", n))
	}
}

func (s *Server) runSweeper(ctx context.Context) {
	t := time.NewTicker(SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now)
		}
	}
}

// Start listens on Addr and serves in the background.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.runSweeper(ctx)
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("err", err))
		}
	}()
	slog.Info("http server listening", slog.String("addr", s.ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	if s.stopSweep != nil {
		s.stopSweep()
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}
