package adapthttp

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitals/internal/app"
	"vitals/internal/metrics"
)

// Services are the application services the adapter drives.
type Services struct {
	Weight    *app.WeightService
	Dashboard *app.DashboardService
	Goals     *app.GoalService
	Water     *app.WaterService
	Auth      *app.AuthService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight    *app.WeightService
	dashboard *app.DashboardService
	goals     *app.GoalService
	water     *app.WaterService
	authSvc   *app.AuthService

	metrics        *metrics.Manager
	metricsHandler http.Handler
	oidcConfig     OIDCConfig

	webDir      string
	disableAuth bool
	keepAlive   time.Duration
	now         func() time.Time
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		weight:    svc.Weight,
		dashboard: svc.Dashboard,
		goals:     svc.Goals,
		water:     svc.Water,
		authSvc:   svc.Auth,
		webDir:    webDir,
		keepAlive: 30 * time.Second,
		now:       time.Now,
	}
}

// WithoutAuth disables authentication; every request acts as user 1.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithMetrics records request and domain metrics in m and serves h on
// /metrics. A nil h serves the default Prometheus registry.
func (s *Server) WithMetrics(m *metrics.Manager, h http.Handler) *Server {
	s.metrics = m
	if h == nil {
		h = promhttp.Handler()
	}
	s.metricsHandler = h
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /weight/entries", s.handleWeightList)
	api.HandleFunc("PUT /weight/entries", s.handleWeightRecord)
	api.HandleFunc("PATCH /weight/entries/{id}", s.handleWeightUpdate)
	api.HandleFunc("DELETE /weight/entries/{id}", s.handleWeightDelete)
	api.HandleFunc("GET /weight/dashboard", s.handleDashboard)
	api.HandleFunc("GET /weight/stream", s.handleDashboardStream)

	api.HandleFunc("GET /goal", s.handleGoalGet)
	api.HandleFunc("PUT /goal", s.handleGoalPut)

	api.HandleFunc("GET /water/today", s.handleWaterToday)
	api.HandleFunc("POST /water/event", s.handleWaterEvent)
	api.HandleFunc("GET /water/recent", s.handleWaterRecent)
	api.HandleFunc("POST /water/undo-last", s.handleWaterUndoLast)
	api.HandleFunc("GET /water/summary", s.handleWaterSummary)

	root := http.NewServeMux()
	root.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	root.HandleFunc("POST /api/auth/login", s.handleLogin)
	root.HandleFunc("POST /api/auth/logout", s.handleLogout)
	root.HandleFunc("POST /api/auth/setup", s.handleSetupUser)
	root.HandleFunc("GET /api/auth/config", s.handleConfig)
	root.HandleFunc("GET /api/auth/sso/login", s.handleSSOLogin)
	root.HandleFunc("GET /api/auth/sso/callback", s.handleSSOCallback)
	if s.metricsHandler != nil {
		root.Handle("GET /metrics", s.metricsHandler)
	}

	root.Handle("/api/", http.StripPrefix("/api", s.authMiddleware(api)))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.recoveryMiddleware(s.metricsMiddleware(s.loggingMiddleware(withNoCache(root))))
}
