package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/frontend"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/service/board"
	"github.com/secmon-lab/suistat/pkg/usecase"
)

// ContainerWidget is a container whose width the API can change
type ContainerWidget interface {
	interfaces.Container
	Set(width float64)
}

// Widgets are the controls the API drives
type Widgets struct {
	Country   interfaces.SelectionWidget
	Year      interfaces.SelectionWidget
	Chart     interfaces.SelectionWidget
	Container ContainerWidget
}

// UseCases holds the use cases served over HTTP
type UseCases struct {
	dashboard usecase.DashboardUseCase
	options   usecase.OptionsUseCase
	status    usecase.StatusProvider
}

// UseCaseOption configures UseCases
type UseCaseOption func(*UseCases)

// WithDashboard sets the dashboard use case
func WithDashboard(uc usecase.DashboardUseCase) UseCaseOption {
	return func(u *UseCases) { u.dashboard = uc }
}

// WithOptions sets the options use case
func WithOptions(uc usecase.OptionsUseCase) UseCaseOption {
	return func(u *UseCases) { u.options = uc }
}

// WithStatus sets the controller status provider
func WithStatus(sp usecase.StatusProvider) UseCaseOption {
	return func(u *UseCases) { u.status = sp }
}

// NewUseCases creates UseCases
func NewUseCases(opts ...UseCaseOption) *UseCases {
	u := &UseCases{}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *UseCases) validate() error {
	if u.dashboard == nil || u.options == nil || u.status == nil {
		return goerr.New("dashboard, options and status use cases are required")
	}
	return nil
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	router  chi.Router
	uc      *UseCases
	widgets *Widgets
	board   *board.Board
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, uc *UseCases, widgets *Widgets, b *board.Board) (*Server, error) {
	if err := uc.validate(); err != nil {
		return nil, err
	}
	if widgets == nil || widgets.Country == nil || widgets.Year == nil || widgets.Chart == nil || widgets.Container == nil {
		return nil, goerr.New("all widgets are required")
	}
	if b == nil {
		return nil, goerr.New("board is required")
	}

	router := chi.NewRouter()
	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:  router,
		uc:      uc,
		widgets: widgets,
		board:   b,
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Use(CORS)
		r.Get("/state", s.handleState)
		r.Get("/options", s.handleOptions)
		r.Get("/options/years", s.handleYears)
		r.Post("/selection", s.handleSelection)
		r.Post("/container", s.handleContainer)
		r.Get("/chart.svg", s.handleChartSVG)
		r.Get("/chart.png", s.handleChartPNG)
		r.Get("/series", s.handleSeries)
	})

	router.Get("/ws", s.handleLive)

	fs, err := frontend.GetHTTPFS()
	if err != nil {
		ctxlog.From(ctx).Warn("Embedded frontend not available", "error", err)
		router.Get("/*", handleFallbackHome)
	} else {
		spa, err := NewSPAHandler(fs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create SPA handler")
		}
		router.Handle("/*", spa)
	}

	return s, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "suistat",
	})
}

// handleFallbackHome handles the root path when frontend is not available
func handleFallbackHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Suicide Statistics</title></head>
<body>
  <h1>Suicide Statistics</h1>
  <p><a href="/api/chart.svg">Current chart</a> | <a href="/api/state">State</a></p>
</body>
</html>`)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write fallback home page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrEmptySelection):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnknownChartKind), errors.Is(err, model.ErrLayoutNotReady):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrLoad):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status >= http.StatusInternalServerError {
		ctxlog.From(r.Context()).Error("Request failed", "error", err, "status", status)
	} else {
		ctxlog.From(r.Context()).Debug("Request rejected", "error", err, "status", status)
	}

	var message string
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	} else {
		message = err.Error()
	}

	writeJSON(w, r, status, map[string]string{"error": message})
}
