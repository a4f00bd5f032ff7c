// Package webui serves the project intake form and analysis results.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/controller"
	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/metrics"
	"github.com/m-usman198/PM-Project/internal/models"
	"github.com/m-usman198/PM-Project/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	submitLabel = "Generate PMBOK 8 Analysis"
	busyLabel   = "Analyzing Performance Domains..."
)

// formField describes one intake input
type formField struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Multiline   bool
	Value       string
}

var formFields = []formField{
	{Name: models.FieldName, Label: "Project Name", Placeholder: "e.g. Student Wellness Portal", Required: true},
	{Name: models.FieldTimeline, Label: "Project Timeline", Placeholder: "e.g. 16 weeks, Oct-Feb", Required: true},
	{Name: models.FieldDescription, Label: "Detailed Project Description", Placeholder: "What is the outcome or value delivery intended?", Required: true, Multiline: true},
	{Name: models.FieldBudget, Label: "Estimated Budget/Resources", Placeholder: "e.g. $5,000 or 'Internal Labor Only'"},
	{Name: models.FieldConstraints, Label: "Constraints & Assumptions", Placeholder: "e.g. Must use university servers"},
	{Name: models.FieldInitialRequirements, Label: "Initial High-Level Requirements", Placeholder: "List 3-5 core functional or business requirements...", Required: true, Multiline: true},
}

type panel struct {
	Key   string
	Title string
	Body  template.HTML
}

type pageData struct {
	View           string
	FormVisible    bool
	Analyzing      bool
	RefreshSeconds int
	SubmitLabel    string
	Fields         []formField
	Notice         string
	Error          string
	ProjectName    string
	Panels         []panel
	Disclaimer     string
}

type stateResponse struct {
	State   controller.ViewState   `json:"state"`
	Project models.ProjectData     `json:"project"`
	Result  *models.AnalysisResult `json:"result"`
	Error   *string                `json:"error"`
}

// Server serves the intake UI
type Server struct {
	sessions     *SessionStore
	templates    *template.Template
	renderer     render.Renderer
	gatherer     prometheus.Gatherer
	pollInterval time.Duration
	addr         string
	logger       *helpers.Logger
}

// NewServer creates a web server backed by analyzer. Metrics are registered
// by the caller on registry and exposed on /metrics.
func NewServer(cfg config.ServerConfig, analyzer controller.Analyzer, registry *prometheus.Registry, recorder *metrics.PrometheusRecorder) *Server {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		// Templates are embedded at compile time
		panic(fmt.Sprintf("Failed to parse embedded templates: %v", err))
	}

	logger := helpers.NewLogger("webui")
	factory := func() *controller.Controller {
		return controller.New(analyzer,
			controller.WithLogger(helpers.NewLogger("controller")),
			controller.WithTransitionObserver(func(from, to controller.ViewState) {
				recorder.ObserveTransition(from.String(), to.String())
			}),
		)
	}

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if registry != nil {
		gatherer = registry
	}

	return &Server{
		sessions:     NewSessionStore(cfg.MaxSessions, cfg.SessionTTL(), cfg.SecureCookies, factory, recorder),
		templates:    templates,
		renderer:     render.NewHTMLRenderer(),
		gatherer:     gatherer,
		pollInterval: cfg.PollInterval(),
		addr:         cfg.Addr,
		logger:       logger,
	}
}

// RegisterRoutes registers all HTTP routes
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// StartServer serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) StartServer(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting web UI server on %s", s.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down web UI server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		s.sessions.Close()
		if err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// handleIndex renders the form or the result for the session's state
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	s.renderPage(w, http.StatusOK, ctrl.State(), "")
}

// handleAnalyze implements POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	for _, field := range models.Fields {
		if _, ok := r.PostForm[field]; !ok {
			continue
		}
		if err := ctrl.Edit(field, r.PostForm.Get(field)); err != nil && !errors.Is(err, controller.ErrFormLocked) {
			s.logger.Warn("Failed to apply field %s: %v", field, err)
		}
	}

	_, err := ctrl.Submit(r.Context())
	var missing *controller.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		s.renderPage(w, http.StatusUnprocessableEntity, ctrl.State(), "Please fill in all required fields.")
		return
	case errors.Is(err, controller.ErrInFlight):
		s.logger.Debug("Ignoring submit while an analysis is running")
	case err != nil:
		s.logger.Warn("Submit rejected: %v", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset implements POST /reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessions.Controller(w, r)
	if err := ctrl.Reset(); err != nil && !errors.Is(err, controller.ErrNotResult) {
		s.logger.Warn("Reset rejected: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleState implements GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Controller(w, r).State()

	response := stateResponse{
		State:   state.View,
		Project: state.Project,
		Result:  state.Result,
	}
	if state.View == controller.Error {
		response.Error = &state.Error
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode state response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth implements GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	}); err != nil {
		s.logger.Error("Failed to encode health response: %v", err)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, state controller.State, notice string) {
	data := pageData{
		View:           state.View.String(),
		FormVisible:    state.View.FormVisible(),
		Analyzing:      state.View == controller.Analyzing,
		RefreshSeconds: int(s.pollInterval.Seconds()),
		SubmitLabel:    submitLabel,
		Notice:         notice,
		ProjectName:    state.Project.Name,
		Disclaimer:     models.Disclaimer,
	}
	if data.Analyzing {
		data.SubmitLabel = busyLabel
	}
	if data.RefreshSeconds < 1 {
		data.RefreshSeconds = 1
	}
	if state.View == controller.Error {
		data.Error = state.Error
	}

	if data.FormVisible {
		data.Fields = make([]formField, len(formFields))
		for i, field := range formFields {
			field.Value, _ = state.Project.Get(field.Name)
			data.Fields[i] = field
		}
	}

	if state.View == controller.Result && state.Result != nil {
		for _, section := range state.Result.Sections() {
			data.Panels = append(data.Panels, panel{
				Key:   section.Key,
				Title: section.Title,
				// The renderer escapes all input text.
				Body: template.HTML(s.renderer.Render(section.Body)), //nolint:gosec
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("Failed to render page template: %v", err)
	}
}
