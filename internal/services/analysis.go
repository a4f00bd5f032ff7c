package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/controller"
	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/models"
	"github.com/m-usman198/PM-Project/internal/render"
)

// AnalysisService runs intake analyses from the command line
type AnalysisService struct {
	config   *config.Config
	analyzer Analyzer
	info     AnalyzerInfo
	logger   *helpers.Logger
	now      func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(cfg *config.Config, analyzer Analyzer, info AnalyzerInfo) *AnalysisService {
	return &AnalysisService{
		config:   cfg,
		analyzer: analyzer,
		info:     info,
		logger:   helpers.NewLogger("cli"),
		now:      time.Now,
	}
}

// LoadProject reads a YAML or JSON intake file
func LoadProject(inputFile string) (models.ProjectData, error) {
	var project models.ProjectData
	if err := helpers.LoadStructured(inputFile, &project); err != nil {
		return models.ProjectData{}, fmt.Errorf("failed to read input file: %w", err)
	}
	return project, nil
}

// ProcessProject submits project through a controller and waits for the outcome
func (s *AnalysisService) ProcessProject(ctx context.Context, project models.ProjectData) (*models.AnalysisRecord, error) {
	ctrl := controller.New(s.analyzer,
		controller.WithProject(project),
		controller.WithLogger(s.logger),
	)
	defer ctrl.Close()

	task, err := ctrl.Submit(ctx)
	if err != nil {
		return nil, err
	}

	helpers.PrintInfo("Analyzing Performance Domains with %s (%s)...", s.info.Provider, s.info.Model)
	result, err := task.Wait(ctx)
	if err != nil {
		state := ctrl.State()
		if state.View == controller.Error {
			return nil, &AnalysisError{Message: state.Error, Err: err}
		}
		return nil, err
	}

	return &models.AnalysisRecord{
		Project:      project,
		Result:       result,
		AnalysisTime: s.now(),
		Provider:     s.info.Provider,
		Model:        s.info.Model,
	}, nil
}

// DisplayAnalysis writes the record to w using renderer for every panel
func (s *AnalysisService) DisplayAnalysis(w io.Writer, record *models.AnalysisRecord, renderer render.Renderer) {
	if _, ok := renderer.(*render.HTMLRenderer); ok {
		fmt.Fprint(w, FormatHTML(record, renderer))
		return
	}

	helpers.PrintTitle("Project Analysis: %s", record.Project.Name)
	helpers.PrintInfo("Analysis Result: Planning Performance Domain (Focus Area 2.1 & 2.2)")
	helpers.PrintSeparator()

	for _, section := range record.Result.Sections() {
		helpers.TitleColor.Fprintln(w, section.Title)
		fmt.Fprintln(w)
		fmt.Fprint(w, renderer.Render(section.Body))
		fmt.Fprintln(w)
	}
	helpers.PrintWarning("%s", models.Disclaimer)
}

// FormatHTML renders the record as an HTML fragment
func FormatHTML(record *models.AnalysisRecord, renderer render.Renderer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(record.Project.Name))
	for _, section := range record.Result.Sections() {
		fmt.Fprintf(&b, "<section id=\"%s\">\n<h2>%s</h2>\n", section.Key, html.EscapeString(section.Title))
		b.WriteString(renderer.Render(section.Body))
		b.WriteString("</section>\n")
	}
	fmt.Fprintf(&b, "<p><em>%s</em></p>\n", html.EscapeString(models.Disclaimer))
	return b.String()
}

// FormatMarkdown renders the record as a markdown summary
func FormatMarkdown(record *models.AnalysisRecord) string {
	var summary strings.Builder

	summary.WriteString(fmt.Sprintf("# %s\n\n", record.Project.Name))
	summary.WriteString(fmt.Sprintf("**Timeline:** %s\n\n", record.Project.Timeline))
	if record.Project.Budget != "" {
		summary.WriteString(fmt.Sprintf("**Budget:** %s\n\n", record.Project.Budget))
	}
	if record.Project.Constraints != "" {
		summary.WriteString(fmt.Sprintf("**Constraints:** %s\n\n", record.Project.Constraints))
	}
	if record.Provider != "" {
		summary.WriteString(fmt.Sprintf("**Analyzed with:** %s (%s) on %s\n\n",
			record.Provider, record.Model, record.AnalysisTime.Format(time.RFC3339)))
	}

	for _, section := range record.Result.Sections() {
		summary.WriteString(fmt.Sprintf("## %s\n\n", section.Title))
		summary.WriteString(strings.TrimSpace(section.Body))
		summary.WriteString("\n\n")
	}

	summary.WriteString("---\n\n")
	summary.WriteString(fmt.Sprintf("*%s*\n", models.Disclaimer))
	return summary.String()
}

// SaveAnalysisResult saves the record as JSON and a markdown summary
func (s *AnalysisService) SaveAnalysisResult(record *models.AnalysisRecord, outputDir string) ([]string, error) {
	if err := helpers.EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	prefix := helpers.Slugify(record.Project.Name)
	if prefix == "" {
		prefix = "project"
	}

	analysisPath := filepath.Join(outputDir, helpers.GenerateOutputFilename(prefix+"-analysis", "json", record.AnalysisTime))
	if err := helpers.SaveJSON(record, analysisPath); err != nil {
		return nil, fmt.Errorf("failed to save full analysis: %w", err)
	}
	helpers.PrintSuccess("Saved full analysis to: %s", analysisPath)

	summaryPath := filepath.Join(outputDir, helpers.GenerateOutputFilename(prefix+"-summary", "md", record.AnalysisTime))
	if err := helpers.SaveText(FormatMarkdown(record), summaryPath); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}
	helpers.PrintSuccess("Saved summary to: %s", summaryPath)

	return []string{analysisPath, summaryPath}, nil
}

// IsValidationError reports whether err came from missing required fields
func IsValidationError(err error) bool {
	var missing *controller.MissingFieldsError
	return errors.As(err, &missing)
}

// OutputDir returns the configured directory for saved analyses
func (s *AnalysisService) OutputDir() string {
	return s.config.Processing.OutputDir
}

// SaveByDefault reports whether results are saved without --save
func (s *AnalysisService) SaveByDefault() bool {
	return s.config.Processing.SaveResults
}
