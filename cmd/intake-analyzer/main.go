package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/metrics"
	"github.com/m-usman198/PM-Project/internal/render"
	"github.com/m-usman198/PM-Project/internal/services"
	"github.com/m-usman198/PM-Project/internal/webui"
)

var (
	configFile string
	debug      bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "intake-analyzer",
		Short: "Intake Analyzer - PMBOK 8 planning analysis for project intakes",
		Long: `Intake Analyzer collects project intake details and asks an LLM for a
PMBOK 8 Planning Performance Domain assessment: scope plan, requirements
traceability matrix, advisory warnings and gap analysis.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				helpers.SetDebug(true)
			}
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Serve command
	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the intake form over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)

	// Analyze command
	var analyzeCmd = &cobra.Command{
		Use:   "analyze <intake-file>",
		Short: "Analyze a YAML or JSON project intake file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringP("format", "f", "terminal", "Output format (terminal, html, markdown)")
	analyzeCmd.Flags().BoolP("save", "s", false, "Save the analysis to the output directory")
	rootCmd.AddCommand(analyzeCmd)

	// Render command
	var renderCmd = &cobra.Command{
		Use:   "render <markdown-file>",
		Short: "Render a markdown file with the analysis formatter",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringP("format", "f", "terminal", "Output format (terminal, html)")
	rootCmd.AddCommand(renderCmd)

	if err := rootCmd.Execute(); err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(registry)

	analyzer, info, err := services.NewAnalyzer(cfg, recorder)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	helpers.PrintTitle("PMBOK 8 Project Intake")
	helpers.PrintInfo("Provider: %s (%s)", info.Provider, info.Model)
	helpers.PrintInfo("Listening on %s", cfg.Server.Addr)

	server := webui.NewServer(cfg.Server, analyzer, registry, recorder)
	return server.StartServer(ctx)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputFile := args[0]
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	renderer, err := newRenderer(format, true)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	project, err := services.LoadProject(inputFile)
	if err != nil {
		return err
	}

	analyzer, info, err := services.NewAnalyzer(cfg, metrics.NewPrometheusRecorder(prometheus.NewRegistry()))
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	analysisService := services.NewAnalysisService(cfg, analyzer, info)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	record, err := analysisService.ProcessProject(ctx, project)
	if err != nil {
		if services.IsValidationError(err) {
			return fmt.Errorf("please fill in all required fields: %w", err)
		}
		return fmt.Errorf("failed to analyze project: %w", err)
	}

	if format == "markdown" {
		fmt.Fprint(os.Stdout, services.FormatMarkdown(record))
	} else {
		analysisService.DisplayAnalysis(os.Stdout, record, renderer)
	}

	if save || analysisService.SaveByDefault() {
		if _, err := analysisService.SaveAnalysisResult(record, analysisService.OutputDir()); err != nil {
			return fmt.Errorf("failed to save analysis result: %w", err)
		}
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	renderer, err := newRenderer(format, false)
	if err != nil {
		return err
	}

	text, err := helpers.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read markdown file: %w", err)
	}
	fmt.Fprint(os.Stdout, renderer.Render(text))
	return nil
}

// newRenderer picks the output renderer; markdown is accepted only when
// allowMarkdown is set and prints the raw summary.
func newRenderer(format string, allowMarkdown bool) (render.Renderer, error) {
	switch format {
	case "terminal", "":
		return render.NewTerminalRenderer(helpers.IsTerminal(os.Stdout)), nil
	case "html":
		return render.NewHTMLRenderer(), nil
	case "markdown":
		if allowMarkdown {
			return render.NewTerminalRenderer(false), nil
		}
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}
