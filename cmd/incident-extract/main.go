package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gridelectric/incident-extractor/internal/config"
	"github.com/gridelectric/incident-extractor/internal/incident"
	"github.com/gridelectric/incident-extractor/internal/logger"
	"github.com/gridelectric/incident-extractor/internal/mcp"
	"github.com/gridelectric/incident-extractor/internal/output"
	"github.com/gridelectric/incident-extractor/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code. stdout only
// ever carries the run summary or the MCP stream.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, stderr)
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(stdout)
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	log := logger.New(stderr, cfg.LogLevel, cfg.IsStdioMode())
	logger.Init(log)
	logger.Debug("starting", "config", cfg.String())

	tmpl, err := incident.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Error("failed to load template", "error", err)
		return 1
	}
	extractor := incident.NewExtractor(tmpl, log)

	if cfg.IsStdioMode() {
		return runStdioMode(ctx, cfg, extractor, log, stdin, stdout)
	}
	return runExtractMode(cfg, extractor, log, stdout)
}

// runExtractMode extracts one PDF, writes the records and prints the summary
func runExtractMode(cfg *config.Config, extractor *incident.Extractor, log *slog.Logger, stdout io.Writer) int {
	svc := pdf.NewService(cfg.MaxFileSize, extractor, log)

	result, err := svc.ExtractIncidentTickets(pdf.ExtractRequest{
		Path:       cfg.Input,
		Output:     cfg.Output,
		CrossCheck: cfg.CrossCheck,
	})
	if err != nil {
		logger.Error("extraction failed", "input", cfg.Input, "error", err)
		return 1
	}

	if check := result.CrossCheck; check != nil {
		if check.OK() {
			logger.Info("cross-check passed", "tickets", check.Tickets, "pages", check.Pages, "version", check.Version)
		}
		for _, problem := range check.Problems {
			logger.Warn("cross-check", "problem", problem)
		}
	}

	summary, err := output.NewSummary(cfg.Input, cfg.Output, result.Batch)
	if err != nil {
		logger.Error("failed to build summary", "error", err)
		return 1
	}
	if err := output.Encode(stdout, summary); err != nil {
		logger.Error("failed to print summary", "error", err)
		return 1
	}
	return 0
}

// runStdioMode serves the MCP tools until the client goes away
func runStdioMode(ctx context.Context, cfg *config.Config, extractor *incident.Extractor, log *slog.Logger,
	stdin io.Reader, stdout io.Writer,
) int {
	svc, err := pdf.NewSandboxedService(cfg.MaxFileSize, cfg.PDFDirectory, extractor, log)
	if err != nil {
		logger.Error("failed to create PDF service", "error", err)
		return 1
	}

	server, err := mcp.NewServer(cfg, svc, log)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		return 1
	}

	if err := server.Serve(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Incident Extract\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
