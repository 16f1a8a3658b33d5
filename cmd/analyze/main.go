package main

// Analyze a local text document with the configured provider stack:
//   go run ./cmd/analyze -format text ./founders.txt

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"legal-backend/internal/bootstrap"
	"legal-backend/internal/intake"
	"legal-backend/internal/legal"
	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "json", "output format: json or text")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: analyze [-format json|text] <file.txt>")
		return 2
	}
	if *format != "json" && *format != "text" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", path, err)
		return 1
	}

	selector, analysisProvider, err := bootstrap.Providers(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "provider setup: %v\n", err)
		return 1
	}
	svc := &intake.Service{
		Sessions:        intake.NewMemoryStore(),
		Provider:        analysisProvider,
		Modes:           selector,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		AnalysisTimeout: cfg.AnalysisTimeout,
	}

	res, err := svc.AnalyzeDocument(ctx, intake.File{Name: filepath.Base(path), Content: content})
	if err != nil {
		if errors.Is(err, intake.ErrInvalidFileType) {
			fmt.Fprintf(stderr, "%s: only plain text documents are supported\n", path)
			return 1
		}
		fmt.Fprintf(stderr, "analysis failed: %v\n", err)
		return 1
	}

	if *format == "text" {
		if err := legal.RenderText(stdout, res); err != nil {
			fmt.Fprintf(stderr, "render: %v\n", err)
			return 1
		}
		return 0
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}
