package main

// Run one resume through the configured provider without the API:
//   go run ./cmd/prompttest -resume ./resume.pdf -provider gemini

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-review/internal/analyses"
	"resume-review/internal/bootstrap"
	"resume-review/internal/client"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume PDF")
	outPath := flag.String("out", "", "Path to write the decoded record as JSON (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "Analysis provider (mock, gemini, openai)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	timeout := flag.Duration("timeout", cfg.ProviderTimeout, "Provider timeout")
	flag.Parse()

	if err := telemetry.Init("console", "info"); err != nil {
		exitErr(fmt.Sprintf("telemetry init: %v", err))
	}
	defer telemetry.Sync()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}

	data, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	fileName := filepath.Base(*resumePath)
	contentType := client.DetectContentType(fileName, data)
	if err := analyses.ValidateUpload(contentType, int64(len(data))); err != nil {
		exitErr(err.Error())
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(*provider))
	cfg.LLMModel = *model
	cfg.MockProviderDelay = 0

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p, err := bootstrap.NewProvider(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}

	start := time.Now()
	rec, err := p.Analyze(ctx, analyses.Upload{
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Data:        data,
	})
	if err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}
	rec.FileName = fileName
	rec.UploadDate = time.Now().UTC()

	pretty, err := json.MarshalIndent(analyses.View(rec), "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	telemetry.Info("prompttest.done", map[string]any{
		"provider":    cfg.LLMProvider,
		"file_name":   fileName,
		"rating":      rec.AIFeedback.Rating,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
