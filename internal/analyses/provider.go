package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-review/internal/extract"
	"resume-review/internal/llm"
	"resume-review/internal/shared/telemetry"
)

// Provider derives an analysis record from an uploaded resume. Implementations
// leave ID, FileName and UploadDate for the caller.
type Provider interface {
	Analyze(ctx context.Context, upload Upload) (Record, error)
}

// ExtractFunc pulls plain text out of a document.
type ExtractFunc func(ctx context.Context, data []byte, mimeType string) (string, error)

// LLMProvider extracts resume text and asks a language model for the record.
type LLMProvider struct {
	LLM           llm.Client
	Extract       ExtractFunc
	PromptVersion string
}

// NewLLMProvider builds an LLMProvider backed by PDF text extraction.
func NewLLMProvider(client llm.Client) *LLMProvider {
	return &LLMProvider{
		LLM:           client,
		Extract:       extract.Text,
		PromptVersion: llm.DefaultPromptVersion,
	}
}

// Analyze implements Provider.
func (p *LLMProvider) Analyze(ctx context.Context, upload Upload) (Record, error) {
	if p.LLM == nil {
		return Record{}, providerError(ProviderUnavailable, errors.New("llm client not configured"))
	}
	extractFn := p.Extract
	if extractFn == nil {
		extractFn = extract.Text
	}

	text, err := extractFn(ctx, upload.Data, upload.ContentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Record{}, classifyLLMError(ctxErr)
		}
		return Record{}, providerError(ProviderUnreadable, fmt.Errorf("extract text: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return Record{}, providerError(ProviderUnreadable, extract.ErrNoText)
	}

	client := newRetryingLLM(p.LLM, requestIDFromContext(ctx), upload.FileName)
	input := llm.AnalyzeInput{
		FileName:      upload.FileName,
		ResumeText:    text,
		PromptVersion: p.PromptVersion,
	}

	raw, err := client.AnalyzeResume(ctx, input)
	if err != nil {
		return Record{}, classifyLLMError(fmt.Errorf("llm analyze: %w", err))
	}

	rec, decodeErr := DecodeResult(raw)
	if decodeErr == nil {
		return rec, nil
	}

	telemetry.Info("llm.fix_json", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"file_name":  upload.FileName,
		"error":      sanitizeError(decodeErr),
	})
	rawRetry, err := client.AnalyzeResume(llm.WithFixJSON(ctx, string(raw)), input)
	if err != nil {
		return Record{}, classifyLLMError(fmt.Errorf("llm analyze retry: %w", err))
	}
	rec, err = DecodeResult(rawRetry)
	if err != nil {
		return Record{}, providerError(ProviderSchemaMismatch, fmt.Errorf("llm output invalid: %w", err))
	}
	return rec, nil
}

func classifyLLMError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "request timeout") {
		return providerError(ProviderTimeout, err)
	}
	return providerError(ProviderUnavailable, err)
}

var _ Provider = (*LLMProvider)(nil)
