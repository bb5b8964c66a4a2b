package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"resume-review/internal/llm"
)

type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	inputs    []llm.AnalyzeInput
	fixes     []string
}

func (s *scriptedLLM) AnalyzeResume(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.inputs)
	s.inputs = append(s.inputs, input)
	if raw, ok := llm.FixJSONFromContext(ctx); ok {
		s.fixes = append(s.fixes, raw)
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return json.RawMessage(s.responses[i]), nil
	}
	return nil, errors.New("no scripted response")
}

func staticExtract(text string, err error) ExtractFunc {
	return func(ctx context.Context, data []byte, mimeType string) (string, error) {
		return text, err
	}
}

const validOutput = `{"personalDetails":{"name":"Ada Lovelace","email":"ada@example.com","phone":"1"},
"summary":"Analyst","skills":{"technical":["Go"],"soft":[]},
"aiFeedback":{"rating":7.5,"summary":"solid","improvementAreas":[],"suggestedSkills":["SQL"]}}`

func TestMockProviderReturnsSampleAnalysis(t *testing.T) {
	rec, err := MockProvider{}.Analyze(context.Background(), Upload{FileName: "x.pdf"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.AIFeedback.Rating != 8.5 || rec.PersonalDetails.Name != "John Smith" {
		t.Fatalf("unexpected mock record: %+v", rec.PersonalDetails)
	}
	if rec.ID != "" || !rec.UploadDate.IsZero() || rec.FileName != "" {
		t.Fatalf("provider must not stamp id, file name or timestamp")
	}
	if len(rec.WorkExperience) != 2 || len(rec.Skills.Technical) != 9 || len(rec.AIFeedback.SuggestedSkills) != 5 {
		t.Fatalf("sample analysis incomplete")
	}
}

func TestMockProviderDelayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := MockProvider{Delay: time.Minute}.Analyze(ctx, Upload{})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != ProviderTimeout {
		t.Fatalf("expected timeout ProviderError, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("delay did not stop on context deadline")
	}
}

func TestLLMProviderDecodesOutput(t *testing.T) {
	client := &scriptedLLM{responses: []string{"```json\n" + validOutput + "\n```"}}
	p := &LLMProvider{LLM: client, Extract: staticExtract("Ada Lovelace\nAnalyst", nil), PromptVersion: "v1"}

	rec, err := p.Analyze(context.Background(), Upload{FileName: "ada.pdf", ContentType: ContentTypePDF})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.PersonalDetails.Name != "Ada Lovelace" || rec.AIFeedback.Rating != 7.5 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one call, got %d", len(client.inputs))
	}
	in := client.inputs[0]
	if in.FileName != "ada.pdf" || in.ResumeText != "Ada Lovelace\nAnalyst" || in.PromptVersion != "v1" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestLLMProviderFixJSONRetry(t *testing.T) {
	client := &scriptedLLM{responses: []string{`{"summary": "cut off`, validOutput}}
	p := &LLMProvider{LLM: client, Extract: staticExtract("text", nil)}

	rec, err := p.Analyze(context.Background(), Upload{FileName: "a.pdf"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.AIFeedback.Rating != 7.5 {
		t.Fatalf("expected repaired output, got %+v", rec.AIFeedback)
	}
	if len(client.fixes) != 1 || client.fixes[0] != `{"summary": "cut off` {
		t.Fatalf("expected fix-json retry with raw output, got %v", client.fixes)
	}
}

func TestLLMProviderFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		llm     llm.Client
		extract ExtractFunc
		want    ProviderKind
	}{
		{
			name:    "extraction fails",
			llm:     &scriptedLLM{responses: []string{validOutput}},
			extract: staticExtract("", errors.New("parse pdf: bad xref")),
			want:    ProviderUnreadable,
		},
		{
			name:    "no text",
			llm:     &scriptedLLM{responses: []string{validOutput}},
			extract: staticExtract("   ", nil),
			want:    ProviderUnreadable,
		},
		{
			name:    "schema mismatch after fix",
			llm:     &scriptedLLM{responses: []string{"nope", `{"summary":"still no feedback"}`}},
			extract: staticExtract("text", nil),
			want:    ProviderSchemaMismatch,
		},
		{
			name:    "request timeout",
			llm:     &scriptedLLM{errs: []error{fmt.Errorf("openai request timeout: %w", context.DeadlineExceeded), fmt.Errorf("openai request timeout: %w", context.DeadlineExceeded)}},
			extract: staticExtract("text", nil),
			want:    ProviderTimeout,
		},
		{
			name:    "bad request",
			llm:     &scriptedLLM{errs: []error{errors.New("openai http status 400: invalid model")}},
			extract: staticExtract("text", nil),
			want:    ProviderUnavailable,
		},
		{
			name:    "no client",
			llm:     nil,
			extract: staticExtract("text", nil),
			want:    ProviderUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &LLMProvider{LLM: tt.llm, Extract: tt.extract}
			_, err := p.Analyze(context.Background(), Upload{FileName: "a.pdf"})
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if pe.Kind != tt.want {
				t.Fatalf("expected kind %s, got %s (%v)", tt.want, pe.Kind, err)
			}
		})
	}
}

func TestRetryingLLMRetriesTransientOnce(t *testing.T) {
	base := &scriptedLLM{
		errs:      []error{errors.New("gemini http status 503: overloaded")},
		responses: []string{"", validOutput},
	}
	client := retryingLLM{base: base, delay: time.Millisecond}

	raw, err := client.AnalyzeResume(context.Background(), llm.AnalyzeInput{})
	if err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if string(raw) != validOutput || len(base.inputs) != 2 {
		t.Fatalf("expected success on second attempt, calls=%d", len(base.inputs))
	}
}

func TestShouldRetryLLM(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.Canceled, want: false},
		{err: context.DeadlineExceeded, want: true},
		{err: errors.New("openai http status 502: bad gateway"), want: true},
		{err: errors.New("gemini http status 429: quota"), want: true},
		{err: errors.New("read tcp: connection reset by peer"), want: true},
		{err: errors.New("openai http status 401: unauthorized"), want: false},
	}
	for _, tt := range tests {
		if got := shouldRetryLLM(tt.err); got != tt.want {
			t.Fatalf("shouldRetryLLM(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
