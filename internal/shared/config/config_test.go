package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"ENV", "PORT", "DATABASE_URL", "OBJECT_STORE", "LLM_PROVIDER", "PROVIDER_TIMEOUT",
		"UPLOAD_STATE_TTL", "REDIS_ADDR", "CORS_ALLOW_ORIGINS", "MOCK_PROVIDER_DELAY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "dev" || !cfg.IsDevLike() {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.ObjectStoreType != "none" {
		t.Fatalf("expected no object store by default, got %q", cfg.ObjectStoreType)
	}
	if cfg.LLMProvider != "mock" {
		t.Fatalf("expected mock provider by default, got %q", cfg.LLMProvider)
	}
	if cfg.ProviderTimeout != 60*time.Second {
		t.Fatalf("expected 60s provider timeout, got %s", cfg.ProviderTimeout)
	}
	if cfg.UploadStateTTL != 2*time.Minute {
		t.Fatalf("expected 2m upload state ttl, got %s", cfg.UploadStateTTL)
	}
	if cfg.MockProviderDelay != 2*time.Second {
		t.Fatalf("expected 2s mock delay, got %s", cfg.MockProviderDelay)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigin, []string{"http://localhost:5173"}) {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://db/resumes")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("PROVIDER_TIMEOUT", "15s")
	t.Setenv("UPLOAD_STATE_TTL", "not-a-duration")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	if cfg.Env != "production" || cfg.IsDevLike() {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" || cfg.LLMProvider != "gemini" {
		t.Fatalf("unexpected normalization: store=%q provider=%q", cfg.ObjectStoreType, cfg.LLMProvider)
	}
	if cfg.ProviderTimeout != 15*time.Second {
		t.Fatalf("expected 15s, got %s", cfg.ProviderTimeout)
	}
	if cfg.UploadStateTTL != 2*time.Minute {
		t.Fatalf("expected invalid duration to fall back to default, got %s", cfg.UploadStateTTL)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigin, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadKeepsUnknownProvider(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "gemnini", want: "gemnini"},
		{raw: " OpenAI ", want: "openai"},
		{raw: "  ", want: "mock"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("ENV", "production")
			t.Setenv("LLM_PROVIDER", tt.raw)
			if got := Load().LLMProvider; got != tt.want {
				t.Fatalf("LLM_PROVIDER=%q: expected %q, got %q", tt.raw, tt.want, got)
			}
		})
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_MODEL=gpt-4o-mini\nPORT=9999\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("LLM_MODEL", "")
	os.Unsetenv("LLM_MODEL")

	cfg := Load()
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("expected LLM_MODEL from .env, got %q", cfg.LLMModel)
	}
	if cfg.Port != "7000" {
		t.Fatalf("expected environment to win over .env, got %q", cfg.Port)
	}
}
