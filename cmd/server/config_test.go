package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/trafer/advocacia-web/internal/assistant"
	"gopkg.in/yaml.v3"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(environment{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if _, ok := cfg.LLM.(*geminiConfig); !ok {
		t.Errorf("LLM = %T, want *geminiConfig", cfg.LLM)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
storePath: /tmp/leads.db
llm:
  provider: gemini
  apiKey: from-file
`)

	cfg, err := loadConfig(environment{
		ConfigPath: path,
		Port:       "7000",
		APIKey:     "from-env",
		LogLevel:   "debug",
	})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("Port = %q, want 7000", cfg.Port)
	}
	if cfg.StorePath != "/tmp/leads.db" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if got := cfg.LLM.base().APIKey; got != "from-env" {
		t.Errorf("APIKey = %q, want from-env", got)
	}
}

func TestConfigUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantType any
		wantErr  bool
	}{
		{
			name:     "Gemini",
			yaml:     "llm:\n  provider: gemini\n  model: gemini-3-flash-preview\n  timeout: 30s\n",
			wantType: &geminiConfig{},
		},
		{
			name:     "OpenAI compatible",
			yaml:     "llm:\n  provider: openai\n  model: gpt-4o-mini\n  baseURL: https://openrouter.ai/api/v1\n",
			wantType: &openAIConfig{},
		},
		{
			name:     "Ollama",
			yaml:     "llm:\n  provider: ollama\n  model: llama3\n  host: http://localhost:11434\n",
			wantType: &ollamaConfig{},
		},
		{
			name:     "Anthropic",
			yaml:     "llm:\n  provider: anthropic\n  model: claude\n  maxTokens: 1024\n",
			wantType: &anthropicConfig{},
		},
		{
			name:    "Missing provider",
			yaml:    "llm:\n  model: x\n",
			wantErr: true,
		},
		{
			name:    "Unknown provider",
			yaml:    "llm:\n  provider: watson\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			err := yaml.Unmarshal([]byte(tt.yaml), &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got, want := typeName(cfg.LLM), typeName(tt.wantType); got != want {
				t.Errorf("LLM = %s, want %s", got, want)
			}
		})
	}
}

func TestConfigUnmarshalYAMLFields(t *testing.T) {
	cfg := defaultConfig()
	err := yaml.Unmarshal([]byte(`
sessionTTL: 30m
log:
  format: json
site:
  whatsapp: "+55 (21) 98888-7777"
llm:
  provider: openai
  model: gpt-4o-mini
  baseURL: https://openrouter.ai/api/v1
  timeout: 45s
`), &cfg)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v, want json format with default level", cfg.Log)
	}
	if got := cfg.Site.site().WhatsAppURL(); got != "https://wa.me/5521988887777" {
		t.Errorf("WhatsAppURL() = %q", got)
	}

	o, ok := cfg.LLM.(*openAIConfig)
	if !ok {
		t.Fatalf("LLM = %T, want *openAIConfig", cfg.LLM)
	}
	if o.BaseURL != "https://openrouter.ai/api/v1" || o.Model != "gpt-4o-mini" || o.Timeout != 45*time.Second {
		t.Errorf("openAIConfig = %+v", o)
	}
}

func TestCompleterWithoutCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	tests := []struct {
		name string
		llm  llmConfig
	}{
		{name: "Gemini", llm: &geminiConfig{}},
		{name: "OpenAI", llm: &openAIConfig{BaseLLMConfig: BaseLLMConfig{Model: "gpt"}}},
		{name: "Anthropic", llm: &anthropicConfig{BaseLLMConfig: BaseLLMConfig{Model: "claude"}, MaxTokens: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.llm.completer(context.Background(), assistant.SystemInstruction, assistant.DefaultParameters(), discardLogger())
			if !errors.Is(err, errNoCredential) {
				t.Errorf("completer() error = %v, want errNoCredential", err)
			}
			if c != nil {
				t.Errorf("completer() = %v, want nil", c)
			}
		})
	}
}

func TestCompleterConfigured(t *testing.T) {
	tests := []struct {
		name string
		llm  llmConfig
	}{
		{name: "OpenAI", llm: &openAIConfig{BaseLLMConfig: BaseLLMConfig{Model: "gpt", APIKey: "k"}}},
		{name: "Ollama", llm: &ollamaConfig{BaseLLMConfig: BaseLLMConfig{Model: "llama3"}, Host: "http://localhost:11434"}},
		{name: "Anthropic", llm: &anthropicConfig{BaseLLMConfig: BaseLLMConfig{Model: "claude", APIKey: "k"}, MaxTokens: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.llm.completer(context.Background(), assistant.SystemInstruction, assistant.DefaultParameters(), discardLogger())
			if err != nil {
				t.Fatalf("completer() error = %v", err)
			}
			if c == nil {
				t.Error("completer() = nil")
			}
		})
	}
}

func TestCompleterRequiresModel(t *testing.T) {
	for _, llm := range []llmConfig{&openAIConfig{}, &ollamaConfig{}, &anthropicConfig{}} {
		if _, err := llm.completer(context.Background(), "", assistant.DefaultParameters(), discardLogger()); err == nil {
			t.Errorf("%s completer() should require a model", typeName(llm))
		}
	}
}

func TestLogConfigLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     logConfig
		wantErr bool
	}{
		{name: "Text", cfg: logConfig{Level: "info", Format: "text"}},
		{name: "JSON", cfg: logConfig{Level: "debug", Format: "json"}},
		{name: "Rotating file", cfg: logConfig{Level: "warn", File: filepath.Join(t.TempDir(), "app.log"), MaxSizeMB: 1}},
		{name: "Bad level", cfg: logConfig{Level: "loud"}, wantErr: true},
		{name: "Bad format", cfg: logConfig{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closer, err := tt.cfg.logger()
			if (err != nil) != tt.wantErr {
				t.Fatalf("logger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			logger.Warn("test")
			if err := closer.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *geminiConfig:
		return "gemini"
	case *openAIConfig:
		return "openai"
	case *ollamaConfig:
		return "ollama"
	case *anthropicConfig:
		return "anthropic"
	}
	return "unknown"
}
