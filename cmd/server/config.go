package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/trafer/advocacia-web/internal/assistant"
	"github.com/trafer/advocacia-web/internal/models"
	"github.com/trafer/advocacia-web/internal/services"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// errNoCredential is returned by llmConfig.completer when the provider needs an API key and none is
// configured. The server still runs, answering every question with the no-credential fallback.
var errNoCredential = errors.New("no api key configured")

type llmConfig interface {
	base() *BaseLLMConfig
	completer(ctx context.Context, systemPrompt string, params services.LLMParameters, logger *slog.Logger) (assistant.Completer, error)
}

// BaseLLMConfig contains the common fields for all LLM configurations.
type BaseLLMConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

type config struct {
	Port       string        `yaml:"port"`
	StorePath  string        `yaml:"storePath"`
	SessionTTL time.Duration `yaml:"sessionTTL"`
	Log        logConfig     `yaml:"log"`
	Site       siteConfig    `yaml:"site"`
	LLM        llmConfig     `yaml:"llm"`
}

type logConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

type siteConfig struct {
	WhatsApp     string `yaml:"whatsapp"`
	PhoneDisplay string `yaml:"phoneDisplay"`
	Email        string `yaml:"email"`
	Address      string `yaml:"address"`
}

// environment holds the settings read from environment variables. Non-empty values override the
// config file.
type environment struct {
	ConfigPath string `env:"APP_CONFIG" envDefault:"config.yaml"`
	Port       string `env:"PORT"`
	APIKey     string `env:"API_KEY"`
	StorePath  string `env:"STORE_PATH"`
	LogLevel   string `env:"LOG_LEVEL"`
	LogFile    string `env:"LOG_FILE"`
}

type geminiConfig struct {
	BaseLLMConfig `yaml:",inline"`
}

type openAIConfig struct {
	BaseLLMConfig `yaml:",inline"`
	BaseURL       string `yaml:"baseURL"`
}

type ollamaConfig struct {
	BaseLLMConfig `yaml:",inline"`
	Host          string `yaml:"host"`
}

type anthropicConfig struct {
	BaseLLMConfig `yaml:",inline"`
	MaxTokens     int `yaml:"maxTokens"`
}

func defaultConfig() config {
	return config{
		Port:       "8080",
		StorePath:  "data/leads.db",
		SessionTTL: 2 * time.Hour,
		Log: logConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		LLM: &geminiConfig{BaseLLMConfig: BaseLLMConfig{Provider: "gemini"}},
	}
}

// loadConfig reads the YAML file named by env.ConfigPath on top of the defaults, then applies the
// environment overrides. A missing file is not an error.
func loadConfig(env environment) (config, error) {
	cfg := defaultConfig()

	f, err := os.Open(env.ConfigPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return config{}, fmt.Errorf("error opening config file: %w", err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	env.apply(&cfg)
	return cfg, nil
}

func (e environment) apply(c *config) {
	if e.Port != "" {
		c.Port = e.Port
	}
	if e.StorePath != "" {
		c.StorePath = e.StorePath
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFile != "" {
		c.Log.File = e.LogFile
	}
	if e.APIKey != "" {
		c.LLM.base().APIKey = e.APIKey
	}
}

func (c *config) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig struct {
		Port       string         `yaml:"port"`
		StorePath  string         `yaml:"storePath"`
		SessionTTL time.Duration  `yaml:"sessionTTL"`
		Log        logConfig      `yaml:"log"`
		Site       siteConfig     `yaml:"site"`
		LLM        map[string]any `yaml:"llm"`
	}

	if err := value.Decode(&rawConfig); err != nil {
		return err
	}

	if rawConfig.Port != "" {
		c.Port = rawConfig.Port
	}
	if rawConfig.StorePath != "" {
		c.StorePath = rawConfig.StorePath
	}
	if rawConfig.SessionTTL > 0 {
		c.SessionTTL = rawConfig.SessionTTL
	}
	c.Log.merge(rawConfig.Log)
	c.Site = rawConfig.Site

	if rawConfig.LLM == nil {
		return nil
	}

	llmProvider, ok := rawConfig.LLM["provider"].(string)
	if !ok || llmProvider == "" {
		return fmt.Errorf("llm provider is required")
	}

	llmRawYAML, err := yaml.Marshal(rawConfig.LLM)
	if err != nil {
		return err
	}

	var llm llmConfig
	switch llmProvider {
	case "gemini":
		llm = &geminiConfig{}
	case "openai":
		llm = &openAIConfig{}
	case "ollama":
		llm = &ollamaConfig{}
	case "anthropic":
		llm = &anthropicConfig{}
	default:
		return fmt.Errorf("unknown llm provider: %s", llmProvider)
	}

	if err := yaml.Unmarshal(llmRawYAML, llm); err != nil {
		return err
	}

	c.LLM = llm

	return nil
}

func (l *logConfig) merge(o logConfig) {
	if o.Level != "" {
		l.Level = o.Level
	}
	if o.Format != "" {
		l.Format = o.Format
	}
	if o.File != "" {
		l.File = o.File
	}
	if o.MaxSizeMB > 0 {
		l.MaxSizeMB = o.MaxSizeMB
	}
	if o.MaxBackups > 0 {
		l.MaxBackups = o.MaxBackups
	}
}

// site returns the firm's content with the configured contact details applied.
func (s siteConfig) site() models.Site {
	site := models.DefaultSite()
	if s.WhatsApp != "" {
		site.WhatsApp = s.WhatsApp
	}
	if s.PhoneDisplay != "" {
		site.PhoneDisplay = s.PhoneDisplay
	}
	if s.Email != "" {
		site.Email = s.Email
	}
	if s.Address != "" {
		site.Address = s.Address
	}
	return site
}

// logger builds the process logger. Output goes to stderr, or to a rotating file when File is set; the
// returned closer releases that file.
func (l logConfig) logger() (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if l.File != "" {
		lj := &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			Compress:   true,
		}
		w, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), closer, nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format: %s", l.Format)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (g *geminiConfig) base() *BaseLLMConfig { return &g.BaseLLMConfig }

func (g *geminiConfig) completer(
	ctx context.Context,
	systemPrompt string,
	params services.LLMParameters,
	logger *slog.Logger,
) (assistant.Completer, error) {
	apiKey := g.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errNoCredential
	}
	gemini, err := services.NewGemini(ctx, apiKey, g.Model, systemPrompt, params, g.Timeout, logger)
	if err != nil {
		return nil, err
	}
	return gemini, nil
}

func (o *openAIConfig) base() *BaseLLMConfig { return &o.BaseLLMConfig }

func (o *openAIConfig) completer(
	_ context.Context,
	systemPrompt string,
	params services.LLMParameters,
	logger *slog.Logger,
) (assistant.Completer, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	apiKey := o.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errNoCredential
	}
	return services.NewOpenAI(apiKey, o.BaseURL, o.Model, systemPrompt, params, o.Timeout, logger), nil
}

func (o *ollamaConfig) base() *BaseLLMConfig { return &o.BaseLLMConfig }

func (o *ollamaConfig) completer(
	_ context.Context,
	systemPrompt string,
	params services.LLMParameters,
	_ *slog.Logger,
) (assistant.Completer, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	host := o.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	ollama, err := services.NewOllama(host, o.Model, systemPrompt, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return ollama, nil
}

func (a *anthropicConfig) base() *BaseLLMConfig { return &a.BaseLLMConfig }

func (a *anthropicConfig) completer(
	_ context.Context,
	systemPrompt string,
	params services.LLMParameters,
	logger *slog.Logger,
) (assistant.Completer, error) {
	if a.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if a.MaxTokens == 0 {
		return nil, fmt.Errorf("maxTokens is required")
	}
	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errNoCredential
	}
	return services.NewAnthropic(apiKey, a.Model, systemPrompt, params, a.MaxTokens, a.Timeout, logger), nil
}
