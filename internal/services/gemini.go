package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiDefaultModel is used when the configuration leaves the model empty.
const GeminiDefaultModel = "gemini-3-flash-preview"

type geminiModelsClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

var newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Gemini answers questions through Google's Gemini API using the native genai SDK.
type Gemini struct {
	model        string
	systemPrompt string
	params       LLMParameters

	models geminiModelsClient

	logger *slog.Logger
}

// NewGemini creates a Gemini completer bound to the given API key, model and system instruction. The
// system instruction and sampling parameters are fixed for the lifetime of the returned value.
func NewGemini(
	ctx context.Context,
	apiKey, model, systemPrompt string,
	params LLMParameters,
	timeout time.Duration,
	logger *slog.Logger,
) (Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Gemini{}, errors.New("gemini api key is required")
	}
	if model == "" {
		model = GeminiDefaultModel
	}

	client, err := newGeminiClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeoutOrDefault(timeout)},
	})
	if err != nil {
		return Gemini{}, fmt.Errorf("error creating gemini client: %w", err)
	}

	return Gemini{
		model:        model,
		systemPrompt: systemPrompt,
		params:       params,
		models:       client.Models,
		logger:       logger.With(slog.String("module", "gemini")),
	}, nil
}

// Complete sends question as a single user turn and returns the visible text of the first candidate.
// A response without candidates yields an empty string and no error.
func (g Gemini) Complete(ctx context.Context, question string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: question}},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, g.contentConfig())
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	text := extractVisibleText(resp)
	g.logger.Debug("Gemini response", slog.Int("length", len(text)))
	return text, nil
}

func (g Gemini) contentConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: g.params.Temperature,
		TopP:        g.params.TopP,
	}
	if g.systemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: g.systemPrompt}},
		}
	}
	return cfg
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
