package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama answers questions with a model served by an Ollama instance. It needs no credential, so a
// configured Ollama host always counts as a usable completer.
type Ollama struct {
	model        string
	systemPrompt string
	params       LLMParameters

	client *api.Client
}

// NewOllama creates a new Ollama instance with the specified host URL and model name. The host
// parameter should be a valid URL pointing to an Ollama server.
func NewOllama(host, model, systemPrompt string, params LLMParameters, timeout time.Duration) (Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return Ollama{}, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return Ollama{
		model:        model,
		systemPrompt: systemPrompt,
		params:       params,
		client:       api.NewClient(u, &http.Client{Timeout: timeoutOrDefault(timeout)}),
	}, nil
}

// Complete sends the system prompt and question as a non-streaming chat request and returns the model's
// reply.
func (o Ollama) Complete(ctx context.Context, question string) (string, error) {
	f := false
	req := api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{
				Role:    "system",
				Content: o.systemPrompt,
			},
			{
				Role:    "user",
				Content: question,
			},
		},
		Stream:  &f,
		Options: o.options(),
	}

	var answer string
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		answer += res.Message.Content
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	return answer, nil
}

func (o Ollama) options() map[string]any {
	opts := map[string]any{}
	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	return opts
}
