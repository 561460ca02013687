package assistant_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/trafer/advocacia-web/internal/assistant"
)

type mockCompleter struct {
	answer string
	err    error

	calls     int
	questions []string
}

func (m *mockCompleter) Complete(_ context.Context, question string) (string, error) {
	m.calls++
	m.questions = append(m.questions, question)
	return m.answer, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnswerWithoutCredential(t *testing.T) {
	a := assistant.New(nil, discardLogger())

	if a.Configured() {
		t.Error("Configured() = true, want false")
	}

	got := a.Answer(context.Background(), "Fui demitido sem justa causa, tenho direitos?")
	if got != assistant.FallbackNoCredential {
		t.Errorf("Answer() = %q, want %q", got, assistant.FallbackNoCredential)
	}
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name      string
		completer *mockCompleter
		question  string
		want      string
	}{
		{
			name:      "Model answer is returned verbatim",
			completer: &mockCompleter{answer: "Você pode ter direito a verbas rescisórias. " + assistant.Disclaimer},
			question:  "Fui demitido sem justa causa, tenho direitos?",
			want:      "Você pode ter direito a verbas rescisórias. " + assistant.Disclaimer,
		},
		{
			name:      "Empty model answer passes through",
			completer: &mockCompleter{answer: ""},
			question:  "Olá",
			want:      "",
		},
		{
			name:      "Network error becomes apology",
			completer: &mockCompleter{err: errors.New("dial tcp: connection refused")},
			question:  "Posso me aposentar?",
			want:      assistant.FallbackUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assistant.New(tt.completer, discardLogger())

			got := a.Answer(context.Background(), tt.question)
			if got != tt.want {
				t.Errorf("Answer() = %q, want %q", got, tt.want)
			}
			if tt.completer.calls != 1 {
				t.Errorf("Complete() called %d times, want 1", tt.completer.calls)
			}
			if tt.completer.questions[0] != tt.question {
				t.Errorf("Complete() question = %q, want %q", tt.completer.questions[0], tt.question)
			}
		})
	}
}

func TestAnswerCallsAreIndependent(t *testing.T) {
	m := &mockCompleter{answer: "ok"}
	a := assistant.New(m, discardLogger())

	for range 3 {
		a.Answer(context.Background(), "Posso me aposentar?")
	}
	if m.calls != 3 {
		t.Errorf("Complete() called %d times, want 3", m.calls)
	}
}

func TestSystemInstruction(t *testing.T) {
	for _, want := range []string{assistant.Disclaimer, "WhatsApp", "Previdenciário", "Não prometa ganhos de causa"} {
		if !strings.Contains(assistant.SystemInstruction, want) {
			t.Errorf("SystemInstruction missing %q", want)
		}
	}

	params := assistant.DefaultParameters()
	if params.Temperature == nil || *params.Temperature != 0.6 {
		t.Errorf("Temperature = %v, want 0.6", params.Temperature)
	}
	if params.TopP == nil || *params.TopP != 0.9 {
		t.Errorf("TopP = %v, want 0.9", params.TopP)
	}
}
