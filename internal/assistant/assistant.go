// Package assistant turns a visitor's question into the virtual assistant's answer. Its single
// operation never fails: a missing credential or a failed completion call both resolve to fixed
// fallback text pointing the visitor to WhatsApp.
package assistant

import (
	"context"
	"log/slog"
)

// Completer sends one question to an external completion service and returns the generated text.
// Implementations carry their own system instruction and sampling parameters.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
}

// Assistant answers questions through an optional Completer. A nil completer means no credential was
// configured at startup.
type Assistant struct {
	completer Completer
	logger    *slog.Logger
}

type outcomeKind int

const (
	outcomeAnswered outcomeKind = iota
	outcomeUnconfigured
	outcomeFailed
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeAnswered:
		return "answered"
	case outcomeUnconfigured:
		return "unconfigured"
	case outcomeFailed:
		return "failed"
	}
	return "unknown"
}

type outcome struct {
	kind outcomeKind
	text string
}

const errLoggerKey = "err"

// New creates an Assistant. Passing a nil completer selects the no-credential fallback for every call.
func New(completer Completer, logger *slog.Logger) Assistant {
	return Assistant{
		completer: completer,
		logger:    logger.With(slog.String("module", "assistant")),
	}
}

// Configured reports whether the assistant has a completion service to call.
func (a Assistant) Configured() bool {
	return a.completer != nil
}

// Answer returns the reply to question. On success the model's text is returned verbatim, and may be
// empty. Errors from the completion service are logged and replaced with FallbackUnavailable.
func (a Assistant) Answer(ctx context.Context, question string) string {
	o := a.resolve(ctx, question)
	a.logger.Debug("Answer resolved", slog.String("outcome", o.kind.String()))
	return o.text
}

func (a Assistant) resolve(ctx context.Context, question string) outcome {
	if a.completer == nil {
		a.logger.Warn("Completion credential not configured, using default reply")
		return outcome{kind: outcomeUnconfigured, text: FallbackNoCredential}
	}

	text, err := a.completer.Complete(ctx, question)
	if err != nil {
		a.logger.Error("Completion request failed", slog.String(errLoggerKey, err.Error()))
		return outcome{kind: outcomeFailed, text: FallbackUnavailable}
	}

	return outcome{kind: outcomeAnswered, text: text}
}
