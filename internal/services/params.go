package services

import "time"

// LLMParameters holds the sampling parameters sent with every completion request. A nil field leaves the
// provider's own default in place.
type LLMParameters struct {
	Temperature *float32
	TopP        *float32
}

// defaultTimeout bounds a single completion call when the configuration does not set one.
const defaultTimeout = 60 * time.Second

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
