package generator

import (
	"context"
	"fmt"
)

// NoOpBackend answers every request with a canned line instead of
// calling a provider. Useful for exercising the draft pipeline without
// API keys.
type NoOpBackend struct{}

// NewNoOpBackend creates a NoOpBackend.
func NewNoOpBackend() *NoOpBackend {
	return &NoOpBackend{}
}

// Name implements Backend.
func (n *NoOpBackend) Name() string {
	return "noop"
}

// Complete implements Backend. It echoes a marker plus the first line
// of the prompt so drafts show which generation produced which section.
func (n *NoOpBackend) Complete(_ context.Context, req Request) (string, error) {
	return fmt.Sprintf("[dry run] %s", firstLine(req.Prompt)), nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
