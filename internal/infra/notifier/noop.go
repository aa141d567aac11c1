package notifier

import (
	"context"
	"log/slog"

	"stormbot/internal/digest"
)

// NoOp is a notifier that logs the digest instead of delivering it.
// Used in dry runs and in development when no webhook is configured.
type NoOp struct{}

// NewNoOp creates a NoOp notifier.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Deliver implements DigestNotifier. It logs the section count and
// drops the document.
func (n *NoOp) Deliver(_ context.Context, document string) error {
	slog.Info("dry run: digest not delivered",
		slog.Int("sections", len(digest.Split(document))),
		slog.Int("chars", len(document)))
	return nil
}
