package notifier_test

import (
	"context"
	"testing"

	"stormbot/internal/infra/notifier"
)

func TestNoOp_Deliver(t *testing.T) {
	n := notifier.NewNoOp()
	if err := n.Deliver(context.Background(), sampleDocument()); err != nil {
		t.Errorf("Deliver() error = %v, want nil", err)
	}
	if err := n.Deliver(context.Background(), ""); err != nil {
		t.Errorf("Deliver() error = %v, want nil for empty document", err)
	}
}
