// Package notifier delivers finished digests to chat channels. It
// defines the DigestNotifier interface so the publish flow does not
// care whether the target is a real Slack webhook or the no-op sink
// used in dry runs.
package notifier

import "context"

// DigestNotifier posts a digest document to its destination.
// Implementations own rate limiting and error classification; they do
// not retry, because the caller treats one delivery as one publish.
type DigestNotifier interface {
	// Deliver posts the digest document. The document is the draft
	// file's contents, section delimiters included.
	Deliver(ctx context.Context, document string) error
}
