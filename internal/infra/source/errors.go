package source

import "errors"

// Sentinel errors for source fetch operations.
var (
	// ErrInvalidURL indicates the URL is malformed or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private address.
	// Article links come from third-party feeds, so they are treated as
	// untrusted input (SSRF prevention).
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrNoContent indicates extraction produced no readable text.
	ErrNoContent = errors.New("no readable content found")
)
