// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic that wrap every
// outbound call (feed fetch, plain-text fetch, article fetch, webhook delivery)
// so one failing source degrades gracefully instead of aborting the digest run.
//
// The package supports:
//   - Circuit breakers for external hosts (weather feeds, news scan, webhook)
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchFeed(url)
//	})
//
//	retryConfig := retry.FeedFetchConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performFetch()
//	})
package resilience
