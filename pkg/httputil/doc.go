// Package httputil fetches remote board documents over HTTP.
//
// # Overview
//
// This package provides the network layer used whenever a board source
// is a URL rather than a local file:
//
//   - [Client]: GET with retry and optional response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Client.Fetch] retrieves a document and transparently retries
// transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other non-OK status fails immediately. Usage:
//
//	client := httputil.NewClient(
//	    httputil.WithCache(store, cache.NewDefaultKeyer(), time.Hour),
//	)
//	data, err := client.Fetch(ctx, "https://cases.example.com/board.json")
//
// With a cache configured, repeated fetches of the same URL are served
// locally until the entry expires. Keys are namespaced under "source"
// via [cache.Keyer.HTTPKey] so they never collide with graph or layout
// artifacts.
//
// # Retry
//
// [Retry] is exposed directly for callers with their own transport
// logic. It only retries errors wrapped in [RetryableError]; everything
// else returns immediately. The delay doubles after each failed
// attempt.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Attempt timeout: 30 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second
//   - Max document size: 32 MiB
//
// Cached responses can be cleared via `linkboard cache clear` or by
// deleting the cache directory.
package httputil
