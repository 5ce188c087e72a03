// Package httputil provides HTTP utilities for the ShelvesAI backend client.
//
// # Overview
//
// This package provides infrastructure shared by components that talk to the
// remote ShelvesAI API:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/shelfvision/)
// with configurable TTL. Shelf item payloads change rarely, so caching
// avoids re-fetching the same shelf on every layout computation.
//
//	cache, err := httputil.NewCache("", 12*time.Hour)
//	shelves := cache.Namespace("shelves:")
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures
// (network errors, 5xx responses). Only errors wrapped with
// [RetryableError] are retried; everything else fails fast.
//
// The cache can be cleared via `shelfvision cache clear` or by deleting
// the cache directory.
package httputil
