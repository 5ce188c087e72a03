// Package backend provides a client for the ShelvesAI backend API.
//
// # Overview
//
// The layout engine normally runs against item payloads fetched from the
// ShelvesAI backend. This package wraps those endpoints with caching and
// automatic retries:
//
//	client := backend.NewClient("https://api.shelvesai.app", fileCache, time.Hour,
//	    backend.WithToken(token))
//	items, err := client.FetchShelfItems(ctx, shelfID, false)
//
// # Caching
//
// Responses are cached under "http:shelves:" keys through the [cache.Cache]
// backend, so repeated layout runs against the same shelf do not re-hit the
// API. Pass refresh=true to bypass the cache for a single call.
//
// # Errors
//
// Fetch methods return [ErrNotFound] for missing shelves and [ErrNetwork]
// for transport failures and 5xx responses. 5xx responses and connection
// errors are retried with exponential backoff before surfacing.
//
// [cache.Cache]: github.com/fTr0ut/ShelvesAI-sub003/pkg/cache.Cache
package backend
