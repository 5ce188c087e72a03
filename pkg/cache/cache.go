// Package cache provides caching for the shelf layout pipeline.
//
// The package defines a backend-agnostic [Cache] interface with three
// implementations:
//   - [FileCache]: directory-backed cache for CLI usage
//   - [RedisCache]: Redis-backed cache for server deployments
//   - [NullCache]: no-op cache for tests and --no-cache
//
// A [Keyer] produces deterministic cache keys for the pipeline stages:
// shelf item payloads, computed layouts, and rendered artifacts. Keys embed
// a content hash of the inputs so that any change to items or options
// invalidates the entry naturally.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
// Implementations must treat a missing key as (nil, false, nil), not an error.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// ItemsKeyOpts are the options that distinguish item-payload cache entries.
type ItemsKeyOpts struct {
	BaseURL string `json:"base_url,omitempty"`
}

// LayoutKeyOpts are the options that distinguish layout cache entries.
type LayoutKeyOpts struct {
	RowTolerance float64 `json:"row_tolerance,omitempty"`
	SpacingPad   float64 `json:"spacing_pad,omitempty"`
	BaseURL      string  `json:"base_url,omitempty"`
}

// ArtifactKeyOpts are the options that distinguish rendered artifacts.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Style  string  `json:"style,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Titles bool    `json:"titles,omitempty"`
	Covers bool    `json:"covers,omitempty"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// HTTPKey generates a key for backend HTTP response caching.
	HTTPKey(namespace, key string) string

	// ItemsKey generates a key for a shelf's item payload.
	ItemsKey(shelfID string, opts ItemsKeyOpts) string

	// LayoutKey generates a key for a computed layout, based on the
	// content hash of the input items.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, based on the
	// content hash of the layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer implements Keyer with hash-based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// The key is human-readable since HTTP keys are already namespaced.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ItemsKey generates a key for a shelf's item payload.
func (k *DefaultKeyer) ItemsKey(shelfID string, opts ItemsKeyOpts) string {
	return hashKey("items", shelfID, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
