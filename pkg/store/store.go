// Package store provides persistence for shelves and their computed layouts.
//
// This package defines the [Store] interface with two implementations:
//   - [MemoryStore]: in-memory storage for development and testing
//   - [MongoStore]: MongoDB-backed storage for server deployments
//
// A stored [Shelf] carries both the raw item payload and the most recently
// computed layout, so the API can serve layouts without recomputing them on
// every request.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
)

// ErrNotFound is returned when a shelf doesn't exist in the store.
var ErrNotFound = errors.New("shelf not found")

// Shelf is a stored shelf: identity, the raw item list, and the layout
// computed from it. Layout is nil until the first normalization run.
type Shelf struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name,omitempty" bson:"name,omitempty"`
	Owner     string         `json:"owner,omitempty" bson:"owner,omitempty"`
	Items     []catalog.Item `json:"items" bson:"items"`
	Layout    []layout.Item  `json:"layout,omitempty" bson:"layout,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence interface for shelves.
// All methods are safe for concurrent use.
type Store interface {
	// Get retrieves a shelf by ID. Returns [ErrNotFound] if it doesn't exist.
	Get(ctx context.Context, id string) (*Shelf, error)

	// Put creates or replaces a shelf. An empty ID is assigned a new UUID;
	// timestamps are maintained by the store.
	Put(ctx context.Context, shelf *Shelf) error

	// SaveLayout stores a computed layout on an existing shelf.
	// Returns [ErrNotFound] if the shelf doesn't exist.
	SaveLayout(ctx context.Context, id string, items []layout.Item) error

	// Delete removes a shelf. Returns [ErrNotFound] if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// List returns all shelves for an owner, or all shelves if owner is empty.
	List(ctx context.Context, owner string) ([]*Shelf, error)

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// NewID returns a fresh shelf identifier.
func NewID() string { return uuid.NewString() }
