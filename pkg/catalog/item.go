// Package catalog defines the item data model consumed by the shelf layout
// engine.
//
// Items originate from heterogeneous, loosely-validated upstream sources:
// manual entry in the mobile app, vision-scan output, and migrated catalog
// metadata. The model therefore keeps position metadata untyped (see the
// Position/Location fields of type any) and leaves validation to the
// position resolver, which degrades to "no position" instead of failing.
//
// An item record is a "user collection entry": the entry itself may carry
// position data, and so may its wrappers (user collection, user collectable)
// and its nested collectable or manual-entry records. The resolver in
// pkg/position defines the priority order between these sources.
package catalog

// Item is one entry of a user's shelf.
//
// All fields are optional. Position and Location hold raw, untyped position
// metadata in any of the supported shapes: a two-element array, an object
// with coordinate aliases, a free-text "x,y" string, or nothing at all.
type Item struct {
	ID       string `json:"id,omitempty" bson:"id,omitempty"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
	Position any    `json:"position,omitempty" bson:"position,omitempty"`
	Location any    `json:"location,omitempty" bson:"location,omitempty"`

	UserCollection  *Placement       `json:"user_collection,omitempty" bson:"user_collection,omitempty"`
	UserCollectable *UserCollectable `json:"user_collectable,omitempty" bson:"user_collectable,omitempty"`
	Collectable     *Collectable     `json:"collectable,omitempty" bson:"collectable,omitempty"`
	Manual          *ManualEntry     `json:"manual,omitempty" bson:"manual,omitempty"`
}

// Placement is a wrapper carrying only position metadata, used by the
// user-collection wrapper that some backend responses nest items under.
type Placement struct {
	Position any    `json:"position,omitempty" bson:"position,omitempty"`
	Location any    `json:"location,omitempty" bson:"location,omitempty"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
}

// UserCollectable is the per-user view of a catalog collectable: user edits
// (title overrides, placement) layered over the shared catalog record.
type UserCollectable struct {
	Title    string `json:"title,omitempty" bson:"title,omitempty"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Position any    `json:"position,omitempty" bson:"position,omitempty"`
	Location any    `json:"location,omitempty" bson:"location,omitempty"`
}

// Collectable is a shared catalog record (a book, game, record, etc.).
type Collectable struct {
	Title    string  `json:"title,omitempty" bson:"title,omitempty"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Creator  string  `json:"creator,omitempty" bson:"creator,omitempty"`
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
	Position any     `json:"position,omitempty" bson:"position,omitempty"`
	Location any     `json:"location,omitempty" bson:"location,omitempty"`
	Images   []Image `json:"images,omitempty" bson:"images,omitempty"`
}

// ManualEntry holds data the user typed in for items that have no catalog
// match (e.g., obscure or homemade collectables).
type ManualEntry struct {
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Notes    string `json:"notes,omitempty" bson:"notes,omitempty"`
	Position any    `json:"position,omitempty" bson:"position,omitempty"`
	Location any    `json:"location,omitempty" bson:"location,omitempty"`
}

// Image is one cover-image reference of a collectable.
//
// LocalPath points at a device-cached copy, URL at the backend media store,
// and FallbackURL at a generic placeholder image. Cover resolution prefers
// them in that order.
type Image struct {
	LocalPath   string `json:"local_path,omitempty" bson:"local_path,omitempty"`
	URL         string `json:"url,omitempty" bson:"url,omitempty"`
	FallbackURL string `json:"fallback_url,omitempty" bson:"fallback_url,omitempty"`
}

// Title returns the display title for the item, walking the priority chain
// collectable title/name → user-collectable title/name → manual name.
// Returns "" when nothing in the chain is set; callers supply the
// "Untitled item" default so that the fallback stays in one place.
func (it *Item) Title() string {
	if c := it.Collectable; c != nil {
		if c.Title != "" {
			return c.Title
		}
		if c.Name != "" {
			return c.Name
		}
	}
	if uc := it.UserCollectable; uc != nil {
		if uc.Title != "" {
			return uc.Title
		}
		if uc.Name != "" {
			return uc.Name
		}
	}
	if m := it.Manual; m != nil && m.Name != "" {
		return m.Name
	}
	return ""
}

// Detail returns a secondary display line for the item: the collectable's
// creator, else the manual entry's notes. Returns "" when neither is set.
func (it *Item) Detail() string {
	if c := it.Collectable; c != nil && c.Creator != "" {
		return c.Creator
	}
	if m := it.Manual; m != nil && m.Notes != "" {
		return m.Notes
	}
	return ""
}

// CoverRef returns the raw cover-image reference for the item, scanning the
// collectable's image list: first any cached local path, then any remote
// URL, then any generic fallback URL. Returns "" when no image is usable.
func (it *Item) CoverRef() string {
	if it.Collectable == nil {
		return ""
	}
	imgs := it.Collectable.Images
	for _, img := range imgs {
		if img.LocalPath != "" {
			return img.LocalPath
		}
	}
	for _, img := range imgs {
		if img.URL != "" {
			return img.URL
		}
	}
	for _, img := range imgs {
		if img.FallbackURL != "" {
			return img.FallbackURL
		}
	}
	return ""
}
