package cache

import "time"

// Stage TTLs. Item payloads go stale as users rearrange their shelves, so
// they expire quickly; layouts and artifacts are pure functions of their
// inputs (the key embeds a content hash) and can live longer.
const (
	// TTLItems is how long fetched shelf item payloads stay fresh.
	TTLItems = 1 * time.Hour

	// TTLLayout is how long computed layouts stay fresh.
	TTLLayout = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts stay fresh.
	TTLArtifact = 24 * time.Hour
)
