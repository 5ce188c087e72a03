package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalItems serializes items to pretty-printed JSON bytes.
func MarshalItems(items []Item) ([]byte, error) {
	return json.MarshalIndent(items, "", "  ")
}

// UnmarshalItems deserializes JSON bytes into an item slice.
// Accepts either a bare array or an object with an "items" field, since
// backend endpoints and exported files use both envelopes.
func UnmarshalItems(data []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return wrapped.Items, nil
}

// WriteItemsFile writes items to a JSON file.
func WriteItemsFile(items []Item, path string) error {
	data, err := MarshalItems(items)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadItemsFile reads items from a JSON file.
func ReadItemsFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalItems(data)
}
