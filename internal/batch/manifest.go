package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Manifest describes one recorded session.
type Manifest struct {
	Session string          `json:"session"`
	Created time.Time       `json:"created"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	FPS     float64         `json:"fps"`
	Filter  string          `json:"filter"`
	Frames  []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Index int    `json:"index"`
	Image string `json:"image,omitempty"`
	Error string `json:"error,omitempty"`
}

// Entries converts writer results to manifest entries. Failed frames keep
// their index and error but no image.
func Entries(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{Index: r.Index, Error: r.Error}
		if r.Success {
			entries[i].Image = r.Image
		}
	}
	return entries
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("batch: write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("batch: read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("batch: parse manifest %s: %w", path, err)
	}
	return m, nil
}
