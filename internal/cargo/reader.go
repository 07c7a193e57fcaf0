// Package cargo reads the game's cargo manifest file on demand. Cargo
// changes are rare and the file is tiny, so there is no cache and no
// watcher; every read goes to disk.
package cargo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/elite-status-check/backend/internal/models"
)

var (
	// ErrNotAvailable means the manifest file does not exist yet. The
	// game only writes it once cargo changes for the first time.
	ErrNotAvailable = errors.New("cargo manifest not available yet")

	// ErrMalformed means the manifest file could not be parsed.
	ErrMalformed = errors.New("malformed cargo manifest")
)

// Reader reads one cargo manifest file.
type Reader struct {
	path string
}

// NewReader creates a reader for the manifest at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Read loads and decodes the manifest.
func (r *Reader) Read() (*models.CargoManifest, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAvailable
		}
		return nil, fmt.Errorf("read cargo manifest: %w", err)
	}

	var doc struct {
		Vessel    string `json:"Vessel"`
		Count     int    `json:"Count"`
		Inventory []struct {
			Name          string `json:"Name"`
			NameLocalised string `json:"Name_Localised"`
			Count         int    `json:"Count"`
			Stolen        int    `json:"Stolen"`
		} `json:"Inventory"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	observed := time.Now()
	if info, err := os.Stat(r.path); err == nil {
		observed = info.ModTime()
	}

	manifest := &models.CargoManifest{
		Vessel:     doc.Vessel,
		Count:      doc.Count,
		Inventory:  make([]models.CargoItem, 0, len(doc.Inventory)),
		ObservedAt: observed,
	}
	for _, item := range doc.Inventory {
		manifest.Inventory = append(manifest.Inventory, models.CargoItem{
			Name:          item.Name,
			NameLocalised: item.NameLocalised,
			Count:         item.Count,
			Stolen:        item.Stolen,
		})
	}
	return manifest, nil
}
