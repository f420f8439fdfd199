// Package output renders acquisition results for the CLI and the snapshot
// archive.
package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/docket-watch/acquire/pkg/models"
)

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []*models.NormalizedRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// SaveJSON writes records to a file, creating or truncating it.
func SaveJSON(records []*models.NormalizedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, records)
}
