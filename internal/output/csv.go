package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/docket-watch/acquire/pkg/models"
)

var csvHeader = []string{
	"jurisdiction", "identifier", "found", "title", "organization_name",
	"filed_date", "status", "category", "source_url", "fetched_at",
}

// WriteCSV writes records in a fixed-column layout suitable for spreadsheet
// review of a verification batch.
func WriteCSV(w io.Writer, records []*models.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Jurisdiction,
			r.Identifier,
			strconv.FormatBool(r.Found),
			r.Title,
			r.OrganizationName,
			r.FiledDate,
			r.Status,
			r.Category,
			r.SourceURL,
			r.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// SaveCSV writes records to a file, creating or truncating it.
func SaveCSV(records []*models.NormalizedRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, records)
}
