// Package snapshot archives raw fetched pages for audit. When a parser
// starts returning junk months later, the archived page shows whether the
// markup changed or the parser broke.
//
// Writes happen on a small worker pool so archiving never blocks an
// acquisition.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/output"
	"github.com/docket-watch/acquire/pkg/models"
)

const defaultWorkers = 2

// Archiver persists page snapshots under dir/<jurisdiction>/.
type Archiver struct {
	dir  string
	jobs chan *models.RawContent
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewArchiver starts the write workers. A nil Archiver is returned when dir
// is empty, and a nil Archiver's methods are no-ops, so callers never need
// to branch on whether archiving is enabled.
func NewArchiver(dir string, workers int) (*Archiver, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	a := &Archiver{
		dir:  dir,
		jobs: make(chan *models.RawContent, 64),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
	return a, nil
}

// Save enqueues a snapshot. Drops the snapshot rather than blocking when the
// queue is full; archiving is best effort.
func (a *Archiver) Save(raw *models.RawContent) {
	if a == nil || raw == nil || raw.Body == "" {
		return
	}
	select {
	case a.jobs <- raw:
	default:
		log.Warn().
			Str("jurisdiction", raw.Jurisdiction).
			Str("identifier", raw.Identifier).
			Msg("Snapshot queue full, dropping snapshot")
	}
}

// Close drains the queue and stops the workers.
func (a *Archiver) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() {
		close(a.jobs)
	})
	a.wg.Wait()
}

func (a *Archiver) worker() {
	defer a.wg.Done()
	for raw := range a.jobs {
		a.write(raw)
	}
}

func (a *Archiver) write(raw *models.RawContent) {
	dir := filepath.Join(a.dir, sanitize(raw.Jurisdiction))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Snapshot dir creation failed")
		return
	}

	base := fmt.Sprintf("%s-%s", sanitize(raw.Identifier), raw.FetchedAt.Format("20060102T150405"))
	htmlPath := filepath.Join(dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(raw.Body), 0o644); err != nil {
		log.Warn().Err(err).Str("path", htmlPath).Msg("Snapshot write failed")
		return
	}

	// The Markdown rendering is a convenience; failures only cost the
	// readable copy.
	if mdStr, err := output.HTMLToMarkdown(raw.Body); err == nil && mdStr != "" {
		mdPath := filepath.Join(dir, base+".md")
		if err := os.WriteFile(mdPath, []byte(mdStr), 0o644); err != nil {
			log.Debug().Err(err).Str("path", mdPath).Msg("Markdown snapshot write failed")
		}
	}

	log.Debug().
		Str("jurisdiction", raw.Jurisdiction).
		Str("identifier", raw.Identifier).
		Str("path", htmlPath).
		Msg("Snapshot archived")
}

func sanitize(s string) string {
	if s == "" {
		return "unknown"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_", ":", "_")
	return replacer.Replace(s)
}
