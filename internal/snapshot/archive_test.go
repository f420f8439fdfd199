package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docket-watch/acquire/pkg/models"
)

func TestArchiverWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArchiver(dir, 1)
	if err != nil {
		t.Fatalf("NewArchiver failed: %v", err)
	}

	a.Save(&models.RawContent{
		Jurisdiction: "GA",
		Identifier:   "44280",
		Body:         "<html><body><h1>Docket 44280</h1></body></html>",
		FetchedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	a.Close()

	entries, err := os.ReadDir(filepath.Join(dir, "GA"))
	if err != nil {
		t.Fatalf("Snapshot dir missing: %v", err)
	}

	var html, md bool
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".html") && strings.HasPrefix(e.Name(), "44280-") {
			html = true
		}
		if strings.HasSuffix(e.Name(), ".md") {
			md = true
		}
	}
	if !html {
		t.Error("HTML snapshot not written")
	}
	if !md {
		t.Error("Markdown companion not written")
	}
}

func TestArchiverNilIsNoop(t *testing.T) {
	a, err := NewArchiver("", 1)
	if err != nil {
		t.Fatalf("NewArchiver failed: %v", err)
	}
	if a != nil {
		t.Fatal("Empty dir should yield a nil archiver")
	}
	// Nil methods must not panic.
	a.Save(&models.RawContent{Body: "x"})
	a.Close()
}

func TestArchiverSanitizesPathParts(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArchiver(dir, 1)
	if err != nil {
		t.Fatalf("NewArchiver failed: %v", err)
	}

	a.Save(&models.RawContent{
		Jurisdiction: "NM",
		Identifier:   "../..//22-00058 UT",
		Body:         "<html></html>",
		FetchedAt:    time.Now(),
	})
	a.Close()

	// Nothing may land outside the archive root.
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		if strings.Contains(rel, "..") {
			t.Errorf("Path escaped the archive root: %s", rel)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
}

func TestArchiverSkipsEmptyBody(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArchiver(dir, 1)
	if err != nil {
		t.Fatalf("NewArchiver failed: %v", err)
	}
	a.Save(&models.RawContent{Jurisdiction: "GA", Identifier: "1", Body: ""})
	a.Close()

	if _, err := os.Stat(filepath.Join(dir, "GA")); !os.IsNotExist(err) {
		t.Error("Empty body should not produce a snapshot")
	}
}
