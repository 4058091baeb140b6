// File path: internal/tbx/importer.go
package tbx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/termcheck/termcheck/internal/catalog"
	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
)

// FileError records a per-document failure. The batch keeps going; callers
// get the full list in the report.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Report summarizes one import run.
type Report struct {
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Errors   []FileError `json:"errors,omitempty"`
}

// Importer normalizes TBX documents into the terminology store, optionally
// writing imported entries through to the catalog.
type Importer struct {
	store   *term.Store
	catalog *catalog.Store
}

// NewImporter builds an importer over the shared store. The catalog may be
// nil for purely in-memory use.
func NewImporter(store *term.Store, cat *catalog.Store) *Importer {
	return &Importer{store: store, catalog: cat}
}

// Import ingests a single TBX document or every .tbx/.xml document in a
// directory. Malformed documents and rejected records are reported in the
// result, never aborting the batch; entries whose identifier is already in
// the store are skipped and counted, not overwritten.
func (im *Importer) Import(ctx context.Context, path string) (Report, error) {
	if im == nil || im.store == nil {
		return Report{}, errors.New("importer not initialized")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Report{}, fmt.Errorf("stat import path: %w", err)
	}
	logger := common.Logger()
	var report Report
	if !info.IsDir() {
		im.importFile(ctx, path, &report)
		logger.Info("tbx: import complete", "path", path, "imported", report.Imported, "skipped", report.Skipped, "errors", len(report.Errors))
		return report, nil
	}
	files, err := listDocuments(path)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		logger.Warn("tbx: no documents found", "dir", path)
		return report, nil
	}
	for _, file := range files {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		im.importFile(ctx, file, &report)
	}
	logger.Info("tbx: directory import complete", "dir", path, "files", len(files), "imported", report.Imported, "skipped", report.Skipped, "errors", len(report.Errors))
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, path string, report *Report) {
	logger := common.Logger()
	file, err := os.Open(path)
	if err != nil {
		report.Errors = append(report.Errors, FileError{Path: path, Message: err.Error()})
		return
	}
	defer file.Close()
	entries, recordErrs, err := parseDocument(file, filepath.Base(path))
	for _, recErr := range recordErrs {
		report.Errors = append(report.Errors, FileError{Path: path, Message: recErr.Error()})
	}
	if err != nil {
		logger.Warn("tbx: document rejected", "path", path, "error", err)
		report.Errors = append(report.Errors, FileError{Path: path, Message: err.Error()})
		return
	}
	for _, entry := range entries {
		if err := im.store.AddEntry(entry); err != nil {
			if errors.Is(err, term.ErrDuplicateEntry) {
				report.Skipped++
				continue
			}
			report.Errors = append(report.Errors, FileError{Path: path, Message: err.Error()})
			continue
		}
		report.Imported++
		if im.catalog != nil {
			if err := im.catalog.SaveEntry(ctx, entry); err != nil {
				logger.Error("tbx: catalog write failed", "entry", entry.ID, "error", err)
				report.Errors = append(report.Errors, FileError{Path: path, Message: fmt.Sprintf("persist entry %s: %v", entry.ID, err)})
			}
		}
	}
	logger.Debug("tbx: document processed", "path", path, "entries", len(entries))
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".tbx", ".xml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
