package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finreport/internal/log"
)

// fileDateLayout dates the default report file names.
const fileDateLayout = "2006-01-02"

// Notifier is told about every report written.
type Notifier interface {
	NotifyReport(ctx context.Context, name, path string) error
}

// Writer stores reports as JSON files.
type Writer struct {
	dir      string
	notifier Notifier
	now      func() time.Time
	logger   *log.Logger
}

// NewWriter creates a writer placing default report files under dir.
// notifier may be nil.
func NewWriter(dir string, notifier Notifier, logger *log.Logger) *Writer {
	return &Writer{
		dir:      dir,
		notifier: notifier,
		now:      time.Now,
		logger:   log.OrDiscard(logger).WithComponent(log.ComponentWriter),
	}
}

// DefaultPath is where a report called name is written today.
func (w *Writer) DefaultPath(name string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.json", name, w.now().Format(fileDateLayout)))
}

// Write encodes v as indented UTF-8 JSON at path, or at DefaultPath(name)
// when path is empty, and returns the path used. Non-ASCII text is written
// as is. A notifier failure is logged and does not fail the write.
func (w *Writer) Write(ctx context.Context, name, path string, v any) (string, error) {
	if path == "" {
		path = w.DefaultPath(name)
	}

	if err := writeJSON(path, v); err != nil {
		w.logger.Failure(ctx, "Failed to write report", err, log.OpWrite, log.ErrorTypeIO,
			log.NewFields().WithReport(name).With(log.FieldFile, path))
		return "", err
	}
	w.logger.InfoContext(ctx, "Report written", log.FieldReport, name, log.FieldFile, path)

	if w.notifier != nil {
		if err := w.notifier.NotifyReport(ctx, name, path); err != nil {
			w.logger.Failure(ctx, "Failed to publish report notification", err, log.OpPublish, log.ErrorTypeNetwork,
				log.NewFields().WithReport(name))
		}
	}
	return path, nil
}

func writeJSON(path string, v any) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
