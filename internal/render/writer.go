package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const filePrefix = "release-notes-"

// Files lists the paths written for one release
type Files struct {
	Markdown string
	PDF      string
	Email    string
}

// Writer writes rendered release notes into Dir
type Writer struct {
	Dir           string
	Cleanup       bool // remove earlier release-notes-* files before writing
	EmailTemplate string
	PDF           PDFOptions
	Logger        *slog.Logger

	// serializes cleanup and writes of concurrent runs
	mu sync.Mutex
}

// Write renders n in every format and stores the results as
// release-notes-<tag>.{md,pdf,eml}. Nothing is written when rendering fails.
func (w *Writer) Write(n Notes, email EmailFields) (Files, error) {
	if w.Dir == "" {
		return Files{}, fmt.Errorf("output directory is not configured")
	}

	pdfOpt := w.PDF
	if pdfOpt.Logger == nil {
		pdfOpt.Logger = w.logger()
	}
	var pdfBuf bytes.Buffer
	if err := PDF(&pdfBuf, n, pdfOpt); err != nil {
		return Files{}, err
	}

	tmpl := w.EmailTemplate
	if tmpl == "" {
		tmpl = DefaultEmailTemplate
	}
	if email.Version == "" {
		email.Version = n.EndTag
	}
	if email.PriorVersion == "" {
		email.PriorVersion = n.StartTag
	}
	if email.Product == "" {
		email.Product = n.Product
	}
	eml := Email(tmpl, email, EmailBody(n.Result))

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output directory: %w", err)
	}
	if w.Cleanup {
		w.cleanup()
	}

	base := filepath.Join(w.Dir, filePrefix+sanitizeTag(n.EndTag))
	files := Files{
		Markdown: base + ".md",
		PDF:      base + ".pdf",
		Email:    base + ".eml",
	}

	if err := os.WriteFile(files.Markdown, []byte(Markdown(n)), 0o644); err != nil {
		return Files{}, fmt.Errorf("write markdown: %w", err)
	}
	if err := os.WriteFile(files.PDF, pdfBuf.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("write pdf: %w", err)
	}
	if err := os.WriteFile(files.Email, []byte(eml), 0o644); err != nil {
		return Files{}, fmt.Errorf("write email: %w", err)
	}

	return files, nil
}

// cleanup removes release notes left over from earlier runs. Failures are
// logged and do not stop the run.
func (w *Writer) cleanup() {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		w.logger().Warn("Failed to list output directory", "dir", w.Dir, "error", err)
		return
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isReleaseNotesFile(name) {
			continue
		}
		if err := os.Remove(filepath.Join(w.Dir, name)); err != nil {
			w.logger().Warn("Failed to remove old release notes", "file", name, "error", err)
			continue
		}
		w.logger().Debug("Removed old release notes", "file", name)
	}
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func isReleaseNotesFile(name string) bool {
	if !strings.HasPrefix(name, filePrefix) {
		return false
	}
	switch filepath.Ext(name) {
	case ".md", ".pdf", ".eml":
		return true
	}
	return false
}

// sanitizeTag keeps tags like "release/1.0" from escaping the output directory
func sanitizeTag(tag string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(tag)
}
