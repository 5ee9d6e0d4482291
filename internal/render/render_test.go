package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/relnotes/internal/notes"
)

func sampleNotes() Notes {
	res := notes.Categorize([]notes.PullRequest{
		{Number: 11, Title: "Add dark mode", Labels: []string{"feature"}},
		{Number: 14, Title: "Fix crash on start", Labels: []string{"bug"}},
		{Number: 12, Title: "Tidy build"},
	})
	return Notes{
		Product:     "widget",
		EndTag:      "v2.0.0",
		StartTag:    "v1.9.0",
		Result:      res,
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleNotes())
	want := `# Release Notes - v2.0.0 (Changes since v1.9.0)

## Features

- Add dark mode (#11)

## Bug Fixes

- Fix crash on start (#14)

## Other

- Tidy build (#12)

`
	if got != want {
		t.Fatalf("unexpected markdown:\n%s", got)
	}
}

func TestMarkdownWithoutStartTagAndEmpty(t *testing.T) {
	got := Markdown(Notes{EndTag: "v1.0.0", Result: notes.NewResult()})
	want := "# Release Notes - v1.0.0\n\n> " + NoChangesNotice + "\n"
	if got != want {
		t.Fatalf("unexpected markdown:\n%q", got)
	}
}

func TestMarkdownHighlights(t *testing.T) {
	n := sampleNotes()
	n.Highlights = "  Dark mode lands.  "
	got := Markdown(n)
	if !strings.Contains(got, "## Highlights\n\nDark mode lands.\n\n## Features") {
		t.Fatalf("highlights not rendered before categories:\n%s", got)
	}
}

func TestEmailBody(t *testing.T) {
	got := EmailBody(sampleNotes().Result)
	want := "\nFeatures:\n- Add dark mode (#11)\n\n\nBug Fixes:\n- Fix crash on start (#14)\n\n\nOther:\n- Tidy build (#12)\n\n"
	if got != want {
		t.Fatalf("unexpected email body:\n%q", got)
	}
}

func TestEmailSubstitution(t *testing.T) {
	tmpl := "From: {from_email}\nTo: {to_email}\nCc: {cc_email}\nSubject: {product_name} {release_version}\n\nSince {prior_release_version}:{release_notes}{unknown}"
	got := Email(tmpl, EmailFields{
		From:    "bot@example.com",
		To:      "team@example.com",
		Product: "widget",
		Version: "v2.0.0",
	}, "\n- a (#1)\n")

	want := "From: bot@example.com\nTo: team@example.com\nCc: \nSubject: widget v2.0.0\n\nSince previous version:\n- a (#1)\n{unknown}"
	if got != want {
		t.Fatalf("unexpected email:\n%q", got)
	}
}

func TestEmailDoesNotExpandPlaceholdersInsideNotes(t *testing.T) {
	got := Email("{release_notes}", EmailFields{Product: "widget"}, "- mention {product_name} (#3)")
	if got != "- mention {product_name} (#3)" {
		t.Fatalf("notes body must be inserted verbatim, got %q", got)
	}
}

func TestLoadEmailTemplate(t *testing.T) {
	tmpl, err := LoadEmailTemplate(filepath.Join(t.TempDir(), "missing.eml"))
	if err != nil || tmpl != DefaultEmailTemplate {
		t.Fatalf("expected default template, got err=%v", err)
	}

	path := filepath.Join(t.TempDir(), "custom.eml")
	if err := os.WriteFile(path, []byte("Subject: {release_version}"), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl, err = LoadEmailTemplate(path)
	if err != nil || tmpl != "Subject: {release_version}" {
		t.Fatalf("unexpected template %q, err=%v", tmpl, err)
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sampleNotes(), PDFOptions{AssetsDir: t.TempDir()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
}

func writeAssets(t *testing.T, logo []byte) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 0x34, G: 0x49, B: 0x5e, A: 0xff})
		}
	}
	var header bytes.Buffer
	if err := png.Encode(&header, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "header-bg.png"), header.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), logo, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPDFSkipsUnreadableAsset(t *testing.T) {
	assets := writeAssets(t, []byte("not really a png"))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var buf bytes.Buffer
	if err := PDF(&buf, sampleNotes(), PDFOptions{AssetsDir: assets, Logger: logger}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF document")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Subtype /Image")) {
		t.Fatalf("header background missing from document")
	}
	if !strings.Contains(logs.String(), "logo.png") {
		t.Fatalf("expected warning about logo.png, got:\n%s", logs.String())
	}
}

func TestWriterWithUnreadableAsset(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{
		Dir:    dir,
		PDF:    PDFOptions{AssetsDir: writeAssets(t, nil)},
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}

	files, err := w.Write(sampleNotes(), EmailFields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, path := range []string{files.Markdown, files.PDF, files.Email} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing output file: %v", err)
		}
	}
}

func TestPDFEmpty(t *testing.T) {
	var buf bytes.Buffer
	n := Notes{EndTag: "v0.1.0", Result: notes.NewResult()}
	if err := PDF(&buf, n, PDFOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected PDF output")
	}
}

func TestWriterWritesAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	w := &Writer{Dir: dir, Cleanup: true}

	files, err := w.Write(sampleNotes(), EmailFields{From: "bot@example.com", To: "team@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{files.Markdown, files.PDF, files.Email} {
		if filepath.Dir(path) != dir {
			t.Fatalf("file %s written outside %s", path, dir)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing output file: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("empty output file %s", path)
		}
	}
	if filepath.Base(files.Markdown) != "release-notes-v2.0.0.md" {
		t.Fatalf("unexpected markdown file name %s", files.Markdown)
	}

	eml, err := os.ReadFile(files.Email)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(eml), "Subject: widget v2.0.0 release notes") {
		t.Fatalf("unexpected email file:\n%s", eml)
	}
	if !strings.Contains(string(eml), "Changes since v1.9.0") {
		t.Fatalf("prior version missing:\n%s", eml)
	}
}

func TestWriterCleanup(t *testing.T) {
	dir := t.TempDir()
	stale := []string{"release-notes-v0.9.0.md", "release-notes-v0.9.0.pdf", "release-notes-v0.9.0.eml"}
	keep := []string{"notes.txt", "release-notes-v0.9.0.txt"}
	for _, name := range append(stale, keep...) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w := &Writer{Dir: dir, Cleanup: true}
	if _, err := w.Write(sampleNotes(), EmailFields{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range stale {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("stale file %s not removed", name)
		}
	}
	for _, name := range keep {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("unrelated file %s removed", name)
		}
	}
}

func TestWriterConcurrentCleanup(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Cleanup: true}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := sampleNotes()
			n.EndTag = fmt.Sprintf("v1.%d.0", i)
			if _, err := w.Write(n, EmailFields{}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected the files of one release, got %d entries", len(entries))
	}
	base := strings.TrimSuffix(entries[0].Name(), filepath.Ext(entries[0].Name()))
	for _, e := range entries {
		if strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())) != base {
			t.Fatalf("files of different releases left behind: %s and %s", base, e.Name())
		}
	}
}

func TestWriterRequiresDir(t *testing.T) {
	w := &Writer{}
	if _, err := w.Write(sampleNotes(), EmailFields{}); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestSanitizeTag(t *testing.T) {
	if got := sanitizeTag("release/../1.0"); strings.ContainsAny(got, "/\\") || strings.Contains(got, "..") {
		t.Fatalf("unsafe tag %q", got)
	}
}
