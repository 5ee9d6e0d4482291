package render

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/yourorg/relnotes/internal/notes"
)

const (
	pdfMargin       = 72.0
	pdfHeaderHeight = 150.0
)

// PDFOptions controls branding and dates of the PDF document
type PDFOptions struct {
	// AssetsDir may contain header-bg.png and logo.png. Missing or
	// unreadable files are skipped.
	AssetsDir string
	Location  *time.Location
	Logger    *slog.Logger
}

// PDF renders the release notes as an A4 document into w
func PDF(w io.Writer, n Notes, opt PDFOptions) error {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	generated := n.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	date := generated.In(loc).Format("2006-01-02")

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-50)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0x95, 0xa5, 0xa6)
		pdf.CellFormat(0, 10, "Generated on "+date, "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	if path, ok := registerAsset(pdf, opt, "header-bg.png"); ok {
		pdf.ImageOptions(path, 0, 0, pageW, pdfHeaderHeight, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	if path, ok := registerAsset(pdf, opt, "logo.png"); ok {
		pdf.ImageOptions(path, pdfMargin, 30, 0, 50, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(0xff, 0xff, 0xff)
	pdf.Text(200, 70, "Release Notes")

	pdf.SetXY(pdfMargin, 180)
	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(0x7f, 0x8c, 0x8d)
	pdf.CellFormat(0, 20, tr("Version: "+n.EndTag), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 20, "Release Date: "+date, "", 1, "L", false, 0, "")

	pdf.SetY(250)

	for _, c := range notes.Categories {
		prs := n.Result.Get(c)
		if len(prs) == 0 {
			continue
		}

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(0x34, 0x49, 0x5e)
		pdf.CellFormat(0, 30, c.Title(), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		pdf.SetTextColor(0x2c, 0x3e, 0x50)
		for _, pr := range prs {
			pdf.MultiCell(0, 20, tr(fmt.Sprintf("• %s (#%d)", pr.Title, pr.Number)), "", "L", false)
		}
		pdf.Ln(20)
	}

	if n.Result.Empty() {
		pdf.SetFont("Helvetica", "I", 12)
		pdf.SetTextColor(0x2c, 0x3e, 0x50)
		pdf.MultiCell(0, 20, NoChangesNotice, "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// registerAsset loads a branding image into the document. An image fpdf
// cannot decode is logged and left out.
func registerAsset(pdf *fpdf.Fpdf, opt PDFOptions, name string) (string, bool) {
	if opt.AssetsDir == "" {
		return "", false
	}
	path := filepath.Join(opt.AssetsDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	pdf.RegisterImageOptions(path, fpdf.ImageOptions{ReadDpi: true})
	if pdf.Err() {
		logger := opt.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("Skipping unreadable PDF asset", "file", path, "error", pdf.Error())
		pdf.ClearError()
		return "", false
	}
	return path, true
}
