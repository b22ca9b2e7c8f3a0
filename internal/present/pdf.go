package present

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ExportPDF writes title and bullets to a single-column A4 PDF and returns
// the path used. Core fonts are cp1252, so text is translated on the way in.
func ExportPDF(path, title string, bullets []string) (string, error) {
	if len(bullets) == 0 {
		return "", ErrNothingToExport
	}
	out := resolvePath(path, DefaultPDFName)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreator("shortly", true)
	pdf.AddPage()

	if t := strings.TrimSpace(title); t != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 7, tr(t), "", "L", false)
		pdf.Ln(3)
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, b := range bullets {
		pdf.MultiCell(0, 5, tr("• "+b), "", "L", false)
		pdf.Ln(3)
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return out, nil
}
