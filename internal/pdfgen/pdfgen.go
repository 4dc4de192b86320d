// Package pdfgen renders plain text into simple PDFs for sample collections
// and tests.
package pdfgen

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageBreak  = "\f"
	lineHeight = 6.0
)

// Options controls how lines are laid out.
type Options struct {
	// IsHeading decides which lines are set in bold. Nil means no bold lines.
	IsHeading func(line string) bool
}

// WriteText writes text to outPath, one line per row. A form feed starts a
// new page, so page numbers in the PDF line up with the input.
func WriteText(text string, outPath string, opts Options) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetAutoPageBreak(true, 15)

	for _, page := range strings.Split(text, pageBreak) {
		pdf.AddPage()
		scanner := bufio.NewScanner(strings.NewReader(page))
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				pdf.Ln(lineHeight / 2)
				continue
			}
			if opts.IsHeading != nil && opts.IsHeading(line) {
				pdf.SetFont("Helvetica", "B", 13)
				pdf.CellFormat(0, lineHeight+2, line, "", 1, "L", false, 0, "")
				pdf.SetFont("Helvetica", "", 11)
				continue
			}
			pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
		}
	}
	return pdf.OutputFileAndClose(outPath)
}
