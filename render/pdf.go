// Package render turns appeal letter text into a paginated PDF document.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 50.0 // points
	fontSize   = 12.0
	lineHeight = 15.0
)

// Letter renders the given letter text into a US-Letter PDF: single embedded
// Times face, line-by-line layout, automatic page breaks when the page runs
// out of vertical space. Returns the document bytes and the page count.
func Letter(text string) ([]byte, int, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	pdf.SetFont("Times", "", fontSize)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			pdf.Ln(lineHeight)
			continue
		}
		// MultiCell wraps long lines and triggers page breaks as needed.
		pdf.MultiCell(0, lineHeight, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to render letter PDF: %w", err)
	}

	return buf.Bytes(), pdf.PageCount(), nil
}
