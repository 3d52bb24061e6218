package artifacts

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Cover-letter page layout.
const (
	coverMargin     = 50.0 // pt
	coverFontSize   = 11.0
	coverLineHeight = 15.0
)

// layoutCoverLetter lays plain text onto an A4 PDF: standard sans-serif
// font, 50 pt margins, word wrap, page breaks at the bottom margin.
func layoutCoverLetter(text string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(coverMargin, coverMargin, coverMargin)
	pdf.SetAutoPageBreak(true, coverMargin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", coverFontSize)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, para := range strings.Split(strings.TrimSpace(text), "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			pdf.Ln(coverLineHeight)
			continue
		}
		pdf.MultiCell(0, coverLineHeight, tr(para), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
