package output

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/cinefind/internal/site"
)

// WritePDF renders the ranked listing as a minimal A4 report with clickable
// result links. This is intentionally simple and does no pagination tuning.
func WritePDF(query string, results []site.Result, sitesSearched int, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Search results for %q", query)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Found %d results across %d websites, closest match first.", len(results), sitesSearched)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, r := range results {
		pdf.WriteLinkString(5, tr(r.Title), r.URL)
		pdf.Ln(6)
	}

	return pdf.OutputFileAndClose(outPath)
}
