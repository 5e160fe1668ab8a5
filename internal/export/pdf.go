package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"budgetflow/internal/core"
)

var (
	headerColor   = [3]int{40, 40, 40}
	accentColor   = [3]int{230, 148, 255} // #E694FF, the flow chart node colour
	bodyTextColor = [3]int{50, 50, 50}
	lineColor     = [3]int{200, 200, 200}
	overColor     = [3]int{192, 0, 0}
)

func writePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Marketing budget "+doc.Period), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}
	row := func(label, value string) {
		pdf.CellFormat(120, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, tr(value), "", 1, "R", false, 0, "")
	}

	section("Summary")
	row("Total Budget", core.FormatAmount(doc.Summary.TotalBudget, doc.Currency))
	row("Total Expense", core.FormatAmount(doc.Summary.TotalExpense, doc.Currency))
	if doc.Summary.Overspent() {
		pdf.SetTextColor(overColor[0], overColor[1], overColor[2])
	}
	row("Remaining Budget", core.FormatAmount(doc.Summary.RemainingBudget, doc.Currency))
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.Ln(6)

	if doc.Comment != "" {
		section("Comment")
		pdf.MultiCell(190, 5, tr(doc.Comment), "", "L", false)
		pdf.Ln(6)
	}

	section("Budget by category")
	maxBarWidth := 100.0
	for _, bar := range doc.Bar.Bars {
		pdf.CellFormat(60, 6, tr(bar.Label), "", 0, "L", false, 0, "")
		x, y := pdf.GetX(), pdf.GetY()
		if bar.Width > 0 {
			pdf.SetFillColor(accentColor[0], accentColor[1], accentColor[2])
			pdf.Rect(x, y+1, maxBarWidth*float64(bar.Width)/100, 4, "F")
		}
		pdf.SetX(x + maxBarWidth + 2)
		pdf.CellFormat(28, 6, tr(fmt.Sprintf("%s%%", bar.Share)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	section("Budget flow")
	for i := 0; i < doc.Flow.Links(); i++ {
		from, to := doc.Flow.Labels[doc.Flow.Source[i]], doc.Flow.Labels[doc.Flow.Target[i]]
		row(from+" -> "+to, core.FormatAmount(doc.Flow.Value[i], doc.Currency))
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, tr("Generated by budgetflow | "+time.Now().Format("2006-01-02")), "", 0, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing PDF: %w", err)
	}
	return nil
}
