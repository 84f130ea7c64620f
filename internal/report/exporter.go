// Package report renders the periodic ticket report as a PDF table. The
// core supplies the query and the row contract; layout mirrors the report
// the complex has been distributing (six columns scaled to the page width).
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

// RowSource yields the export rows for a date range.
type RowSource interface {
	ReportRows(ctx context.Context, start, end time.Time) ([]model.ReportRow, error)
}

// Exporter builds PDF reports. FontPath must point at a Unicode TTF font
// (the report is in Russian); DejaVuSans.ttf next to the binary by default.
type Exporter struct {
	rows     RowSource
	fontPath string
}

func NewExporter(rows RowSource, fontPath string) *Exporter {
	if fontPath == "" {
		fontPath = "DejaVuSans.ttf"
	}
	return &Exporter{rows: rows, fontPath: fontPath}
}

const fontName = "DejaVuSans"

var headers = []string{"ФИО", "Адрес", "Описание", "Тип", "Статус", "Закрыл"}

// colWidths sums to 190mm, the printable width of an A4 page with margins.
var colWidths = []float64{35, 35, 60, 20, 20, 20}

// Build queries the range and renders the table. Returns the PDF bytes
// ready to be sent as a document.
func (e *Exporter) Build(ctx context.Context, start, end time.Time) ([]byte, error) {
	if _, err := os.Stat(e.fontPath); err != nil {
		return nil, fmt.Errorf("report font %s: %w", e.fontPath, err)
	}
	rows, err := e.rows.ReportRows(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report rows: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font(fontName, "", e.fontPath)
	pdf.AddPage()

	pdf.SetFont(fontName, "", 12)
	pdf.CellFormat(190, 10, "Отчет по заявкам ЖК", "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 10,
		fmt.Sprintf("Период: %s - %s", start.Format("02.01.2006"), end.Format("02.01.2006")),
		"", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont(fontName, "", 10)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for _, r := range rows {
		e.writeRow(pdf, r)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// The table is in Russian; enum values never appear raw.
func urgencyLabel(u model.Urgency) string {
	if u == model.UrgencyUrgent {
		return "Сроч"
	}
	return "Обыч"
}

func statusLabel(s model.TicketStatus) string {
	if s == model.TicketStatusCompleted {
		return "Завершена"
	}
	return "Открыта"
}

func (e *Exporter) writeRow(pdf *fpdf.Fpdf, r model.ReportRow) {
	cells := []string{r.ResidentName, r.Address, r.Description,
		urgencyLabel(r.Urgency), statusLabel(r.Status), r.ClosedByName}

	const lineHeight = 5.0
	maxLines := 1
	for i, c := range cells {
		if n := len(pdf.SplitText(c, colWidths[i])); n > maxLines {
			maxLines = n
		}
	}
	rowHeight := lineHeight * float64(maxLines)

	x, y := pdf.GetXY()
	for i, c := range cells {
		pdf.Rect(x, y, colWidths[i], rowHeight, "D")
		pdf.SetXY(x, y)
		pdf.MultiCell(colWidths[i], lineHeight, c, "", "L", false)
		x += colWidths[i]
	}
	// SetY also returns the abscissa to the left margin.
	pdf.SetY(y + rowHeight)
}
