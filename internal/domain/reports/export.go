package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

func relationTable(report RelationReport) ([]string, [][]string) {
	header := []string{"Attribute", "Category", "Self", report.Label}
	rows := make([][]string, 0, len(report.Rows)+2)
	for _, row := range report.Rows {
		rows = append(rows, []string{row.AttributeName, string(row.Category), row.SelfScore.String(), row.Score.String()})
	}
	rows = append(rows, []string{"Cumulative", "", report.SelfCumulative.String(), report.Cumulative.String()})
	if report.IdealScore != nil {
		ideal := strconv.FormatFloat(*report.IdealScore, 'f', 1, 64)
		rows = append(rows, []string{"Ideal", "", ideal, ideal})
	}
	return header, rows
}

func selfTable(report SelfReport) ([]string, [][]string) {
	header := []string{"Attribute", "Category", "Self"}
	rows := make([][]string, 0, len(report.Rows)+2)
	for _, row := range report.Rows {
		rows = append(rows, []string{row.AttributeName, string(row.Category), row.Score.String()})
	}
	rows = append(rows, []string{"Cumulative", "", report.Cumulative.String()})
	if report.IdealScore != nil {
		rows = append(rows, []string{"Ideal", "", strconv.FormatFloat(*report.IdealScore, 'f', 1, 64)})
	}
	return header, rows
}

// WriteCSV renders a relation or total report as CSV.
func WriteCSV(w io.Writer, report RelationReport) error {
	header, rows := relationTable(report)
	return writeCSVTable(w, header, rows)
}

func WriteSelfCSV(w io.Writer, report SelfReport) error {
	header, rows := selfTable(report)
	return writeCSVTable(w, header, rows)
}

// WritePDF renders a relation or total report as a one-table A4 document.
func WritePDF(w io.Writer, title string, report RelationReport) error {
	header, rows := relationTable(report)
	return writePDFTable(w, title, header, rows)
}

func WriteSelfPDF(w io.Writer, title string, report SelfReport) error {
	header, rows := selfTable(report)
	return writePDFTable(w, title, header, rows)
}

func writeCSVTable(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

// writePDFTable lays out the attribute and category columns followed by one score column each.
func writePDFTable(w io.Writer, title string, header []string, rows [][]string) error {
	widths := make([]float64, len(header))
	for i := range widths {
		switch i {
		case 0:
			widths[i] = 70
		case 1:
			widths[i] = 30
		default:
			widths[i] = 40
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range header {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
