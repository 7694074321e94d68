package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"roastlog/internal/analytics"
	roasts "roastlog/internal/roasts/domain"
)

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// BuildRoastPDF renders the roast curve report as a PDF.
func BuildRoastPDF(roast *roasts.Roast) ([]byte, error) {
	series := roast.DenseSeries()
	summary := analytics.Summarize(series)
	rates := analytics.RateOfRise(series)
	rateAt := make(map[int]float64, len(rates))
	for _, rate := range rates {
		rateAt[rate.BoundaryIndex] = rate.RatePerMinute
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Roast Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Roast: %s", roast.ID))
	pdf.Ln(5)
	if roast.Label != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Label: %s", roast.Label))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Roasted: %s", roast.RoastedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Target Duration: %d min, sampled every %d s", roast.DurationMinutes, roast.IntervalSeconds))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Charge Temperature: %.1f", roast.StartingReading))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Readings: %d of %d boundaries", summary.ReadingCount, len(series)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Peak Temperature: %.1f at %s", summary.MaxValue, formatClock(summary.MaxSeconds)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Final Reading: %.1f at %s", summary.FinalValue, formatClock(summary.FinalSeconds)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Peak Rate of Rise: %.1f deg/min", summary.PeakRatePerMinute))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Boundary", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Temperature", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Rate (deg/min)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range series {
		temperature := "-"
		if point.Value != nil {
			temperature = fmt.Sprintf("%.1f", *point.Value)
		}
		rate := ""
		if value, ok := rateAt[point.BoundaryIndex]; ok {
			rate = fmt.Sprintf("%.1f", value)
		}
		pdf.CellFormat(30, 6, formatClock(point.Seconds), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", point.BoundaryIndex), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, temperature, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, rate, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRoastXLSX renders the roast curve report as an XLSX workbook.
func BuildRoastXLSX(roast *roasts.Roast) ([]byte, error) {
	series := roast.DenseSeries()
	summary := analytics.Summarize(series)

	f := excelize.NewFile()
	summarySheet := "summary"
	curveSheet := "curve"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(curveSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Roast Report")
	_ = f.SetCellValue(summarySheet, "A3", "Roast")
	_ = f.SetCellValue(summarySheet, "B3", roast.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Label")
	_ = f.SetCellValue(summarySheet, "B4", roast.Label)
	_ = f.SetCellValue(summarySheet, "A5", "Roasted")
	_ = f.SetCellValue(summarySheet, "B5", roast.RoastedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Target Duration (min)")
	_ = f.SetCellValue(summarySheet, "B6", roast.DurationMinutes)
	_ = f.SetCellValue(summarySheet, "A7", "Sampling Interval (s)")
	_ = f.SetCellValue(summarySheet, "B7", roast.IntervalSeconds)
	_ = f.SetCellValue(summarySheet, "A8", "Charge Temperature")
	_ = f.SetCellValue(summarySheet, "B8", roast.StartingReading)
	_ = f.SetCellValue(summarySheet, "A9", "Peak Temperature")
	_ = f.SetCellValue(summarySheet, "B9", summary.MaxValue)
	_ = f.SetCellValue(summarySheet, "A10", "Peak Rate of Rise (deg/min)")
	_ = f.SetCellValue(summarySheet, "B10", summary.PeakRatePerMinute)

	_ = f.SetCellValue(curveSheet, "A1", "Seconds")
	_ = f.SetCellValue(curveSheet, "B1", "Boundary")
	_ = f.SetCellValue(curveSheet, "C1", "Temperature")
	for i, point := range series {
		row := i + 2
		_ = f.SetCellValue(curveSheet, fmt.Sprintf("A%d", row), point.Seconds)
		_ = f.SetCellValue(curveSheet, fmt.Sprintf("B%d", row), point.BoundaryIndex)
		if point.Value != nil {
			_ = f.SetCellValue(curveSheet, fmt.Sprintf("C%d", row), *point.Value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
