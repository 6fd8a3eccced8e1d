package render

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zkjiang/autoabstract/internal/record"
)

// XLSXContentType is the MIME type served with XLSX exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX returns the same two-row table as the CSV export as an XLSX
// workbook, for tooling that chokes on quoted CSV.
func ExportXLSX(rec *record.Record, now time.Time) ([]byte, string, error) {
	f := excelize.NewFile()
	const sheet = "Clinical Data"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, key := range rec.Keys() {
		headerCell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, headerCell, key)
		dataCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, dataCell, flattenCell(rec, key))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("xlsx write: %w", err)
	}

	name := fmt.Sprintf("clinical_data_%s.xlsx", now.UTC().Format("2006-01-02"))
	return buf.Bytes(), name, nil
}
