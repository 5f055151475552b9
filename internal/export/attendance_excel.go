// Package export renders attendance day views as xlsx workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/models"
	"github.com/xuri/excelize/v2"
)

var header = []string{"NIS", "Nama", "Sesi", "Status", "Waktu"}

// DailyWorkbook builds a one-sheet workbook for the given day's records.
func DailyWorkbook(day time.Time, records []models.AttendanceRecord, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := day.Format("2006-01-02")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(header)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, bold)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for r, rec := range records {
		row := []string{
			rec.StudentNIS,
			rec.StudentName,
			rec.SessionLabel,
			string(rec.Status),
			rec.RecordedAt.In(loc).Format("15:04:05"),
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// Width heuristic: header length vs the first rows.
	for c := 1; c <= len(header); c++ {
		w := float64(len(header[c-1])) * 1.2
		if w < 12 {
			w = 12
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}
	return f, nil
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}
