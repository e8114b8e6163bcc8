// Package export writes a filtered, sorted list view to an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"evadmin/backend/libs/listview"
	"evadmin/backend/services/admin-service/internal/catalog"
)

// MaxRows caps the number of records written to one workbook.
const MaxRows = 10000

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name for an entity.
func Filename(entity string) string {
	return entity + ".xlsx"
}

// Write reads one snapshot of res with q's filter and sort, capped at
// MaxRows, and writes it to a sheet named after the entity. It returns the
// number of data rows written.
func Write(ctx context.Context, w io.Writer, res catalog.Resource, q listview.Query) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := res.Name()
	if _, err := f.NewSheet(sheet); err != nil {
		return 0, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return 0, err
	}
	f.SetActiveSheet(index)

	if err := writeHeader(f, sheet, res); err != nil {
		return 0, err
	}

	items, err := res.ListAll(ctx, q, MaxRows)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", sheet, err)
	}
	written := 0
	for _, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, written+2)
		if err != nil {
			return written, err
		}
		row := res.Values(item)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return written, fmt.Errorf("write row %d: %w", written+2, err)
		}
		written++
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return written, fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return written, fmt.Errorf("write workbook: %w", err)
	}
	return written, nil
}

func writeHeader(f *excelize.File, sheet string, res catalog.Resource) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	cols := res.Columns()
	titles := make([]any, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	if err := f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(cols) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
