package review

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

const (
	summarySheet = "Invoice"
	itemsSheet   = "Line Items"
)

// ExportXLSX writes the committed baseline as a workbook. The draft is never
// exported; uncommitted edits stay out of the file.
func (s *Session) ExportXLSX(w io.Writer) error {
	if s.status != Loaded {
		return ErrNotLoaded
	}
	start := time.Now()
	inv := s.Baseline()

	f, err := buildWorkbook(inv)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"invoice_id", inv.ID,
		"rows", len(inv.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func buildWorkbook(inv *entity.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	// NewFile starts with "Sheet1"; rename it so the summary is the first tab.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(activeIndex)

	view := Render(inv)
	set := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	set(summarySheet, 1, 1, "Invoice ID")
	set(summarySheet, 2, 1, inv.ID)
	for i, r := range view.Rows {
		set(summarySheet, 1, i+2, r.Label)
		set(summarySheet, 2, i+2, r.Value)
	}

	headers := []string{"Description", "Quantity", "Unit Price", "Amount"}
	for i, h := range headers {
		set(itemsSheet, i+1, 1, h)
	}
	for i, it := range inv.Items {
		row := i + 2
		set(itemsSheet, 1, row, it.Description)
		set(itemsSheet, 2, row, it.Quantity)
		set(itemsSheet, 3, row, it.UnitPrice)
		set(itemsSheet, 4, row, it.Amount)
	}

	// Widen a few columns
	_ = f.SetColWidth(summarySheet, "A", "A", 20)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)
	_ = f.SetColWidth(itemsSheet, "A", "A", 40)
	_ = f.SetColWidth(itemsSheet, "B", "D", 14)

	return f, nil
}
