// Package report renders metrics as downloadable spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/types"
	"github.com/xuri/excelize/v2"
)

// SheetTimeSeries is the name of the time series worksheet
const SheetTimeSeries = "Time Series"

// WriteTimeSeries writes one row per day with a column per metric field.
// Row 1 holds the headers and the workspace is stored as the document subject.
func WriteTimeSeries(w io.Writer, workspaceID string, series []types.MetricsTimeSeries) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTimeSeries); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, 0, len(types.MetricFields)+1)
	header = append(header, "date")
	for _, field := range types.MetricFields {
		header = append(header, field.Name)
	}
	if err := f.SetSheetRow(SheetTimeSeries, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, day := range series {
		row := make([]interface{}, 0, len(header))
		row = append(row, day.Date)
		for _, field := range types.MetricFields {
			row = append(row, field.Value(day.Metrics))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetTimeSeries, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", day.Date, err)
		}
	}

	if err := f.SetPanes(SheetTimeSeries, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Sales metrics time series",
		Subject: workspaceID,
	}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
