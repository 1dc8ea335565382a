// Package xlsxexport renders a key-figures workbook over a set of extracted
// reports, one row per document.
package xlsxexport

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"brfiq/internal/domain"
	"brfiq/internal/record"
)

const sheetName = "Key figures"

// keyFigureColumns pairs a header with the merged-record path it reads.
// An empty path means the value comes from the document row itself.
var keyFigureColumns = []struct {
	header string
	path   string
}{
	{"Filename", ""},
	{"Property designation", "property_info.property_designation"},
	{"Year built", "property_info.year_built"},
	{"Apartments", "property_info.apartment_count"},
	{"Total area", "property_info.total_area"},
	{"Revenue", "income_statement.total_revenue"},
	{"Expenses", "income_statement.total_expenses"},
	{"Result", "income_statement.profit_loss"},
	{"Heating", "costs.heating_costs"},
	{"Water", "costs.water_costs"},
	{"Electricity", "costs.electricity_costs"},
	{"Cleaning", "costs.cleaning_costs"},
	{"Insurance", "costs.insurance_costs"},
	{"Repairs", "costs.repair_costs"},
	{"Management", "costs.management_costs"},
	{"Property tax", "costs.property_tax_costs"},
	{"Equity", "balance_sheet.equity"},
	{"Avg confidence", ""},
}

// Write renders the workbook for docs to w.
func Write(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetName)

	for col, c := range keyFigureColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, c.header); err != nil {
			return fmt.Errorf("writing header %q: %w", c.header, err)
		}
	}

	for i, doc := range docs {
		var rec record.Record
		if err := json.Unmarshal(doc.MergedRecord, &rec); err != nil {
			return fmt.Errorf("unmarshaling record for %s: %w", doc.Filename, err)
		}
		for col, c := range keyFigureColumns {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			var value any
			switch c.header {
			case "Filename":
				value = doc.Filename
			case "Avg confidence":
				value = doc.AvgConfidence
			default:
				value = record.Get(rec, c.path)
			}
			if value == nil {
				continue
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
