package record

// Top-level section names of a BRF annual-report record.
const (
	SectionPropertyInfo    = "property_info"
	SectionIncomeStatement = "income_statement"
	SectionBalanceSheet    = "balance_sheet"
	SectionCosts           = "costs"
	SectionGovernance      = "governance"
	SectionMaintenanceInfo = "maintenance_info"
	SectionMetadata        = "extraction_metadata"
)

// CostCategories is the fixed list of annual cost categories extracted per
// report. Each appears under costs.<category> and, after repair, mirrored
// under income_statement.operating_costs.<category>.
var CostCategories = []string{
	"heating_costs",
	"water_costs",
	"electricity_costs",
	"cleaning_costs",
	"insurance_costs",
	"repair_costs",
	"management_costs",
	"property_tax_costs",
}

// ScalarPaths is the fixed schema the merge step iterates. Merging is driven
// by this enumeration, not by whatever paths a pass happened to populate.
var ScalarPaths = buildScalarPaths()

// ListPaths are the known list-valued fields, merged by item count rather
// than per-field confidence.
var ListPaths = []string{
	"governance.board_members",
	"maintenance_info.historical",
	"maintenance_info.planned",
}

// ThresholdExemptSections are never redacted by confidence thresholding.
var ThresholdExemptSections = map[string]bool{
	SectionMetadata:        true,
	SectionMaintenanceInfo: true,
}

func buildScalarPaths() []string {
	paths := []string{
		"property_info.property_designation",
		"property_info.address",
		"property_info.total_area",
		"property_info.residential_area",
		"property_info.commercial_area",
		"property_info.apartment_count",
		"property_info.year_built",
		"property_info.tax_value",
		"income_statement.total_revenue",
		"income_statement.total_expenses",
		"income_statement.profit_loss",
		"income_statement.comparison_year",
		"balance_sheet.assets.current",
		"balance_sheet.assets.fixed",
		"balance_sheet.assets.total",
		"balance_sheet.liabilities.short_term",
		"balance_sheet.liabilities.long_term",
		"balance_sheet.liabilities.total",
		"balance_sheet.equity",
	}
	for _, cat := range CostCategories {
		paths = append(paths, "costs."+cat)
		paths = append(paths, "income_statement.operating_costs."+cat)
	}
	return paths
}
