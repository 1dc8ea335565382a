package textextract

import (
	"regexp"
	"strings"

	"brfiq/internal/domain"
)

// BaseConfidence is the heuristic confidence assigned to regex-extracted
// fields. Label matches with an explicit currency marker score slightly
// higher.
var BaseConfidence = domain.DefaultConfidence[domain.SourceOCR]

const currencyBonus = 5

// fieldPattern binds a flat field path to the Swedish label that introduces
// its value in report text.
type fieldPattern struct {
	path    string
	label   *regexp.Regexp
	numeric bool
}

var fieldPatterns = []fieldPattern{
	{"property_info.property_designation", regexp.MustCompile(`(?i)fastighetsbeteckning[:\s]+([A-ZÅÄÖ][\wÅÄÖåäö]*\s+\d+(?::\d+)?)`), false},
	{"property_info.total_area", regexp.MustCompile(`(?i)total\s*(?:yta|area)`), true},
	{"property_info.residential_area", regexp.MustCompile(`(?i)(?:bostadsyta|boarea)`), true},
	{"property_info.commercial_area", regexp.MustCompile(`(?i)(?:lokalyta|lokalarea)`), true},
	{"property_info.apartment_count", regexp.MustCompile(`(?i)antal\s+lägenheter`), true},
	{"property_info.year_built", regexp.MustCompile(`(?i)(?:byggår|byggnadsår|färdigställdes)`), true},
	{"property_info.tax_value", regexp.MustCompile(`(?i)taxeringsvärde`), true},
	{"income_statement.total_revenue", regexp.MustCompile(`(?i)(?:nettoomsättning|summa\s+(?:rörelse)?intäkter)`), true},
	{"income_statement.total_expenses", regexp.MustCompile(`(?i)summa\s+(?:rörelse)?kostnader`), true},
	{"income_statement.profit_loss", regexp.MustCompile(`(?i)årets\s+resultat`), true},
	{"balance_sheet.assets.fixed", regexp.MustCompile(`(?i)summa\s+anläggningstillgångar`), true},
	{"balance_sheet.assets.current", regexp.MustCompile(`(?i)summa\s+omsättningstillgångar`), true},
	{"balance_sheet.assets.total", regexp.MustCompile(`(?i)summa\s+tillgångar`), true},
	{"balance_sheet.liabilities.short_term", regexp.MustCompile(`(?i)(?:summa\s+)?kortfristiga\s+skulder`), true},
	{"balance_sheet.liabilities.long_term", regexp.MustCompile(`(?i)(?:summa\s+)?långfristiga\s+skulder`), true},
	{"balance_sheet.liabilities.total", regexp.MustCompile(`(?i)summa\s+skulder`), true},
	{"balance_sheet.equity", regexp.MustCompile(`(?i)summa\s+eget\s+kapital`), true},
	{"costs.heating_costs", regexp.MustCompile(`(?i)(?:uppvärmning|värmekostnad|fjärrvärme)`), true},
	{"costs.water_costs", regexp.MustCompile(`(?i)vatten(?:\s+och\s+avlopp)?`), true},
	{"costs.electricity_costs", regexp.MustCompile(`(?i)(?:elkostnad|elavgift|fastighetsel|\bel\b)`), true},
	{"costs.cleaning_costs", regexp.MustCompile(`(?i)städning`), true},
	{"costs.insurance_costs", regexp.MustCompile(`(?i)försäkring`), true},
	{"costs.repair_costs", regexp.MustCompile(`(?i)reparationer`), true},
	{"costs.management_costs", regexp.MustCompile(`(?i)förvaltning(?:sarvode)?`), true},
	{"costs.property_tax_costs", regexp.MustCompile(`(?i)fastighets(?:skatt|avgift)`), true},
}

var currencyMarker = regexp.MustCompile(`(?i)\b(?:kr|tkr|sek)\b`)

// Extractor pulls structured fields out of raw OCR text using label patterns
// for Swedish annual reports.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract scans OCR text line by line and returns flat field paths with
// values and heuristic confidence scores. The first match per field wins;
// annual reports state each figure once in the statements proper and again
// in notes, and the statement comes first.
func (e *Extractor) Extract(text string) (map[string]any, map[string]float64) {
	fields := make(map[string]any)
	scores := make(map[string]float64)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, fp := range fieldPatterns {
			if _, seen := fields[fp.path]; seen {
				continue
			}
			loc := fp.label.FindStringSubmatchIndex(line)
			if loc == nil {
				continue
			}
			if !fp.numeric {
				// capture group holds the value
				if len(loc) >= 4 && loc[2] >= 0 {
					fields[fp.path] = strings.TrimSpace(line[loc[2]:loc[3]])
					scores[fp.path] = BaseConfidence
				}
				continue
			}
			rest := line[loc[1]:]
			val, ok := firstNumber(rest)
			if !ok {
				continue
			}
			fields[fp.path] = val
			conf := BaseConfidence
			if currencyMarker.MatchString(rest) {
				conf += currencyBonus
			}
			scores[fp.path] = conf
		}
	}
	return fields, scores
}
