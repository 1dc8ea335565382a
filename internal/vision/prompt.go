package vision

import "strings"

// BuildAnnualReportPrompt returns the extraction prompt for one page of a
// Swedish BRF annual report. The model is asked for a single JSON object with
// nested data, a flat confidence map, and free-text analysis notes.
func BuildAnnualReportPrompt() string {
	var b strings.Builder

	b.WriteString("You are extracting structured data from one page of a Swedish housing cooperative (bostadsrättsförening) annual report.\n\n")
	b.WriteString("Return ONLY a JSON object with this exact structure (no markdown fences, no commentary outside the JSON):\n\n")
	b.WriteString(`{
  "data": {
    "property_info": {
      "property_designation": "fastighetsbeteckning or null",
      "address": "street address or null",
      "total_area": 0,
      "residential_area": 0,
      "commercial_area": 0,
      "apartment_count": 0,
      "year_built": "YYYY or null",
      "tax_value": 0
    },
    "income_statement": {
      "total_revenue": 0,
      "total_expenses": 0,
      "profit_loss": 0,
      "comparison_year": "YYYY or null"
    },
    "balance_sheet": {
      "assets": {"current": 0, "fixed": 0, "total": 0},
      "liabilities": {"short_term": 0, "long_term": 0, "total": 0},
      "equity": 0
    },
    "costs": {
      "heating_costs": 0,
      "water_costs": 0,
      "electricity_costs": 0,
      "cleaning_costs": 0,
      "insurance_costs": 0,
      "repair_costs": 0,
      "management_costs": 0,
      "property_tax_costs": 0
    },
    "governance": {"board_members": []},
    "maintenance_info": {"historical": [], "planned": []}
  },
  "confidence_scores": {"<field path like costs.heating_costs>": 0.0},
  "analysis": "short notes about what this page contains"
}`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Use null for any field not present on this page. Never guess.\n")
	b.WriteString("- Amounts are in SEK as plain numbers: \"1 234 567 kr\" becomes 1234567.\n")
	b.WriteString("- Swedish decimal commas become dots: \"120,5\" becomes 120.5.\n")
	b.WriteString("- confidence_scores uses values from 0.0 to 1.0 and only lists fields you actually extracted.\n")
	b.WriteString("- Report figures for the report year, not the comparison year column.\n")

	return b.String()
}
