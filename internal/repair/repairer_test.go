package repair_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brfiq/internal/record"
	"brfiq/internal/repair"
)

func TestRepair_MirrorsOperatingCosts(t *testing.T) {
	rec := record.New()
	record.Set(rec, "costs.heating_costs", 185000.0)
	record.Set(rec, "costs.water_costs", 42000.0)
	scores := record.FromMap(map[string]float64{
		"costs.heating_costs": 75,
		"costs.water_costs":   80,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.Equal(t, 185000.0, record.Get(rec, "income_statement.operating_costs.heating_costs"))
	assert.Equal(t, 42000.0, record.Get(rec, "income_statement.operating_costs.water_costs"))
	assert.Equal(t, 75.0, scores.Get("income_statement.operating_costs.heating_costs", 0))
}

func TestRepair_DerivesTotalExpensesFromOperatingCosts(t *testing.T) {
	rec := record.New()
	record.Set(rec, "costs.heating_costs", 100.0)
	record.Set(rec, "costs.water_costs", 50.0)
	scores := record.FromMap(map[string]float64{
		"costs.heating_costs": 80,
		"costs.water_costs":   80,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.Equal(t, 150.0, record.Get(rec, "income_statement.total_expenses"))
	assert.Equal(t, float64(repair.DerivedConfidence), scores.Get("income_statement.total_expenses", 0))
}

func TestRepair_DoesNotOverwriteExtractedTotalExpenses(t *testing.T) {
	rec := record.New()
	record.Set(rec, "income_statement.total_expenses", 3500000.0)
	record.Set(rec, "costs.heating_costs", 100.0)
	scores := record.FromMap(map[string]float64{
		"income_statement.total_expenses": 85,
		"costs.heating_costs":             80,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.Equal(t, 3500000.0, record.Get(rec, "income_statement.total_expenses"))
	assert.Equal(t, 85.0, scores.Get("income_statement.total_expenses", 0))
}

func TestRepair_DerivesProfitLossAfterExpenses(t *testing.T) {
	// total_expenses is itself derived first, then profit_loss uses it.
	rec := record.New()
	record.Set(rec, "income_statement.total_revenue", 300.0)
	record.Set(rec, "costs.heating_costs", 100.0)
	record.Set(rec, "costs.water_costs", 50.0)
	scores := record.FromMap(map[string]float64{
		"income_statement.total_revenue": 85,
		"costs.heating_costs":            80,
		"costs.water_costs":              80,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.Equal(t, 150.0, record.Get(rec, "income_statement.total_expenses"))
	assert.Equal(t, 150.0, record.Get(rec, "income_statement.profit_loss"))
	assert.Equal(t, float64(repair.DerivedConfidence), scores.Get("income_statement.profit_loss", 0))
}

func TestRepair_NoDerivationWhenSumNotPositive(t *testing.T) {
	rec := record.New()
	record.Set(rec, "costs.heating_costs", -100.0)
	record.Set(rec, "costs.water_costs", 100.0)
	scores := record.FromMap(map[string]float64{
		"costs.heating_costs": 80,
		"costs.water_costs":   80,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.Nil(t, record.Get(rec, "income_statement.total_expenses"))
}

func TestRepair_RedactsLowConfidenceFields(t *testing.T) {
	rec := record.New()
	record.Set(rec, "property_info.tax_value", 500.0)
	scores := record.FromMap(map[string]float64{
		"property_info.tax_value": 60,
	})

	repair.NewRepairer(repair.Config{ConfidenceThreshold: 70}).Repair(rec, scores)

	assert.Nil(t, record.Get(rec, "property_info.tax_value"))
}

func TestRepair_DerivedFieldSurvivesDefaultThreshold(t *testing.T) {
	rec := record.New()
	record.Set(rec, "costs.heating_costs", 100.0)
	scores := record.FromMap(map[string]float64{"costs.heating_costs": 80})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	// derived confidence 60 > default threshold 50
	assert.Equal(t, 100.0, record.Get(rec, "income_statement.total_expenses"))
}

func TestRepair_DerivedFieldRedactedAboveSixty(t *testing.T) {
	rec := record.New()
	record.Set(rec, "costs.heating_costs", 100.0)
	scores := record.FromMap(map[string]float64{"costs.heating_costs": 80})

	repair.NewRepairer(repair.Config{ConfidenceThreshold: 61}).Repair(rec, scores)

	assert.Nil(t, record.Get(rec, "income_statement.total_expenses"))
}

func TestRepair_MaintenanceInfoExemptFromThreshold(t *testing.T) {
	rec := record.New()
	record.Set(rec, "maintenance_info.planned", []any{"stambyte 2027"})
	record.Set(rec, "property_info.total_area", 120.0)
	scores := record.FromMap(map[string]float64{
		"maintenance_info.planned": 10,
		"property_info.total_area": 10,
	})

	repair.NewRepairer(repair.Config{}).Repair(rec, scores)

	assert.NotNil(t, record.Get(rec, "maintenance_info.planned"))
	assert.Nil(t, record.Get(rec, "property_info.total_area"))
}

func TestRepair_ThresholdMonotonicity(t *testing.T) {
	build := func() (record.Record, *record.ConfidenceStore) {
		rec := record.New()
		record.Set(rec, "property_info.total_area", 120.0)
		record.Set(rec, "income_statement.total_revenue", 300.0)
		record.Set(rec, "costs.heating_costs", 100.0)
		return rec, record.FromMap(map[string]float64{
			"property_info.total_area":       55,
			"income_statement.total_revenue": 85,
			"costs.heating_costs":            80,
		})
	}

	low, lowScores := build()
	repair.NewRepairer(repair.Config{ConfidenceThreshold: 50}).Repair(low, lowScores)
	high, highScores := build()
	repair.NewRepairer(repair.Config{ConfidenceThreshold: 70}).Repair(high, highScores)

	// Every path surviving the high threshold also survives the low one.
	for _, path := range record.ScalarPaths {
		if record.Get(high, path) != nil {
			assert.NotNil(t, record.Get(low, path), "path %s removed by lower threshold", path)
		}
	}
	assert.NotNil(t, record.Get(low, "property_info.total_area"))
	assert.Nil(t, record.Get(high, "property_info.total_area"))
}

func TestRepairer_StepOrder(t *testing.T) {
	r := repair.NewRepairer(repair.Config{})
	assert.Equal(t, []string{
		"mirror_operating_costs",
		"derive_total_expenses",
		"derive_profit_loss",
		"threshold_low_confidence",
	}, r.Steps())
}
