package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brfiq/internal/record"
)

func TestSet_CreatesIntermediateMaps(t *testing.T) {
	rec := record.New()

	record.Set(rec, "balance_sheet.assets.total", 5000000.0)

	bs, ok := rec["balance_sheet"].(map[string]any)
	assert.True(t, ok)
	assets, ok := bs["assets"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, 5000000.0, assets["total"])
}

func TestSet_OverwritesExistingLeaf(t *testing.T) {
	rec := record.New()

	record.Set(rec, "property_info.total_area", 120.0)
	record.Set(rec, "property_info.total_area", 125.0)

	assert.Equal(t, 125.0, record.Get(rec, "property_info.total_area"))
}

func TestGet_MissingSegmentReturnsNil(t *testing.T) {
	rec := record.New()
	record.Set(rec, "property_info.total_area", 120.0)

	assert.Nil(t, record.Get(rec, "property_info.apartment_count"))
	assert.Nil(t, record.Get(rec, "income_statement.total_revenue"))
	assert.Nil(t, record.Get(rec, "income_statement.operating_costs.heating_costs"))
}

func TestGet_ScalarInPathReturnsNil(t *testing.T) {
	rec := record.New()
	record.Set(rec, "property_info.total_area", 120.0)

	// total_area is a leaf; descending through it must not panic.
	assert.Nil(t, record.Get(rec, "property_info.total_area.nested"))
}

func TestFold_SkipsNilValues(t *testing.T) {
	rec := record.New()
	record.Set(rec, "income_statement.total_revenue", 3788000.0)

	record.Fold(rec, map[string]any{
		"income_statement.total_revenue": nil,
		"costs.heating_costs":            185000.0,
	})

	// nil from a later page never erases an earlier non-nil value
	assert.Equal(t, 3788000.0, record.Get(rec, "income_statement.total_revenue"))
	assert.Equal(t, 185000.0, record.Get(rec, "costs.heating_costs"))
}

func TestFold_LaterPageOverwritesNonNil(t *testing.T) {
	rec := record.New()
	record.Fold(rec, map[string]any{"costs.water_costs": 40000.0})
	record.Fold(rec, map[string]any{"costs.water_costs": 42000.0})

	assert.Equal(t, 42000.0, record.Get(rec, "costs.water_costs"))
}

func TestCountValues(t *testing.T) {
	rec := record.New()
	assert.Equal(t, 0, record.CountValues(rec))

	record.Set(rec, "property_info.total_area", 120.0)
	record.Set(rec, "property_info.property_designation", "Trädgården 1:17")
	record.Set(rec, "balance_sheet.assets.total", 5000000.0)
	record.Set(rec, "income_statement.profit_loss", nil)

	assert.Equal(t, 3, record.CountValues(rec))
}
