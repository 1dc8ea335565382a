package merge_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brfiq/internal/merge"
	"brfiq/internal/record"
)

func makeInput(ocr, vision map[string]any, scores map[string]float64) merge.Input {
	ocrRec := record.New()
	record.Fold(ocrRec, ocr)
	visionRec := record.New()
	record.Fold(visionRec, vision)
	return merge.Input{
		OCR:    ocrRec,
		Vision: visionRec,
		Scores: record.FromMap(scores),
	}
}

func TestMerge_HigherConfidenceWins(t *testing.T) {
	in := makeInput(
		map[string]any{"property_info.total_area": 120.0},
		map[string]any{"property_info.total_area": 125.0},
		map[string]float64{
			"ocr.property_info.total_area":    75,
			"vision.property_info.total_area": 60,
		},
	)

	out := merge.Merge(in)

	assert.Equal(t, 120.0, record.Get(out.Merged, "property_info.total_area"))
	assert.Equal(t, 75.0, out.Scores.Get("property_info.total_area", 0))
	assert.Equal(t, merge.ProvenanceOCR, out.Provenance["property_info.total_area"])
}

func TestMerge_VisionWinsOnHigherConfidence(t *testing.T) {
	in := makeInput(
		map[string]any{"income_statement.total_revenue": 3700000.0},
		map[string]any{"income_statement.total_revenue": 3788000.0},
		map[string]float64{
			"ocr.income_statement.total_revenue":    55,
			"vision.income_statement.total_revenue": 90,
		},
	)

	out := merge.Merge(in)

	assert.Equal(t, 3788000.0, record.Get(out.Merged, "income_statement.total_revenue"))
	assert.Equal(t, 90.0, out.Scores.Get("income_statement.total_revenue", 0))
	assert.Equal(t, merge.ProvenanceVision, out.Provenance["income_statement.total_revenue"])
}

func TestMerge_TieBreaksToOCR(t *testing.T) {
	in := makeInput(
		map[string]any{"costs.heating_costs": 185000.0},
		map[string]any{"costs.heating_costs": 190000.0},
		map[string]float64{
			"ocr.costs.heating_costs":    80,
			"vision.costs.heating_costs": 80,
		},
	)

	out := merge.Merge(in)

	assert.Equal(t, 185000.0, record.Get(out.Merged, "costs.heating_costs"))
	assert.Equal(t, merge.ProvenanceOCR, out.Provenance["costs.heating_costs"])
}

func TestMerge_BothNilYieldsNilAndZeroConfidence(t *testing.T) {
	// Stray per-source entries for an absent field must not leak through.
	in := makeInput(nil, nil, map[string]float64{
		"ocr.balance_sheet.equity":    88,
		"vision.balance_sheet.equity": 91,
	})

	out := merge.Merge(in)

	assert.Nil(t, record.Get(out.Merged, "balance_sheet.equity"))
	assert.Equal(t, 0.0, out.Scores.Get("balance_sheet.equity", 0))
	assert.NotContains(t, out.Provenance, "balance_sheet.equity")
}

func TestMerge_SingleSourcePassThrough(t *testing.T) {
	in := makeInput(
		nil,
		map[string]any{"income_statement.total_revenue": 3788000.0},
		nil, // vision provided no explicit score → source default 80
	)

	out := merge.Merge(in)

	assert.Equal(t, 3788000.0, record.Get(out.Merged, "income_statement.total_revenue"))
	assert.Equal(t, 80.0, out.Scores.Get("income_statement.total_revenue", 0))
	assert.Equal(t, merge.ProvenanceVisionOnly, out.Provenance["income_statement.total_revenue"])
}

func TestMerge_OCROnlyUsesOCRDefault(t *testing.T) {
	in := makeInput(
		map[string]any{"property_info.year_built": "1962"},
		nil,
		nil,
	)

	out := merge.Merge(in)

	assert.Equal(t, "1962", record.Get(out.Merged, "property_info.year_built"))
	assert.Equal(t, 70.0, out.Scores.Get("property_info.year_built", 0))
	assert.Equal(t, merge.ProvenanceOCROnly, out.Provenance["property_info.year_built"])
}

func TestMerge_AgreementProvenance(t *testing.T) {
	in := makeInput(
		map[string]any{"property_info.apartment_count": 48.0},
		map[string]any{"property_info.apartment_count": 48.0},
		map[string]float64{
			"ocr.property_info.apartment_count":    70,
			"vision.property_info.apartment_count": 85,
		},
	)

	out := merge.Merge(in)

	assert.Equal(t, 48.0, record.Get(out.Merged, "property_info.apartment_count"))
	assert.Equal(t, 85.0, out.Scores.Get("property_info.apartment_count", 0))
	assert.Equal(t, merge.ProvenanceAgree, out.Provenance["property_info.apartment_count"])
}

func TestMerge_ListPicksLonger(t *testing.T) {
	ocrRec := record.New()
	record.Set(ocrRec, "governance.board_members", []any{"Anna Lind"})
	visionRec := record.New()
	record.Set(visionRec, "governance.board_members", []any{"Anna Lind", "Erik Berg", "Maria Ek"})

	out := merge.Merge(merge.Input{OCR: ocrRec, Vision: visionRec, Scores: record.NewConfidenceStore()})

	list, ok := record.Get(out.Merged, "governance.board_members").([]any)
	require.True(t, ok)
	assert.Len(t, list, 3)
	assert.Equal(t, merge.ProvenanceVision, out.Provenance["governance.board_members"])
}

func TestMerge_Idempotent(t *testing.T) {
	in := makeInput(
		map[string]any{
			"property_info.total_area":       120.0,
			"income_statement.total_revenue": 3700000.0,
			"costs.heating_costs":            185000.0,
		},
		map[string]any{
			"property_info.total_area":       125.0,
			"income_statement.profit_loss":   120000.0,
			"costs.water_costs":              42000.0,
		},
		map[string]float64{
			"ocr.property_info.total_area":    75,
			"vision.property_info.total_area": 60,
		},
	)

	first := merge.Merge(in)
	second := merge.Merge(in)

	firstJSON, err := json.Marshal(first.Merged)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second.Merged)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, first.Scores.Snapshot(), second.Scores.Snapshot())
	assert.Equal(t, first.Provenance, second.Provenance)
}

func TestMerge_RetainsPerSourceScores(t *testing.T) {
	in := makeInput(
		map[string]any{"property_info.total_area": 120.0},
		map[string]any{"property_info.total_area": 125.0},
		map[string]float64{
			"ocr.property_info.total_area":    75,
			"vision.property_info.total_area": 60,
		},
	)

	out := merge.Merge(in)

	// The losing source's score stays available under its prefixed key.
	assert.Equal(t, 60.0, out.Scores.Get("vision.property_info.total_area", 0))
	assert.Equal(t, 75.0, out.Scores.Get("ocr.property_info.total_area", 0))
}
