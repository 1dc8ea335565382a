package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePageText_ValidResponse(t *testing.T) {
	text := "```json\n" + `{
		"data": {
			"income_statement": {"revenue": 3788000, "expenses": 0},
			"property_info": {"designation": "Björnen 4", "municipality": ""}
		},
		"confidence_scores": {
			"income_statement.revenue": 0.92,
			"property_info.designation": 85
		},
		"analysis": "Resultaträkning page"
	}` + "\n```"

	ext := DecodePageText(text, "qwen-vl-max")
	require.NotNil(t, ext)
	assert.False(t, ext.ParseError)
	assert.Equal(t, "qwen-vl-max", ext.ModelUsed)
	assert.Equal(t, "Resultaträkning page", ext.Analysis)

	assert.Equal(t, float64(3788000), ext.Fields["income_statement.revenue"])
	assert.Equal(t, "Björnen 4", ext.Fields["property_info.designation"])

	// Zero numbers and empty strings are placeholders, not extractions.
	assert.NotContains(t, ext.Fields, "income_statement.expenses")
	assert.NotContains(t, ext.Fields, "property_info.municipality")

	// Fractional scores are normalized to the 0-100 scale.
	assert.InDelta(t, 92.0, ext.ConfidenceScores["income_statement.revenue"], 0.001)
	assert.Equal(t, 85.0, ext.ConfidenceScores["property_info.designation"])
}

func TestDecodePageText_ListsKeptWhole(t *testing.T) {
	text := `{
		"data": {
			"governance": {"board_members": ["Anna Svensson", "Erik Lund"]}
		},
		"confidence_scores": {},
		"analysis": ""
	}`

	ext := DecodePageText(text, "test-model")
	require.False(t, ext.ParseError)
	list, ok := ext.Fields["governance.board_members"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestDecodePageText_Garbage(t *testing.T) {
	ext := DecodePageText("I could not read this page at all.", "test-model")
	require.NotNil(t, ext)
	assert.True(t, ext.ParseError)
	assert.Empty(t, ext.Fields)
	assert.Equal(t, "test-model", ext.ModelUsed)
}

func TestDecodePageText_MissingDataKey(t *testing.T) {
	ext := DecodePageText(`{"analysis": "blank page"}`, "test-model")
	require.NotNil(t, ext)
	assert.True(t, ext.ParseError)
}

func TestDecodePageText_ProseAroundObject(t *testing.T) {
	text := `Sure! Here is the JSON: {"data": {"costs": {"heating_costs": 120000}}, "confidence_scores": {"costs.heating_costs": 0.8}, "analysis": ""}`
	ext := DecodePageText(text, "test-model")
	require.False(t, ext.ParseError)
	assert.Equal(t, float64(120000), ext.Fields["costs.heating_costs"])
	assert.InDelta(t, 80.0, ext.ConfidenceScores["costs.heating_costs"], 0.001)
}
