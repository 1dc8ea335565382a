package vision

import (
	"encoding/json"
	"fmt"

	"brfiq/internal/port"
)

// extractionEnvelope models the JSON the prompt asks the model to produce.
type extractionEnvelope struct {
	Data             map[string]any     `json:"data"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Analysis         string             `json:"analysis"`
}

// DecodePageText turns raw model output text into a PageExtraction. Fence
// stripping and JSON-object extraction are applied before parsing; a response
// that still fails to parse or validate yields a ParseError extraction with
// no fields, never an error — a bad page must not fail the pass.
func DecodePageText(text, model string) *port.PageExtraction {
	cleaned := StripMarkdownFences(text)
	if obj := ExtractJSONObject(cleaned); obj != "" {
		cleaned = obj
	}

	if err := ValidateResponse([]byte(cleaned)); err != nil {
		return &port.PageExtraction{
			Fields:           map[string]any{},
			ConfidenceScores: map[string]float64{},
			Analysis:         fmt.Sprintf("parse_error: %v", err),
			ParseError:       true,
			ModelUsed:        model,
		}
	}

	var env extractionEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return &port.PageExtraction{
			Fields:           map[string]any{},
			ConfidenceScores: map[string]float64{},
			Analysis:         fmt.Sprintf("parse_error: %v", err),
			ParseError:       true,
			ModelUsed:        model,
		}
	}

	fields := make(map[string]any)
	flattenData(env.Data, "", fields)

	scores := make(map[string]float64, len(env.ConfidenceScores))
	for path, score := range env.ConfidenceScores {
		scores[path] = normalizeScore(score)
	}

	return &port.PageExtraction{
		Fields:           fields,
		ConfidenceScores: scores,
		Analysis:         env.Analysis,
		ModelUsed:        model,
	}
}

// flattenData walks the nested data tree into flat field paths. Lists stay
// whole; zero numbers are treated as "not on this page" since the prompt's
// skeleton uses 0 as the placeholder.
func flattenData(m map[string]any, prefix string, out map[string]any) {
	for key, val := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch t := val.(type) {
		case nil:
		case map[string]any:
			flattenData(t, path, out)
		case []any:
			if len(t) > 0 {
				out[path] = t
			}
		case float64:
			if t != 0 {
				out[path] = t
			}
		case string:
			if t != "" && t != "null" {
				out[path] = t
			}
		default:
			out[path] = t
		}
	}
}

// normalizeScore maps 0.0–1.0 scores onto the 0–100 scale used internally.
func normalizeScore(score float64) float64 {
	if score <= 1.0 {
		return score * 100
	}
	return score
}
