// Package repair normalizes a merged record: mirrors cost categories into the
// income statement, derives missing aggregates, and redacts low-confidence
// fields. Steps run in a fixed order because later steps depend on values
// written by earlier ones.
package repair

import (
	"log"

	"brfiq/internal/record"
)

// DerivedConfidence is recorded for fields computed from other fields rather
// than read from a source. Lower than any direct extraction default.
const DerivedConfidence = 60

// DefaultThreshold is the confidence below which merged values are redacted.
const DefaultThreshold = 50

// Config holds repair settings.
type Config struct {
	ConfidenceThreshold float64
}

// Step is a single repair pass over the merged record.
type Step interface {
	Key() string
	Apply(rec record.Record, scores *record.ConfidenceStore, cfg Config)
}

// Repairer applies the registered steps in order.
type Repairer struct {
	steps []Step
	cfg   Config
}

// NewRepairer creates a Repairer with the built-in step sequence:
// cost mirroring → total_expenses derivation → profit_loss derivation →
// confidence thresholding.
func NewRepairer(cfg Config) *Repairer {
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = DefaultThreshold
	}
	return &Repairer{
		cfg: cfg,
		steps: []Step{
			mirrorOperatingCosts{},
			deriveTotalExpenses{},
			deriveProfitLoss{},
			thresholdLowConfidence{},
		},
	}
}

// Repair mutates the merged record and its confidence store in place.
func (r *Repairer) Repair(rec record.Record, scores *record.ConfidenceStore) {
	for _, step := range r.steps {
		step.Apply(rec, scores, r.cfg)
	}
	log.Printf("repair.Repairer: applied %d steps (threshold=%.0f)", len(r.steps), r.cfg.ConfidenceThreshold)
}

// Steps returns the keys of the registered steps in application order.
func (r *Repairer) Steps() []string {
	keys := make([]string, len(r.steps))
	for i, s := range r.steps {
		keys[i] = s.Key()
	}
	return keys
}

// toFloat coerces a record leaf to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
