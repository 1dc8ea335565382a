package repair

import (
	"strings"

	"brfiq/internal/record"
)

// mirrorOperatingCosts copies every known non-nil cost category from costs.*
// into income_statement.operating_costs.*, a denormalized convenience view.
// The category's confidence travels with it.
type mirrorOperatingCosts struct{}

func (mirrorOperatingCosts) Key() string { return "mirror_operating_costs" }

func (mirrorOperatingCosts) Apply(rec record.Record, scores *record.ConfidenceStore, _ Config) {
	for _, cat := range record.CostCategories {
		src := "costs." + cat
		val := record.Get(rec, src)
		if val == nil {
			continue
		}
		dst := "income_statement.operating_costs." + cat
		record.Set(rec, dst, val)
		if score := scores.Get(src, 0); score > 0 {
			scores.Record(dst, score)
		}
	}
}

// deriveTotalExpenses fills income_statement.total_expenses from the sum of
// operating costs when no source extracted it directly. Only a strictly
// positive sum counts.
type deriveTotalExpenses struct{}

func (deriveTotalExpenses) Key() string { return "derive_total_expenses" }

func (deriveTotalExpenses) Apply(rec record.Record, scores *record.ConfidenceStore, _ Config) {
	if record.Get(rec, "income_statement.total_expenses") != nil {
		return
	}

	sum := 0.0
	found := false
	for _, cat := range record.CostCategories {
		val := record.Get(rec, "income_statement.operating_costs."+cat)
		if f, ok := toFloat(val); ok {
			sum += f
			found = true
		}
	}
	if !found || sum <= 0 {
		return
	}

	record.Set(rec, "income_statement.total_expenses", sum)
	scores.Record("income_statement.total_expenses", DerivedConfidence)
}

// deriveProfitLoss computes profit_loss = total_revenue − total_expenses when
// both operands are known and no source extracted the result directly.
type deriveProfitLoss struct{}

func (deriveProfitLoss) Key() string { return "derive_profit_loss" }

func (deriveProfitLoss) Apply(rec record.Record, scores *record.ConfidenceStore, _ Config) {
	if record.Get(rec, "income_statement.profit_loss") != nil {
		return
	}
	revenue, okR := toFloat(record.Get(rec, "income_statement.total_revenue"))
	expenses, okE := toFloat(record.Get(rec, "income_statement.total_expenses"))
	if !okR || !okE {
		return
	}

	record.Set(rec, "income_statement.profit_loss", revenue-expenses)
	scores.Record("income_statement.profit_loss", DerivedConfidence)
}

// thresholdLowConfidence redacts every non-nil leaf whose stored confidence
// is strictly below the configured threshold. Runs last, so freshly derived
// fields are subject to the same bar. Metadata and maintenance notes are
// never redacted.
type thresholdLowConfidence struct{}

func (thresholdLowConfidence) Key() string { return "threshold_low_confidence" }

func (thresholdLowConfidence) Apply(rec record.Record, scores *record.ConfidenceStore, cfg Config) {
	redactWalk(rec, map[string]any(rec), "", scores, cfg.ConfidenceThreshold)
}

func redactWalk(rec record.Record, m map[string]any, prefix string, scores *record.ConfidenceStore, threshold float64) {
	for key, val := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		section := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			section = path[:i]
		}
		if record.ThresholdExemptSections[section] {
			continue
		}
		switch t := val.(type) {
		case nil:
		case map[string]any:
			redactWalk(rec, t, path, scores, threshold)
		default:
			if scores.Get(path, 0) < threshold {
				record.Set(rec, path, nil)
				scores.Delete(path)
			}
		}
	}
}
