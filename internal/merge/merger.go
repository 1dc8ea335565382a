// Package merge reconciles the two extraction passes into a single record.
//
// The decision is made independently per known field path: the value from the
// higher-confidence source wins, with ties resolved in favor of the OCR pass.
// The merge is pure — identical inputs always produce identical output,
// including the tie-break direction.
package merge

import (
	"brfiq/internal/domain"
	"brfiq/internal/record"
)

// Provenance labels recorded per merged field.
const (
	ProvenanceAgree      = "agree"
	ProvenanceOCR        = "ocr"
	ProvenanceVision     = "vision"
	ProvenanceOCROnly    = "ocr_only"
	ProvenanceVisionOnly = "vision_only"
)

// Input carries the two pass records and the combined confidence store.
// Pass scores are keyed "ocr.<path>" and "vision.<path>".
type Input struct {
	OCR    record.Record
	Vision record.Record
	Scores *record.ConfidenceStore
}

// Output is the merged record plus the post-merge confidence store and the
// per-field provenance map. The output store keeps the per-source scores
// under their prefixed keys and adds the winning score under the bare path;
// fields that merged to nil get no bare entry, so Get(path, 0) reports 0.
type Output struct {
	Merged     record.Record
	Scores     *record.ConfidenceStore
	Provenance map[string]string
}

// Merge reconciles the OCR and vision records field by field over the fixed
// schema. The known path set drives the iteration, not whatever paths the
// passes happened to populate.
func Merge(in Input) *Output {
	out := &Output{
		Merged:     record.New(),
		Scores:     record.FromMap(in.Scores.Snapshot()),
		Provenance: make(map[string]string),
	}

	for _, path := range record.ScalarPaths {
		mergeScalar(in, out, path)
	}
	for _, path := range record.ListPaths {
		mergeList(in, out, path)
	}

	return out
}

// mergeScalar applies the decision table for a single scalar field path.
func mergeScalar(in Input, out *Output, path string) {
	ocrVal := record.Get(in.OCR, path)
	visionVal := record.Get(in.Vision, path)

	ocrConf := in.Scores.Get("ocr."+path, sourceDefault(domain.SourceOCR, ocrVal))
	visionConf := in.Scores.Get("vision."+path, sourceDefault(domain.SourceVision, visionVal))

	switch {
	case ocrVal == nil && visionVal == nil:
		record.Set(out.Merged, path, nil)

	case visionVal == nil:
		record.Set(out.Merged, path, ocrVal)
		out.Scores.Record(path, ocrConf)
		out.Provenance[path] = ProvenanceOCROnly

	case ocrVal == nil:
		record.Set(out.Merged, path, visionVal)
		out.Scores.Record(path, visionConf)
		out.Provenance[path] = ProvenanceVisionOnly

	default:
		// Both passes produced a value: higher confidence wins, ties to OCR.
		if ocrConf >= visionConf {
			record.Set(out.Merged, path, ocrVal)
			out.Scores.Record(path, ocrConf)
			out.Provenance[path] = ProvenanceOCR
		} else {
			record.Set(out.Merged, path, visionVal)
			out.Scores.Record(path, visionConf)
			out.Provenance[path] = ProvenanceVision
		}
		if ocrVal == visionVal {
			out.Provenance[path] = ProvenanceAgree
		}
	}
}

// mergeList picks the list with more items, the same rule the reference
// implementation applies to invoice line items. Ties go to OCR.
func mergeList(in Input, out *Output, path string) {
	ocrList := asList(record.Get(in.OCR, path))
	visionList := asList(record.Get(in.Vision, path))

	if len(ocrList) == 0 && len(visionList) == 0 {
		return
	}

	if len(visionList) > len(ocrList) {
		record.Set(out.Merged, path, visionList)
		out.Scores.Record(path, in.Scores.Get("vision."+path, domain.DefaultConfidence[domain.SourceVision]))
		out.Provenance[path] = ProvenanceVision
		return
	}
	record.Set(out.Merged, path, ocrList)
	out.Scores.Record(path, in.Scores.Get("ocr."+path, domain.DefaultConfidence[domain.SourceOCR]))
	out.Provenance[path] = ProvenanceOCR
}

// sourceDefault returns the source-default confidence for a present value,
// or 0 when the pass produced nothing for the field.
func sourceDefault(src domain.Source, val any) float64 {
	if val == nil {
		return 0
	}
	return domain.DefaultConfidence[src]
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
