package record

import "strings"

// Record is the nested tree produced by one extraction pass: section name →
// field name → value, with sub-sections as nested maps. Leaves are nil or a
// plain scalar (string or float64); list-valued fields (board members,
// maintenance entries) are the only exception.
type Record map[string]any

// New returns an empty Record.
func New() Record {
	return Record{}
}

// Set writes value at the dotted path, creating intermediate maps as needed.
// It never deletes: paths are only ever added or overwritten.
func Set(rec Record, path string, value any) {
	segments := strings.Split(path, ".")
	cur := map[string]any(rec)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
}

// Get reads the value at the dotted path. A missing segment anywhere along the
// path yields nil, not an error: callers treat nil as "unknown".
func Get(rec Record, path string) any {
	segments := strings.Split(path, ".")
	var cur any = map[string]any(rec)
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Fold merges a flat page result (field path → value) into the record,
// skipping nil values so a later page never erases an earlier page's finding.
// Non-nil values overwrite: within a single pass the last page to match a
// pattern wins.
func Fold(rec Record, fields map[string]any) {
	for path, value := range fields {
		if value == nil {
			continue
		}
		Set(rec, path, value)
	}
}

// CountValues returns the number of non-nil scalar leaves in the record.
// Lists count as one value.
func CountValues(rec Record) int {
	return countLeaves(map[string]any(rec))
}

func countLeaves(m map[string]any) int {
	n := 0
	for _, v := range m {
		switch t := v.(type) {
		case nil:
		case map[string]any:
			n += countLeaves(t)
		default:
			n++
		}
	}
	return n
}
