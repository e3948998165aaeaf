// Package paritycheck compares the rule-based ingredient parser against a
// prompt-driven one and reports where their output diverges.
package paritycheck

import (
	"mealplanner/internal/ingredients"
)

// FieldDiff is one field that differs at an index.
type FieldDiff struct {
	Field string `json:"field"`
	Left  any    `json:"left"`
	Right any    `json:"right"`
}

// IndexDiff describes the differences at one position. MissingIn names the
// side that has no record at Index; Fields is empty in that case.
type IndexDiff struct {
	Index     int         `json:"index"`
	MissingIn string      `json:"missing_in,omitempty"`
	Fields    []FieldDiff `json:"fields,omitempty"`
}

// Diff is the field-by-field comparison of two parse results.
type Diff struct {
	Left           string      `json:"left"`
	Right          string      `json:"right"`
	LeftLen        int         `json:"left_len"`
	RightLen       int         `json:"right_len"`
	LengthMismatch bool        `json:"length_mismatch"`
	Indexes        []IndexDiff `json:"indexes,omitempty"`
}

// Empty reports whether both sides agreed completely.
func (d Diff) Empty() bool {
	return !d.LengthMismatch && len(d.Indexes) == 0
}

// Compare diffs quantity, unit, item and notes at every index. Categories are
// not compared since every parser fills them through the same classifier.
func Compare(leftName string, left []ingredients.ParsedIngredient, rightName string, right []ingredients.ParsedIngredient) Diff {
	d := Diff{
		Left:           leftName,
		Right:          rightName,
		LeftLen:        len(left),
		RightLen:       len(right),
		LengthMismatch: len(left) != len(right),
	}

	for i := 0; i < max(len(left), len(right)); i++ {
		if i >= len(left) {
			d.Indexes = append(d.Indexes, IndexDiff{Index: i, MissingIn: leftName})
			continue
		}
		if i >= len(right) {
			d.Indexes = append(d.Indexes, IndexDiff{Index: i, MissingIn: rightName})
			continue
		}
		if fields := compareFields(left[i], right[i]); len(fields) > 0 {
			d.Indexes = append(d.Indexes, IndexDiff{Index: i, Fields: fields})
		}
	}
	return d
}

func compareFields(l, r ingredients.ParsedIngredient) []FieldDiff {
	var out []FieldDiff
	if l.Quantity != r.Quantity {
		out = append(out, FieldDiff{Field: "quantity", Left: l.Quantity, Right: r.Quantity})
	}
	if l.Unit != r.Unit {
		out = append(out, FieldDiff{Field: "unit", Left: l.Unit, Right: r.Unit})
	}
	if l.Item != r.Item {
		out = append(out, FieldDiff{Field: "item", Left: l.Item, Right: r.Item})
	}
	if l.Notes != r.Notes {
		out = append(out, FieldDiff{Field: "notes", Left: l.Notes, Right: r.Notes})
	}
	return out
}
