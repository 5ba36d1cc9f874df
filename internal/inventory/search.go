package inventory

import (
	"strings"

	"warehouse-inventory-api/internal/model"
)

// Field selects which column a search looks at.
type Field string

const (
	FieldAll      Field = "ALL"
	FieldItemCode Field = "ITEM_CODE"
	FieldSpec     Field = "SPEC"
	FieldBoxID    Field = "BOX_ID"
)

// ParseField parses a field name; the empty string means FieldAll.
func ParseField(s string) (Field, bool) {
	switch f := Field(Normalize(s)); f {
	case "":
		return FieldAll, true
	case FieldAll, FieldItemCode, FieldSpec, FieldBoxID:
		return f, true
	}
	return "", false
}

// Match reports whether a row satisfies the query on the given field.
// Both sides are normalized; exact compares equality, otherwise containment.
func Match(row model.InventoryRow, field Field, query string, exact bool) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}

	test := func(value string) bool {
		v := Normalize(value)
		if exact {
			return v == q
		}
		return strings.Contains(v, q)
	}

	switch field {
	case FieldItemCode:
		return test(row.ItemCode)
	case FieldSpec:
		return test(row.Spec)
	case FieldBoxID:
		return test(row.BoxID)
	default:
		return test(row.ItemCode) || test(row.Spec) || test(row.BoxID)
	}
}

// Search returns the rows matching the query, preserving order.
func Search(rows []model.InventoryRow, field Field, query string, exact bool) []model.InventoryRow {
	out := make([]model.InventoryRow, 0, len(rows))
	for _, row := range rows {
		if Match(row, field, query, exact) {
			out = append(out, row)
		}
	}
	return out
}
