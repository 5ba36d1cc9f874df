package inventory

import (
	"strings"

	"warehouse-inventory-api/internal/model"
)

// Normalize trims and uppercases a code so that lookups are case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ReferenceIndex is a normalized, read-only view of the reference tables.
// It is built once per load and shared by concurrent readers.
type ReferenceIndex struct {
	mappings map[string]model.BoxMapping
	items    map[string]model.ItemMaster
	aliases  map[string]string
}

// NewReferenceIndex normalizes every key once and indexes the rows.
// Later rows win over earlier rows with the same key; rows without a key are skipped.
func NewReferenceIndex(t model.ReferenceTables) *ReferenceIndex {
	ix := &ReferenceIndex{
		mappings: make(map[string]model.BoxMapping, len(t.Mappings)),
		items:    make(map[string]model.ItemMaster, len(t.Items)),
		aliases:  make(map[string]string, len(t.Aliases)),
	}

	for _, m := range t.Mappings {
		id := Normalize(m.BoxID)
		if id == "" {
			continue
		}
		m.BoxID = id
		m.ItemCode = Normalize(m.ItemCode)
		ix.mappings[id] = m
	}

	for _, it := range t.Items {
		code := Normalize(it.ItemCode)
		if code == "" {
			continue
		}
		it.ItemCode = code
		ix.items[code] = it
	}

	for _, a := range t.Aliases {
		code := Normalize(a.AliasCode)
		owner := Normalize(a.BoxID)
		if code == "" || owner == "" {
			continue
		}
		ix.aliases[code] = owner
	}

	return ix
}

// Mapping returns the mapping row of a normalized box id.
func (ix *ReferenceIndex) Mapping(boxID string) (model.BoxMapping, bool) {
	if ix == nil {
		return model.BoxMapping{}, false
	}
	m, ok := ix.mappings[boxID]
	return m, ok
}

// Item returns the item master row of a normalized item code.
func (ix *ReferenceIndex) Item(itemCode string) (model.ItemMaster, bool) {
	if ix == nil {
		return model.ItemMaster{}, false
	}
	it, ok := ix.items[itemCode]
	return it, ok
}

// AliasOwner returns the box that owns a normalized alias code.
func (ix *ReferenceIndex) AliasOwner(aliasCode string) (string, bool) {
	if ix == nil {
		return "", false
	}
	id, ok := ix.aliases[aliasCode]
	return id, ok
}

// IndexStats reports the number of indexed rows per table.
type IndexStats struct {
	Mappings int `json:"mappings"`
	Items    int `json:"items"`
	Aliases  int `json:"aliases"`
}

// Stats returns row counts.
func (ix *ReferenceIndex) Stats() IndexStats {
	if ix == nil {
		return IndexStats{}
	}
	return IndexStats{
		Mappings: len(ix.mappings),
		Items:    len(ix.items),
		Aliases:  len(ix.aliases),
	}
}
