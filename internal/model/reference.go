package model

// BoxMapping links a box to the item it holds.
type BoxMapping struct {
	BoxID    string `json:"box_id"`
	ItemCode string `json:"item_code"`
	Quantity int    `json:"quantity"`
}

// ItemMaster describes an item.
type ItemMaster struct {
	ItemCode string `json:"item_code"`
	Name     string `json:"name"`
	Spec     string `json:"spec"`
	Supplier string `json:"supplier"`
	Category string `json:"category"`
	Barcode  string `json:"barcode"`
}

// AliasEntry maps a secondary scan code (for example a compressed label code)
// to the box that owns it.
type AliasEntry struct {
	BoxID     string `json:"box_id"`
	ItemCode  string `json:"item_code"`
	Spec      string `json:"spec"`
	AliasCode string `json:"alias_code"`
}

// ReferenceTables is a full set of reference rows as loaded from a store.
type ReferenceTables struct {
	Mappings []BoxMapping `json:"mappings"`
	Items    []ItemMaster `json:"items"`
	Aliases  []AliasEntry `json:"aliases"`
}

// ReferenceTable names a reference table for bulk loads.
type ReferenceTable string

const (
	TableMappings ReferenceTable = "mappings"
	TableItems    ReferenceTable = "items"
	TableAliases  ReferenceTable = "aliases"
)

// LoadMode selects how a bulk load is applied.
type LoadMode string

const (
	// LoadReplace drops existing rows of the table first.
	LoadReplace LoadMode = "replace"
	// LoadMerge upserts rows by key.
	LoadMerge LoadMode = "merge"
)
