package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Status is the derived state of a box.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusInWarehouse Status = "IN_WAREHOUSE"
	StatusCheckedOut  Status = "CHECKED_OUT"
)

// SnapshotRecord is the current state of one box, derived from its latest event.
type SnapshotRecord struct {
	BoxID      string    `json:"box_id"`
	Status     Status    `json:"status"`
	Location   string    `json:"location"`
	Pallet     string    `json:"pallet"`
	Seq        int64     `json:"seq"`
	LastAction Action    `json:"last_action,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Unknown fills every enrichment field that has no reference data behind it.
const Unknown = "UNKNOWN"

// Quantity is a box quantity that may be unknown.
type Quantity struct {
	Value int
	Known bool
}

// KnownQuantity returns a known quantity.
func KnownQuantity(n int) Quantity {
	return Quantity{Value: n, Known: true}
}

func (q Quantity) String() string {
	if !q.Known {
		return Unknown
	}
	return strconv.Itoa(q.Value)
}

// MarshalJSON writes a number, or the Unknown sentinel.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Known {
		return json.Marshal(Unknown)
	}
	return json.Marshal(q.Value)
}

// UnmarshalJSON accepts a number or the Unknown sentinel.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*q = KnownQuantity(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("quantity must be a number or %q", Unknown)
	}
	if s != Unknown {
		return fmt.Errorf("quantity must be a number or %q, got %q", Unknown, s)
	}
	*q = Quantity{}
	return nil
}

// Enrichment holds the reference fields joined onto a box.
type Enrichment struct {
	ItemCode string   `json:"item_code"`
	Quantity Quantity `json:"quantity"`
	Name     string   `json:"name"`
	Spec     string   `json:"spec"`
	Supplier string   `json:"supplier"`
	Category string   `json:"category"`
	Barcode  string   `json:"barcode"`

	// Dangling is set when the mapping names an item missing from the item master.
	Dangling bool `json:"dangling,omitempty"`
}

// InventoryRow is a snapshot record with its enrichment, as listed and searched.
type InventoryRow struct {
	SnapshotRecord
	Enrichment
}
