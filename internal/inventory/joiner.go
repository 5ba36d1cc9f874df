package inventory

import "warehouse-inventory-api/internal/model"

// unknownEnrichment is the result for a box without a mapping row.
func unknownEnrichment() model.Enrichment {
	return model.Enrichment{
		ItemCode: model.Unknown,
		Name:     model.Unknown,
		Spec:     model.Unknown,
		Supplier: model.Unknown,
		Category: model.Unknown,
		Barcode:  model.Unknown,
	}
}

// Enrich left-joins box → mapping → item master. Missing data never drops
// the box: absent fields carry the model.Unknown sentinel.
func (ix *ReferenceIndex) Enrich(boxID string) model.Enrichment {
	e := unknownEnrichment()

	m, ok := ix.Mapping(Normalize(boxID))
	if !ok {
		return e
	}
	e.ItemCode = orUnknown(m.ItemCode)
	e.Quantity = model.KnownQuantity(m.Quantity)

	it, ok := ix.Item(m.ItemCode)
	if !ok {
		e.Dangling = true
		return e
	}
	e.Name = orUnknown(it.Name)
	e.Spec = orUnknown(it.Spec)
	e.Supplier = orUnknown(it.Supplier)
	e.Category = orUnknown(it.Category)
	e.Barcode = orUnknown(it.Barcode)
	return e
}

// EnrichAll joins reference data onto each record, preserving order.
func (ix *ReferenceIndex) EnrichAll(records []model.SnapshotRecord) []model.InventoryRow {
	rows := make([]model.InventoryRow, len(records))
	for i, rec := range records {
		rows[i] = model.InventoryRow{SnapshotRecord: rec, Enrichment: ix.Enrich(rec.BoxID)}
	}
	return rows
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}
