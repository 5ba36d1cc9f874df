package repository

import (
	"context"

	"warehouse-inventory-api/internal/model"
)

const (
	sqliteUpsertMapping = `
		INSERT INTO box_mappings (box_id, item_code, quantity) VALUES (?, ?, ?)
		ON CONFLICT(box_id) DO UPDATE SET
			item_code = excluded.item_code,
			quantity = excluded.quantity`

	sqliteUpsertItem = `
		INSERT INTO item_master (item_code, name, spec, supplier, category, barcode) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_code) DO UPDATE SET
			name = excluded.name,
			spec = excluded.spec,
			supplier = excluded.supplier,
			category = excluded.category,
			barcode = excluded.barcode`

	sqliteUpsertAlias = `
		INSERT INTO box_aliases (alias_code, box_id, item_code, spec) VALUES (?, ?, ?, ?)
		ON CONFLICT(alias_code) DO UPDATE SET
			box_id = excluded.box_id,
			item_code = excluded.item_code,
			spec = excluded.spec`
)

// Load returns every reference row.
func (s *SQLiteStore) Load(ctx context.Context) (model.ReferenceTables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return loadReferences(ctx, s.db)
}

// SaveMappings writes box mappings.
func (s *SQLiteStore) SaveMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRows(ctx, s.db, "box_mappings", mode, sqliteUpsertMapping, len(rows), mappingArgs(rows))
}

// SaveItems writes item master rows.
func (s *SQLiteStore) SaveItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRows(ctx, s.db, "item_master", mode, sqliteUpsertItem, len(rows), itemArgs(rows))
}

// SaveAliases writes alias rows.
func (s *SQLiteStore) SaveAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRows(ctx, s.db, "box_aliases", mode, sqliteUpsertAlias, len(rows), aliasArgs(rows))
}
