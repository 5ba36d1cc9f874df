package repository

import (
	"context"

	"warehouse-inventory-api/internal/model"
)

const (
	postgresUpsertMapping = `
		INSERT INTO box_mappings (box_id, item_code, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (box_id) DO UPDATE SET
			item_code = EXCLUDED.item_code,
			quantity = EXCLUDED.quantity`

	postgresUpsertItem = `
		INSERT INTO item_master (item_code, name, spec, supplier, category, barcode) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_code) DO UPDATE SET
			name = EXCLUDED.name,
			spec = EXCLUDED.spec,
			supplier = EXCLUDED.supplier,
			category = EXCLUDED.category,
			barcode = EXCLUDED.barcode`

	postgresUpsertAlias = `
		INSERT INTO box_aliases (alias_code, box_id, item_code, spec) VALUES ($1, $2, $3, $4)
		ON CONFLICT (alias_code) DO UPDATE SET
			box_id = EXCLUDED.box_id,
			item_code = EXCLUDED.item_code,
			spec = EXCLUDED.spec`
)

// Load returns every reference row.
func (s *PostgresStore) Load(ctx context.Context) (model.ReferenceTables, error) {
	return loadReferences(ctx, s.db)
}

// SaveMappings writes box mappings.
func (s *PostgresStore) SaveMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) error {
	return saveRows(ctx, s.db, "box_mappings", mode, postgresUpsertMapping, len(rows), mappingArgs(rows))
}

// SaveItems writes item master rows.
func (s *PostgresStore) SaveItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) error {
	return saveRows(ctx, s.db, "item_master", mode, postgresUpsertItem, len(rows), itemArgs(rows))
}

// SaveAliases writes alias rows.
func (s *PostgresStore) SaveAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) error {
	return saveRows(ctx, s.db, "box_aliases", mode, postgresUpsertAlias, len(rows), aliasArgs(rows))
}
