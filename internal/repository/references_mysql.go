package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"warehouse-inventory-api/internal/model"
)

const (
	mysqlUpsertMapping = `
		INSERT INTO box_mappings (box_id, item_code, quantity) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			item_code = VALUES(item_code),
			quantity = VALUES(quantity)`

	mysqlUpsertItem = `
		INSERT INTO item_master (item_code, name, spec, supplier, category, barcode) VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			spec = VALUES(spec),
			supplier = VALUES(supplier),
			category = VALUES(category),
			barcode = VALUES(barcode)`

	mysqlUpsertAlias = `
		INSERT INTO box_aliases (alias_code, box_id, item_code, spec) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			box_id = VALUES(box_id),
			item_code = VALUES(item_code),
			spec = VALUES(spec)`
)

// MySQLReferenceRepository implements ReferenceRepository using MySQL.
// Used when the reference tables live in a shared ERP-side database.
type MySQLReferenceRepository struct {
	db *sql.DB
}

// NewMySQLReferenceRepository wraps an opened MySQL connection.
func NewMySQLReferenceRepository(db *sql.DB) *MySQLReferenceRepository {
	return &MySQLReferenceRepository{db: db}
}

// EnsureSchema creates the reference tables if they do not exist.
func (r *MySQLReferenceRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS box_mappings (
			box_id VARCHAR(128) NOT NULL PRIMARY KEY,
			item_code VARCHAR(128) NOT NULL,
			quantity INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS item_master (
			item_code VARCHAR(128) NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL DEFAULT '',
			spec VARCHAR(255) NOT NULL DEFAULT '',
			supplier VARCHAR(255) NOT NULL DEFAULT '',
			category VARCHAR(255) NOT NULL DEFAULT '',
			barcode VARCHAR(128) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS box_aliases (
			alias_code VARCHAR(128) NOT NULL PRIMARY KEY,
			box_id VARCHAR(128) NOT NULL,
			item_code VARCHAR(128) NOT NULL DEFAULT '',
			spec VARCHAR(255) NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create reference table: %w", err)
		}
	}
	log.Println("[MySQLReferenceRepository] Schema ready")
	return nil
}

// Load returns every reference row.
func (r *MySQLReferenceRepository) Load(ctx context.Context) (model.ReferenceTables, error) {
	return loadReferences(ctx, r.db)
}

// SaveMappings writes box mappings.
func (r *MySQLReferenceRepository) SaveMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) error {
	return saveRows(ctx, r.db, "box_mappings", mode, mysqlUpsertMapping, len(rows), mappingArgs(rows))
}

// SaveItems writes item master rows.
func (r *MySQLReferenceRepository) SaveItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) error {
	return saveRows(ctx, r.db, "item_master", mode, mysqlUpsertItem, len(rows), itemArgs(rows))
}

// SaveAliases writes alias rows.
func (r *MySQLReferenceRepository) SaveAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) error {
	return saveRows(ctx, r.db, "box_aliases", mode, mysqlUpsertAlias, len(rows), aliasArgs(rows))
}

// GetStats returns row counts per table.
func (r *MySQLReferenceRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	for _, table := range []string{"box_mappings", "item_master", "box_aliases"} {
		var n int64
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = n
	}

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":   dbStats.OpenConnections,
		"in_use": dbStats.InUse,
		"idle":   dbStats.Idle,
	}
	return stats, nil
}

// Close closes the database connection.
func (r *MySQLReferenceRepository) Close() error {
	return r.db.Close()
}

var _ ReferenceRepository = (*MySQLReferenceRepository)(nil)
