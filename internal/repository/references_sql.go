package repository

import (
	"context"
	"database/sql"
	"fmt"

	"warehouse-inventory-api/internal/model"
)

// Reference reads are plain SELECTs and work unchanged on every SQL backend.
const (
	selectMappings = `SELECT box_id, item_code, quantity FROM box_mappings ORDER BY box_id`
	selectItems    = `SELECT item_code, name, spec, supplier, category, barcode FROM item_master ORDER BY item_code`
	selectAliases  = `SELECT box_id, item_code, spec, alias_code FROM box_aliases ORDER BY alias_code`
)

// loadReferences reads all three reference tables from db.
func loadReferences(ctx context.Context, db *sql.DB) (model.ReferenceTables, error) {
	var tables model.ReferenceTables

	rows, err := db.QueryContext(ctx, selectMappings)
	if err != nil {
		return tables, fmt.Errorf("failed to query box mappings: %w", err)
	}
	tables.Mappings = make([]model.BoxMapping, 0)
	for rows.Next() {
		var m model.BoxMapping
		if err := rows.Scan(&m.BoxID, &m.ItemCode, &m.Quantity); err != nil {
			rows.Close()
			return tables, fmt.Errorf("failed to scan box mapping: %w", err)
		}
		tables.Mappings = append(tables.Mappings, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return tables, fmt.Errorf("failed to iterate box mappings: %w", err)
	}

	rows, err = db.QueryContext(ctx, selectItems)
	if err != nil {
		return tables, fmt.Errorf("failed to query item master: %w", err)
	}
	tables.Items = make([]model.ItemMaster, 0)
	for rows.Next() {
		var it model.ItemMaster
		if err := rows.Scan(&it.ItemCode, &it.Name, &it.Spec, &it.Supplier, &it.Category, &it.Barcode); err != nil {
			rows.Close()
			return tables, fmt.Errorf("failed to scan item: %w", err)
		}
		tables.Items = append(tables.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return tables, fmt.Errorf("failed to iterate item master: %w", err)
	}

	rows, err = db.QueryContext(ctx, selectAliases)
	if err != nil {
		return tables, fmt.Errorf("failed to query aliases: %w", err)
	}
	tables.Aliases = make([]model.AliasEntry, 0)
	for rows.Next() {
		var a model.AliasEntry
		if err := rows.Scan(&a.BoxID, &a.ItemCode, &a.Spec, &a.AliasCode); err != nil {
			rows.Close()
			return tables, fmt.Errorf("failed to scan alias: %w", err)
		}
		tables.Aliases = append(tables.Aliases, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return tables, fmt.Errorf("failed to iterate aliases: %w", err)
	}

	return tables, nil
}

// saveRows writes n rows of one table inside a transaction using a prepared upsert.
// With LoadReplace the table is emptied first, in the same transaction.
func saveRows(ctx context.Context, db *sql.DB, table string, mode model.LoadMode, upsert string, n int, args func(i int) []interface{}) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if mode == model.LoadReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if n > 0 {
		stmt, err := tx.PrepareContext(ctx, upsert)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i := 0; i < n; i++ {
			if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
				return fmt.Errorf("failed to upsert %s row %d: %w", table, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func mappingArgs(rows []model.BoxMapping) func(i int) []interface{} {
	return func(i int) []interface{} {
		return []interface{}{rows[i].BoxID, rows[i].ItemCode, rows[i].Quantity}
	}
}

func itemArgs(rows []model.ItemMaster) func(i int) []interface{} {
	return func(i int) []interface{} {
		it := rows[i]
		return []interface{}{it.ItemCode, it.Name, it.Spec, it.Supplier, it.Category, it.Barcode}
	}
}

func aliasArgs(rows []model.AliasEntry) func(i int) []interface{} {
	return func(i int) []interface{} {
		return []interface{}{rows[i].AliasCode, rows[i].BoxID, rows[i].ItemCode, rows[i].Spec}
	}
}
