package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"warehouse-inventory-api/internal/inventory"
	"warehouse-inventory-api/internal/model"
)

// ErrInvalidReference is wrapped by every reference load validation failure.
var ErrInvalidReference = errors.New("invalid reference row")

// LoadResult summarizes a bulk reference load.
type LoadResult struct {
	Table    model.ReferenceTable `json:"table"`
	Mode     model.LoadMode       `json:"mode"`
	Received int                  `json:"received"`
	Stored   int                  `json:"stored"`
}

// LoadMappings normalizes, validates and stores box mappings, then reloads the index.
// Duplicate box ids collapse to the last row.
func (s *InventoryService) LoadMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) (*LoadResult, error) {
	clean := make([]model.BoxMapping, 0, len(rows))
	for i, m := range rows {
		m.BoxID = inventory.Normalize(m.BoxID)
		m.ItemCode = inventory.Normalize(m.ItemCode)
		if m.BoxID == "" {
			return nil, fmt.Errorf("%w: row %d: box_id is required", ErrInvalidReference, i)
		}
		if m.Quantity < 0 {
			return nil, fmt.Errorf("%w: row %d: quantity must not be negative", ErrInvalidReference, i)
		}
		clean = append(clean, m)
	}
	clean = keepLast(clean, func(m model.BoxMapping) string { return m.BoxID })

	if err := s.refs.SaveMappings(ctx, mode, clean); err != nil {
		return nil, fmt.Errorf("failed to save mappings: %w", err)
	}
	return s.afterLoad(ctx, model.TableMappings, mode, len(rows), len(clean))
}

// LoadItems normalizes and stores item master rows, then reloads the index.
func (s *InventoryService) LoadItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) (*LoadResult, error) {
	clean := make([]model.ItemMaster, 0, len(rows))
	for i, it := range rows {
		it.ItemCode = inventory.Normalize(it.ItemCode)
		if it.ItemCode == "" {
			return nil, fmt.Errorf("%w: row %d: item_code is required", ErrInvalidReference, i)
		}
		clean = append(clean, it)
	}
	clean = keepLast(clean, func(it model.ItemMaster) string { return it.ItemCode })

	if err := s.refs.SaveItems(ctx, mode, clean); err != nil {
		return nil, fmt.Errorf("failed to save items: %w", err)
	}
	return s.afterLoad(ctx, model.TableItems, mode, len(rows), len(clean))
}

// LoadAliases normalizes and stores alias rows, then reloads the index.
func (s *InventoryService) LoadAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) (*LoadResult, error) {
	clean := make([]model.AliasEntry, 0, len(rows))
	for i, a := range rows {
		a.AliasCode = inventory.Normalize(a.AliasCode)
		a.BoxID = inventory.Normalize(a.BoxID)
		a.ItemCode = inventory.Normalize(a.ItemCode)
		if a.AliasCode == "" || a.BoxID == "" {
			return nil, fmt.Errorf("%w: row %d: alias_code and box_id are required", ErrInvalidReference, i)
		}
		clean = append(clean, a)
	}
	clean = keepLast(clean, func(a model.AliasEntry) string { return a.AliasCode })

	if err := s.refs.SaveAliases(ctx, mode, clean); err != nil {
		return nil, fmt.Errorf("failed to save aliases: %w", err)
	}
	return s.afterLoad(ctx, model.TableAliases, mode, len(rows), len(clean))
}

func (s *InventoryService) afterLoad(ctx context.Context, table model.ReferenceTable, mode model.LoadMode, received, stored int) (*LoadResult, error) {
	log.Printf("[InventoryService] Loaded %s (%s) - received:%d, stored:%d", table, mode, received, stored)

	if err := s.ReloadReferences(ctx); err != nil {
		return nil, err
	}
	return &LoadResult{Table: table, Mode: mode, Received: received, Stored: stored}, nil
}

// keepLast drops earlier rows whose key appears again later, keeping first-seen order.
func keepLast[T any](rows []T, key func(T) string) []T {
	last := make(map[string]int, len(rows))
	for i, r := range rows {
		last[key(r)] = i
	}

	out := make([]T, 0, len(last))
	for i, r := range rows {
		if last[key(r)] == i {
			out = append(out, r)
		}
	}
	return out
}
