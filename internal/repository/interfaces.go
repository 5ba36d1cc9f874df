package repository

import (
	"context"
	"errors"

	"warehouse-inventory-api/internal/model"
)

// ErrDuplicateSeq is returned by Append when an event with the same seq already exists.
var ErrDuplicateSeq = errors.New("event sequence already exists")

// EventRepository is the append-only inventory log.
// There is deliberately no update or delete.
type EventRepository interface {
	// Append stores one accepted event.
	Append(ctx context.Context, event model.Event) error

	// ListAll returns the whole log ordered by seq.
	ListAll(ctx context.Context) ([]model.Event, error)

	// ListByBox returns the events of one box ordered by seq.
	ListByBox(ctx context.Context, boxID string) ([]model.Event, error)

	// ListSince returns events with seq greater than afterSeq, ordered by seq.
	ListSince(ctx context.Context, afterSeq int64) ([]model.Event, error)

	// MaxSeq returns the highest stored seq, or 0 for an empty log.
	MaxSeq(ctx context.Context) (int64, error)

	// GetStats returns statistics about the event store.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// ReferenceRepository stores the box mapping, item master and alias tables.
// Rows are keyed (box_id, item_code, alias_code); saving an existing key overwrites it.
type ReferenceRepository interface {
	// Load returns every reference row.
	Load(ctx context.Context) (model.ReferenceTables, error)

	// SaveMappings writes box mappings. LoadReplace clears the table first.
	SaveMappings(ctx context.Context, mode model.LoadMode, rows []model.BoxMapping) error

	// SaveItems writes item master rows.
	SaveItems(ctx context.Context, mode model.LoadMode, rows []model.ItemMaster) error

	// SaveAliases writes alias rows.
	SaveAliases(ctx context.Context, mode model.LoadMode, rows []model.AliasEntry) error

	// GetStats returns row counts per table.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
