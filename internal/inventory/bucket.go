package inventory

import (
	"sort"
	"strings"

	"warehouse-inventory-api/internal/model"
)

// LocationBucket derives the occupancy key of a location.
// "rack-level-slot" becomes "rack-slot", "rack-level" is kept, and a
// location without hyphens (an aisle, a dock) is returned as is.
func LocationBucket(location string) string {
	loc := strings.TrimSpace(location)
	parts := strings.Split(loc, "-")
	switch {
	case len(parts) >= 3:
		return parts[0] + "-" + parts[2]
	case len(parts) == 2:
		return parts[0] + "-" + parts[1]
	default:
		return loc
	}
}

// Bucketable reports whether a location takes part in bucket aggregation.
func Bucketable(location string) bool {
	loc := strings.TrimSpace(location)
	return loc != "" && loc != model.UnspecifiedLocation
}

// Occupancy counts boxes in the warehouse per location bucket.
func Occupancy(records []model.SnapshotRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Status != model.StatusInWarehouse || !Bucketable(rec.Location) {
			continue
		}
		counts[LocationBucket(rec.Location)]++
	}
	return counts
}

// HighlightBuckets returns the sorted, distinct buckets occupied by rows.
func HighlightBuckets(rows []model.InventoryRow) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, row := range rows {
		if !Bucketable(row.Location) {
			continue
		}
		b := LocationBucket(row.Location)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
