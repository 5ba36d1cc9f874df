// Package inventory is the state-reconciliation core of the warehouse service.
//
// It resolves scanned codes to box identifiers, joins reference data onto
// boxes, folds the append-only event log into a current snapshot, decides
// whether a requested movement is legal, and filters the enriched snapshot
// for listing and rack occupancy. Nothing in this package performs I/O;
// callers load the log and reference tables and persist accepted events.
package inventory
