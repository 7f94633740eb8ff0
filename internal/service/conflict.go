package service

import (
	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// conflictReport folds the occupancy cells returned by the repository
// into a single Conflict error naming the distinct table and slot ids
// that are already taken.  Each occupancy row is a (table, slot) cell
// held by one active booking on the requested date, so a non-empty
// input always means the request must be rejected.
//
// The occupancy query matches tables and slots through the same booking
// row: a booking occupies the cross product of its own table set and
// slot set, and a cell conflicts only when a single existing booking
// covers both the table and the slot.  Requesting table 1 with slot B
// does not conflict with a booking of table 1 with slot A.
func conflictReport(occ []repository.Occupancy) error {
	if len(occ) == 0 {
		return nil
	}
	tables := make([]uint64, 0, len(occ))
	slots := make([]uint64, 0, len(occ))
	for _, o := range occ {
		tables = append(tables, o.TableID)
		slots = append(slots, o.SlotID)
	}
	return domain.BookingConflict(repository.SortIDs(tables), repository.SortIDs(slots))
}
