package shelfsync

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/mrlokans/shelfsync/internal/entities"
)

// TitleKey is the join key between shelf books and store records.
// Both sides go through the same normalization: trim and Unicode case fold.
func TitleKey(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// StoreIndex looks store records up by title key. When several records share
// a title the first one added wins; the others are kept in All so they can
// still be deleted.
type StoreIndex struct {
	byKey      map[string]entities.StoreRecord
	all        []entities.StoreRecord
	duplicates []entities.StoreRecord
}

// NewStoreIndex indexes records in the given order, skipping records without
// an id or a title.
func NewStoreIndex(records []entities.StoreRecord) *StoreIndex {
	idx := &StoreIndex{byKey: make(map[string]entities.StoreRecord, len(records))}
	for _, rec := range records {
		if rec.ID == "" || strings.TrimSpace(rec.Title) == "" {
			continue
		}
		idx.all = append(idx.all, rec)

		key := TitleKey(rec.Title)
		if _, exists := idx.byKey[key]; exists {
			idx.duplicates = append(idx.duplicates, rec)
			continue
		}
		idx.byKey[key] = rec
	}
	return idx
}

// Lookup returns the record matching the title, if any.
func (i *StoreIndex) Lookup(title string) (entities.StoreRecord, bool) {
	rec, ok := i.byKey[TitleKey(title)]
	return rec, ok
}

// All returns every indexed record, duplicates included, in fetch order.
func (i *StoreIndex) All() []entities.StoreRecord {
	return i.all
}

// Duplicates returns records shadowed by an earlier record with the same title.
func (i *StoreIndex) Duplicates() []entities.StoreRecord {
	return i.duplicates
}

// Len returns the number of indexed records, duplicates included.
func (i *StoreIndex) Len() int {
	return len(i.all)
}
