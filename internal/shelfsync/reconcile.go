package shelfsync

import (
	"github.com/mrlokans/shelfsync/internal/entities"
)

// Action is what a sync run does with a single shelf book.
type Action int

const (
	ActionCreate Action = iota
	ActionPatch
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionPatch:
		return "patch"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// Decision pairs a shelf book with the action chosen for it. Existing is set
// for patch and skip decisions.
type Decision struct {
	Book     entities.ShelfBook
	Action   Action
	Existing *entities.StoreRecord
}

// NeedsCover reports whether the book should get a cover uploaded.
func (d Decision) NeedsCover() bool {
	return d.Action != ActionSkip && (d.Existing == nil || !d.Existing.HasCover)
}

// NeedsDescription reports whether the description field should be written.
func (d Decision) NeedsDescription() bool {
	return d.Action != ActionSkip && (d.Existing == nil || !d.Existing.HasDescription)
}

// Plan is the outcome of diffing a shelf against the store.
type Plan struct {
	Decisions []Decision
	Deletes   []entities.StoreRecord
}

// Count returns how many decisions carry the given action.
func (p Plan) Count(a Action) int {
	n := 0
	for _, d := range p.Decisions {
		if d.Action == a {
			n++
		}
	}
	return n
}

// Reconcile diffs the shelf against the indexed store records.
//
// Every store record whose title is not on the shelf is deleted. A shelf book
// whose title matches a record is patched, or skipped when the record already
// has both cover and description; any other book is created. Repeated titles
// on the shelf produce one decision.
func Reconcile(books []entities.ShelfBook, index *StoreIndex) Plan {
	var plan Plan

	onShelf := make(map[string]struct{}, len(books))
	for _, book := range books {
		key := TitleKey(book.Title)
		if _, seen := onShelf[key]; seen {
			continue
		}
		onShelf[key] = struct{}{}

		rec, ok := index.Lookup(book.Title)
		switch {
		case !ok:
			plan.Decisions = append(plan.Decisions, Decision{Book: book, Action: ActionCreate})
		case rec.Complete():
			plan.Decisions = append(plan.Decisions, Decision{Book: book, Action: ActionSkip, Existing: &rec})
		default:
			plan.Decisions = append(plan.Decisions, Decision{Book: book, Action: ActionPatch, Existing: &rec})
		}
	}

	for _, rec := range index.All() {
		if _, ok := onShelf[TitleKey(rec.Title)]; !ok {
			plan.Deletes = append(plan.Deletes, rec)
		}
	}

	return plan
}
