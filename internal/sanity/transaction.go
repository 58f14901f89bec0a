package sanity

import (
	"context"
	"sync"
)

// Mutation is one operation of a transaction. Exactly one field is set.
type Mutation struct {
	Create Document        `json:"create,omitempty"`
	Patch  *PatchMutation  `json:"patch,omitempty"`
	Delete *DeleteMutation `json:"delete,omitempty"`
}

// PatchMutation sets fields on an existing document.
type PatchMutation struct {
	ID  string         `json:"id"`
	Set map[string]any `json:"set"`
}

// DeleteMutation removes a document.
type DeleteMutation struct {
	ID string `json:"id"`
}

// Kind returns "create", "patch" or "delete".
func (m Mutation) Kind() string {
	switch {
	case m.Create != nil:
		return "create"
	case m.Patch != nil:
		return "patch"
	case m.Delete != nil:
		return "delete"
	}
	return ""
}

// MutateResult is the response of the mutate endpoint.
type MutateResult struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Mutator applies a list of mutations atomically.
type Mutator interface {
	Mutate(ctx context.Context, mutations []Mutation) (*MutateResult, error)
}

// Transaction accumulates mutations and commits them in one request.
// Appends are safe from multiple goroutines.
type Transaction struct {
	mutator Mutator

	mu        sync.Mutex
	mutations []Mutation
}

// NewTransaction creates an empty transaction committed through m.
func NewTransaction(m Mutator) *Transaction {
	return &Transaction{mutator: m}
}

func (t *Transaction) Create(doc Document) *Transaction {
	return t.add(Mutation{Create: doc})
}

func (t *Transaction) Patch(id string, set map[string]any) *Transaction {
	return t.add(Mutation{Patch: &PatchMutation{ID: id, Set: set}})
}

func (t *Transaction) Delete(id string) *Transaction {
	return t.add(Mutation{Delete: &DeleteMutation{ID: id}})
}

func (t *Transaction) add(m Mutation) *Transaction {
	t.mu.Lock()
	t.mutations = append(t.mutations, m)
	t.mu.Unlock()
	return t
}

// Len returns the number of staged mutations.
func (t *Transaction) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.mutations)
}

// Mutations returns a copy of the staged mutations.
func (t *Transaction) Mutations() []Mutation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Mutation, len(t.mutations))
	copy(out, t.mutations)
	return out
}

// Commit sends all staged mutations. Either every mutation is applied by the
// store or none is.
func (t *Transaction) Commit(ctx context.Context) (*MutateResult, error) {
	mutations := t.Mutations()
	if len(mutations) == 0 {
		return nil, ErrEmptyTransaction
	}
	return t.mutator.Mutate(ctx, mutations)
}
