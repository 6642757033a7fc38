// Package reftable implements the reference sequence table (spec.md
// §3 component C): a keyed collection of named reference sequences,
// each carrying the evidence vector accumulated for it.
package reftable

import (
	"fmt"
	"sync"

	"github.com/davidsun/SAP/internal/dna"
	"github.com/davidsun/SAP/internal/evidence"
)

// Entry pairs a named reference sequence with its evidence vector.
// The evidence vector travels with its sequence for its entire
// lifetime (spec.md §3 Ownership).
type Entry struct {
	Seq      *dna.Named
	Evidence *evidence.Vector
}

// Table is a mapping from sequence id to Entry, with an auxiliary
// running total of bases across all entries.
type Table struct {
	mu         sync.RWMutex
	byID       map[int64]*Entry
	byName     map[string]int64
	totalBases int64
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		byID:   make(map[int64]*Entry),
		byName: make(map[string]int64),
	}
}

// Add constructs a new reference sequence named name from raw bytes,
// creates its evidence vector, and inserts both into the table. name
// must be unique within the table.
func (t *Table) Add(name string, raw []byte) (*Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byName[name]; ok {
		return nil, fmt.Errorf("reftable: duplicate reference name %q", name)
	}

	seq := dna.NewNamed(name, raw)
	e := &Entry{Seq: seq, Evidence: evidence.New(seq.Len())}
	t.byID[seq.ID()] = e
	t.byName[name] = seq.ID()
	t.totalBases += int64(seq.Len())
	return e, nil
}

// Get returns the entry for id, or nil if absent.
func (t *Table) Get(id int64) *Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byID[id]
}

// GetByName returns the entry named name, or nil if absent.
func (t *Table) GetByName(name string) *Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.byID[id]
}

// Remove deletes the entry with the given id, decrementing
// totalBases. It is a no-op if id is absent.
func (t *Table) Remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	delete(t.byName, e.Seq.Name())
	t.totalBases -= int64(e.Seq.Len())
}

// TotalBases returns the running sum of reference sequence lengths
// currently in the table.
func (t *Table) TotalBases() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalBases
}

// Len returns the number of reference sequences in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// Each calls fn for every entry in the table, in unspecified order.
// fn must not mutate the table.
func (t *Table) Each(fn func(*Entry)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.byID {
		fn(e)
	}
}
