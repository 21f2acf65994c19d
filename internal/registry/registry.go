// Package registry holds the in-memory table of pipeline records shared by
// all concurrent submission, query and stop operations. It is the only
// persistent mutable state in the service; process restart loses all
// records.
package registry

import (
	"errors"
	"sync"

	"github.com/mediaforge/api/internal/model"
)

// ErrNotFound is returned for lookups and transitions on unknown ids.
var ErrNotFound = errors.New("pipeline not found")

// Registry is a mutex-guarded record table. Operations are pure in-memory
// map work and never block on I/O. Records are stored by value, so every
// read hands the caller an independent copy.
//
// Transitions are deliberately unconditional on the previous state: any
// state may move to any other, including re-entering the same one, which
// keeps the stop operation idempotent. Stopped and error are terminal by
// convention only.
type Registry struct {
	mu      sync.RWMutex
	records map[string]model.PipelineRecord
}

func New() *Registry {
	return &Registry{records: make(map[string]model.PipelineRecord)}
}

// Create inserts the record unconditionally. Callers generate ids before
// calling, so ids are assumed unique.
func (r *Registry) Create(rec model.PipelineRecord) model.PipelineRecord {
	r.mu.Lock()
	r.records[rec.ID] = rec
	r.mu.Unlock()
	return rec
}

// Get returns a snapshot of the record with the given id.
func (r *Registry) Get(id string) (model.PipelineRecord, bool) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	return rec, ok
}

// List returns a snapshot of all records. Order is unspecified.
func (r *Registry) List() []model.PipelineRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PipelineRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out
}

// Transition overwrites the record's state. Moving out of the error state
// clears the stored diagnostic.
func (r *Registry) Transition(id string, next model.PipelineState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.State = next
	if next != model.PipelineError {
		rec.Error = nil
	}
	r.records[id] = rec
	return nil
}

// Fail transitions the record to the error state carrying diagnostic text.
func (r *Registry) Fail(id string, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.State = model.PipelineError
	rec.Error = &detail
	r.records[id] = rec
	return nil
}
