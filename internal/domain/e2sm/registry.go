package e2sm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

// Registry maps function ids and OIDs to service models.
type Registry struct {
	mu    sync.RWMutex
	byID  map[e2ap.FunctionID]Model
	byOID map[string]Model
}

func NewRegistry(models ...Model) (*Registry, error) {
	r := &Registry{
		byID:  make(map[e2ap.FunctionID]Model),
		byOID: make(map[string]Model),
	}
	for _, m := range models {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(m Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.FunctionID()]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateFunction, m.FunctionID())
	}
	if _, ok := r.byOID[m.OID()]; ok {
		return fmt.Errorf("%w: oid %s", ErrDuplicateFunction, m.OID())
	}
	r.byID[m.FunctionID()] = m
	r.byOID[m.OID()] = m
	return nil
}

func (r *Registry) Lookup(id e2ap.FunctionID) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	return m, ok
}

// For returns the model that owns p.
func (r *Registry) For(p Payload) (Model, error) {
	if p == nil {
		return nil, ErrUnknownModel
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byOID[p.ModelOID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, p.ModelOID())
	}
	return m, nil
}

// Models returns all registered models ordered by function id.
func (r *Registry) Models() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Model, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FunctionID() < out[j].FunctionID() })
	return out
}
