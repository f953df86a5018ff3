package store

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"
)

// Mem is an in-memory Store. It is safe for concurrent use.
type Mem struct {
	mu      sync.RWMutex
	objects map[cid.Cid][]byte
}

// NewMem constructs an empty in-memory store.
func NewMem() *Mem {
	return &Mem{objects: make(map[cid.Cid][]byte)}
}

func (m *Mem) Put(data []byte) (cid.Cid, error) {
	id, err := CIDFor(data)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.objects[id]; ok {
		if !bytes.Equal(existing, data) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[id] = stored
	return id, nil
}

func (m *Mem) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	stored, ok := m.objects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *Mem) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok
}
