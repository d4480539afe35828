package world

import (
	"fmt"
	"sync"
)

// Resource is a loose resource lying on a cell. Once collected it belongs to
// a king and, when stored, to a castle's resource vault.
type Resource struct {
	pointPlacement

	rel   sync.Mutex
	typ   ResourceType
	count int
	king  association[*King]
	vault association[*ResourceStore]
}

func NewResource(id int32, typ ResourceType, count int, opts ...Option) *Resource {
	r := &Resource{typ: typ, count: count}
	r.init(id, buildOptions(opts), r)
	return r
}

func (r *Resource) Kind() Kind { return KindResource }

// AddView assigns the resource's cell and places it on the world grid.
func (r *Resource) AddView(c *Cell) error { return r.addView(c) }

func (r *Resource) Type() ResourceType {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.typ
}

func (r *Resource) SetType(t ResourceType) {
	r.rel.Lock()
	r.typ = t
	r.rel.Unlock()
}

func (r *Resource) Count() int {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.count
}

func (r *Resource) SetCount(n int) {
	r.rel.Lock()
	r.count = n
	r.rel.Unlock()
}

// King returns the king that collected the resource, or nil.
func (r *Resource) King() *King {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.king.v
}

// SetKing moves the resource between kings' collections; nil releases it.
// Lock order is resource, then king.
func (r *Resource) SetKing(k *King) {
	r.rel.Lock()
	defer r.rel.Unlock()
	prev := r.king.v
	r.king.assigned = true
	if prev == k {
		return
	}
	r.king.v = k
	r.king.id = 0
	if k != nil {
		r.king.id = k.ID()
	}
	if prev != nil {
		prev.unlinkResource(r)
	}
	if k != nil {
		k.linkResource(r)
	}
}

func (r *Resource) KingID() int32 {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.king.id
}

func (r *Resource) SetKingID(id int32) error {
	r.rel.Lock()
	defer r.rel.Unlock()
	if err := r.king.setID(id); err != nil {
		return fmt.Errorf("resource %d king id: %w", r.id, err)
	}
	return nil
}

// Vault returns the resource store holding the resource, or nil.
func (r *Resource) Vault() *ResourceStore {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.vault.v
}

// SetVault moves the resource between stores, keeping each store's resource
// list in step. Nil removes it from its store. Lock order is resource, then
// store.
func (r *Resource) SetVault(s *ResourceStore) {
	r.rel.Lock()
	defer r.rel.Unlock()
	prev := r.vault.v
	r.vault.assigned = true
	if prev == s {
		return
	}
	r.vault.v = s
	r.vault.id = 0
	if s != nil {
		r.vault.id = s.ID()
	}
	if prev != nil {
		prev.unlink(r)
	}
	if s != nil {
		s.link(r)
	}
}

func (r *Resource) VaultID() int32 {
	r.rel.Lock()
	defer r.rel.Unlock()
	return r.vault.id
}

func (r *Resource) SetVaultID(id int32) error {
	r.rel.Lock()
	defer r.rel.Unlock()
	if err := r.vault.setID(id); err != nil {
		return fmt.Errorf("resource %d vault id: %w", r.id, err)
	}
	return nil
}
