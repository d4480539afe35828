package world

import "sync"

// Mine is an extraction site occupying a sector.
type Mine struct {
	sectorPlacement

	rel     sync.Mutex
	resType ResourceType
	output  int
}

func NewMine(id int32, opts ...Option) *Mine {
	m := &Mine{}
	m.init(id, buildOptions(opts), m)
	return m
}

func (m *Mine) Kind() Kind                 { return KindMine }
func (m *Mine) ObserverKind() ObserverKind { return MineObserver }

// AddView assigns the mine's sector and places its cells on the world grid.
func (m *Mine) AddView(s *Sector) error { return m.addView(s) }

// ResourceType is the resource the mine extracts.
func (m *Mine) ResourceType() ResourceType {
	m.rel.Lock()
	defer m.rel.Unlock()
	return m.resType
}

func (m *Mine) SetResourceType(t ResourceType) {
	m.rel.Lock()
	m.resType = t
	m.rel.Unlock()
}

// Output is the amount extracted per collection.
func (m *Mine) Output() int {
	m.rel.Lock()
	defer m.rel.Unlock()
	return m.output
}

func (m *Mine) SetOutput(n int) {
	m.rel.Lock()
	m.output = n
	m.rel.Unlock()
}
