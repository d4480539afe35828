package world

// PointHolder is an entity whose spatial view is a single cell.
type PointHolder interface {
	ID() int32
	Kind() Kind
	PointID() int32
	SetPoint(c *Cell)
}

// SectorHolder is an entity whose spatial view is a sector.
type SectorHolder interface {
	ID() int32
	Kind() Kind
	SectorID() int32
	SetSector(s *Sector)
}

// PointLoader resolves a cell view on first access. It is expected to call
// e.SetPoint; leaving the view unset is allowed.
type PointLoader interface {
	LoadPoint(e PointHolder, pointID int32)
}

// SectorLoader resolves a sector view on first access. It is expected to
// call e.SetSector; leaving the view unset is allowed.
type SectorLoader interface {
	LoadSector(e SectorHolder, sectorID int32)
}

// VaultLoader resolves the inventory stores attached to a castle.
type VaultLoader interface {
	LoadResourceStore(c *Castle, vaultID int32)
	LoadFigureStore(c *Castle, vaultID int32)
}

// PointLoaderFunc adapts a function to PointLoader.
type PointLoaderFunc func(e PointHolder, pointID int32)

func (f PointLoaderFunc) LoadPoint(e PointHolder, pointID int32) { f(e, pointID) }

// SectorLoaderFunc adapts a function to SectorLoader.
type SectorLoaderFunc func(e SectorHolder, sectorID int32)

func (f SectorLoaderFunc) LoadSector(e SectorHolder, sectorID int32) { f(e, sectorID) }

// Option configures a newly constructed entity.
type Option func(*options)

type options struct {
	points  PointLoader
	sectors SectorLoader
	vaults  VaultLoader
	worldID int32
	viewID  int32
}

// WithPointLoader sets the loader used by cell-backed entities.
func WithPointLoader(l PointLoader) Option {
	return func(o *options) { o.points = l }
}

// WithSectorLoader sets the loader used by sector-backed entities.
func WithSectorLoader(l SectorLoader) Option {
	return func(o *options) { o.sectors = l }
}

// WithVaultLoader sets the loader for a castle's resource and figure stores.
// Ignored by other kinds.
func WithVaultLoader(l VaultLoader) Option {
	return func(o *options) { o.vaults = l }
}

// WithStoredIDs seeds the denormalized world and view ids, as read from a
// backing store, so the view can be resolved lazily.
func WithStoredIDs(worldID, viewID int32) Option {
	return func(o *options) {
		o.worldID = worldID
		o.viewID = viewID
	}
}

// Loaders bundles every loader capability. persist.Loader and store.Bolt
// satisfy it.
type Loaders interface {
	PointLoader
	SectorLoader
	VaultLoader
}

// WithLoaders sets point, sector and vault loaders from one implementation.
func WithLoaders(l Loaders) Option {
	return func(o *options) {
		o.points = l
		o.sectors = l
		o.vaults = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
