package world

// Events published on the world's event bus.

// EntityAttached follows a successful Add<Kind>.
type EntityAttached struct {
	WorldID int32
	Kind    Kind
	ID      int32
}

// EntityDetached follows a successful Remove<Kind>.
type EntityDetached struct {
	WorldID int32
	Kind    Kind
	ID      int32
}

// CellsExposed follows a removal that re-placed hidden cells on the grid.
type CellsExposed struct {
	WorldID int32
	Count   int
}

// CastleCreated is published by Factory.NewCastle.
type CastleCreated struct {
	Castle *Castle
}
