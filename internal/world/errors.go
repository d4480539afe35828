package world

import "errors"

var (
	// ErrNotInitialized is returned when an entity's spatial view (or the
	// world grid) is read before it has been set.
	ErrNotInitialized = errors.New("object is not initialized")
	// ErrOutOfRange is returned for coordinates outside the playable interior
	// or outside the grid array.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidSize is returned for non-positive grid or sector dimensions.
	ErrInvalidSize = errors.New("invalid size")
	// ErrNegativeCost is returned for a negative way cost.
	ErrNegativeCost = errors.New("negative way cost")
	// ErrForeignKeyAssigned is returned when a foreign-key field is
	// overwritten after its association has been loaded or assigned.
	ErrForeignKeyAssigned = errors.New("foreign key reference already has a value")
	// ErrInvalidObserverKind is returned for an observer lookup without a
	// valid observer kind.
	ErrInvalidObserverKind = errors.New("invalid observer kind")
	// ErrAlreadyAttached is returned when adding an entity that already
	// belongs to a world.
	ErrAlreadyAttached = errors.New("entity already attached to a world")
	// ErrNotAttached is returned when an entity is not registered in the
	// world the operation targets.
	ErrNotAttached = errors.New("entity not attached to this world")
	// ErrDuplicateID is returned when an id is already registered for a kind.
	ErrDuplicateID = errors.New("duplicate entity id")
	// ErrDuplicateObserver is returned when an observer id is already taken
	// by an entity of another kind.
	ErrDuplicateObserver = errors.New("duplicate observer id")
	// ErrCellOwned is returned when a cell already belongs to another sector.
	ErrCellOwned = errors.New("cell belongs to another sector")
	// ErrSectorInitialized is returned when a sector already has cells.
	ErrSectorInitialized = errors.New("sector already initialized")
)
