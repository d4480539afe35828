package world

// ObjectType distinguishes decorative objects.
type ObjectType int16

const (
	ObjectNone ObjectType = iota
	ObjectTree
	ObjectStone
	ObjectHouse
	ObjectRuin
	ObjectLake
	ObjectForest
)

var objectTypeNames = [...]string{
	ObjectNone:   "none",
	ObjectTree:   "tree",
	ObjectStone:  "stone",
	ObjectHouse:  "house",
	ObjectRuin:   "ruin",
	ObjectLake:   "lake",
	ObjectForest: "forest",
}

func (t ObjectType) String() string {
	if t < 0 || int(t) >= len(objectTypeNames) {
		return "unknown"
	}
	return objectTypeNames[t]
}

// ParseObjectType resolves a lower-case object name.
func ParseObjectType(name string) (ObjectType, bool) {
	for i, n := range objectTypeNames {
		if n == name {
			return ObjectType(i), true
		}
	}
	return ObjectNone, false
}

// SingleObject is a decorative object on one cell.
type SingleObject struct {
	pointPlacement
	typ ObjectType
}

func NewSingleObject(id int32, typ ObjectType, opts ...Option) *SingleObject {
	o := &SingleObject{typ: typ}
	o.init(id, buildOptions(opts), o)
	return o
}

func (o *SingleObject) Kind() Kind { return KindSingleObject }

func (o *SingleObject) Type() ObjectType { return o.typ }

// AddView assigns the object's cell and places it on the world grid.
func (o *SingleObject) AddView(c *Cell) error { return o.addView(c) }

// MultiObject is a decorative object spanning a sector.
type MultiObject struct {
	sectorPlacement
	typ ObjectType
}

func NewMultiObject(id int32, typ ObjectType, opts ...Option) *MultiObject {
	o := &MultiObject{typ: typ}
	o.init(id, buildOptions(opts), o)
	return o
}

func (o *MultiObject) Kind() Kind { return KindMultiObject }

func (o *MultiObject) Type() ObjectType { return o.typ }

// AddView assigns the object's sector and places its cells on the world grid.
func (o *MultiObject) AddView(s *Sector) error { return o.addView(s) }
