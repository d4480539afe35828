package world

// LandscapeType is the terrain shown by a landscape point.
type LandscapeType int16

const (
	LandscapeNone LandscapeType = iota
	LandscapeGrass
	LandscapeSand
	LandscapeSnow
	LandscapeSwamp
	LandscapeHill
)

var landscapeTypeNames = [...]string{
	LandscapeNone:  "none",
	LandscapeGrass: "grass",
	LandscapeSand:  "sand",
	LandscapeSnow:  "snow",
	LandscapeSwamp: "swamp",
	LandscapeHill:  "hill",
}

func (t LandscapeType) String() string {
	if t < 0 || int(t) >= len(landscapeTypeNames) {
		return "unknown"
	}
	return landscapeTypeNames[t]
}

// ParseLandscapeType resolves a lower-case landscape name.
func ParseLandscapeType(name string) (LandscapeType, bool) {
	for i, n := range landscapeTypeNames {
		if n == name {
			return LandscapeType(i), true
		}
	}
	return LandscapeNone, false
}

// LandscapePoint is a terrain feature on one cell.
type LandscapePoint struct {
	pointPlacement
	typ     LandscapeType
	imageID int32
}

func NewLandscapePoint(id int32, typ LandscapeType, imageID int32, opts ...Option) *LandscapePoint {
	p := &LandscapePoint{typ: typ, imageID: imageID}
	p.init(id, buildOptions(opts), p)
	return p
}

func (p *LandscapePoint) Kind() Kind            { return KindLandscapePoint }
func (p *LandscapePoint) Type() LandscapeType   { return p.typ }
func (p *LandscapePoint) ImageID() int32        { return p.imageID }
func (p *LandscapePoint) AddView(c *Cell) error { return p.addView(c) }

// Border is a boundary marker on one cell, normally on the reserved frame.
type Border struct {
	pointPlacement
	imageID int32
}

func NewBorder(id int32, imageID int32, opts ...Option) *Border {
	b := &Border{imageID: imageID}
	b.init(id, buildOptions(opts), b)
	return b
}

func (b *Border) Kind() Kind            { return KindBorder }
func (b *Border) ImageID() int32        { return b.imageID }
func (b *Border) AddView(c *Cell) error { return b.addView(c) }
