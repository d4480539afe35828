package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ojrac/opensimplex-go"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/alivechess/server/internal/world"
)

// Terrain is a classification and way cost pair.
type Terrain struct {
	Type string  `yaml:"type"`
	Cost float32 `yaml:"cost"`
}

type SectorDef struct {
	ID     int32   `yaml:"id"`
	X      int     `yaml:"x"`
	Y      int     `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Type   string  `yaml:"type"`
	Cost   float32 `yaml:"cost"`
	Image  int32   `yaml:"image"`
}

type CastleDef struct {
	ID       int32 `yaml:"id"`
	Sector   int32 `yaml:"sector"`
	King     int32 `yaml:"king"` // 0 = free
	Distance int   `yaml:"distance"`
}

type MineDef struct {
	ID       int32  `yaml:"id"`
	Sector   int32  `yaml:"sector"`
	Resource string `yaml:"resource"`
	Output   int    `yaml:"output"`
}

type MultiObjectDef struct {
	ID     int32  `yaml:"id"`
	Sector int32  `yaml:"sector"`
	Type   string `yaml:"type"`
}

// PointDef places a single-cell entity. A zero Cost inherits the cost of
// the covered cell.
type PointDef struct {
	ID      int32    `yaml:"id"`
	PointID int32    `yaml:"point_id"`
	X       int      `yaml:"x"`
	Y       int      `yaml:"y"`
	Cost    *float32 `yaml:"cost"`
	Image   int32    `yaml:"image"`
	Type    string   `yaml:"type"`  // resource, object or landscape type
	Count   int      `yaml:"count"` // resources only
}

type BorderDef struct {
	Auto    bool  `yaml:"auto"` // frame the whole reserved border
	FirstID int32 `yaml:"first_id"`
	Image   int32 `yaml:"image"`
}

// NoiseDef generates terrain from 2D simplex noise when no tile file is
// given. Each sample in [-1, 1] takes the first band whose Below exceeds it;
// samples above every band keep the base terrain.
type NoiseDef struct {
	Seed  int64       `yaml:"seed"`
	Scale float64     `yaml:"scale"` // cells per noise unit
	Bands []NoiseBand `yaml:"bands"`
}

type NoiseBand struct {
	Below   float64 `yaml:"below"`
	Terrain `yaml:",inline"`
}

// Layout is a world description loaded from YAML.
type Layout struct {
	Width   int             `yaml:"width"`
	Height  int             `yaml:"height"`
	Base    Terrain         `yaml:"base"`
	Tiles   string          `yaml:"tiles"`   // CSV tile file, relative to the layout
	Terrain map[int]Terrain `yaml:"terrain"` // tile code → terrain
	Noise   *NoiseDef       `yaml:"noise"`

	Sectors       []SectorDef      `yaml:"sectors"`
	Castles       []CastleDef      `yaml:"castles"`
	Mines         []MineDef        `yaml:"mines"`
	MultiObjects  []MultiObjectDef `yaml:"multi_objects"`
	Kings         []PointDef       `yaml:"kings"`
	Resources     []PointDef       `yaml:"resources"`
	SingleObjects []PointDef       `yaml:"single_objects"`
	Landscape     []PointDef       `yaml:"landscape"`
	Borders       BorderDef        `yaml:"borders"`

	raw   []byte
	tiles []byte // flat [x*height + y]
	noise *opensimplex.Noise
}

// LoadLayout reads a layout file and, when it names one, its tile file.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("layout %s: size %dx%d: %w", path, l.Width, l.Height, world.ErrInvalidSize)
	}
	l.raw = raw
	if err := l.Noise.validate(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	if err := l.checkObservers(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	if l.Tiles != "" {
		tilePath := l.Tiles
		if !filepath.IsAbs(tilePath) {
			tilePath = filepath.Join(filepath.Dir(path), tilePath)
		}
		l.tiles, err = loadTileFile(tilePath, l.Width, l.Height)
		if err != nil {
			return nil, fmt.Errorf("layout %s tiles: %w", path, err)
		}
	}
	return &l, nil
}

// Digest identifies the layout content, tiles included.
func (l *Layout) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write(l.raw)
	h.Write(l.tiles)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

var fold = cases.Fold()

func pointType(name string) (world.PointType, error) {
	if name == "" {
		return world.PointPlain, nil
	}
	t, ok := world.ParsePointType(fold.String(name))
	if !ok {
		return 0, fmt.Errorf("unknown point type %q", name)
	}
	return t, nil
}

func resourceType(name string) (world.ResourceType, error) {
	t, ok := world.ParseResourceType(fold.String(name))
	if !ok {
		return 0, fmt.Errorf("unknown resource type %q", name)
	}
	return t, nil
}

func objectType(name string) (world.ObjectType, error) {
	t, ok := world.ParseObjectType(fold.String(name))
	if !ok {
		return 0, fmt.Errorf("unknown object type %q", name)
	}
	return t, nil
}

func landscapeType(name string) (world.LandscapeType, error) {
	t, ok := world.ParseLandscapeType(fold.String(name))
	if !ok {
		return 0, fmt.Errorf("unknown landscape type %q", name)
	}
	return t, nil
}

func (n *NoiseDef) validate() error {
	if n == nil {
		return nil
	}
	if n.Scale <= 0 {
		return fmt.Errorf("noise scale %v must be positive", n.Scale)
	}
	for i := 1; i < len(n.Bands); i++ {
		if n.Bands[i].Below <= n.Bands[i-1].Below {
			return fmt.Errorf("noise band %d: thresholds must ascend", i)
		}
	}
	return nil
}

// checkObservers rejects a king, castle or mine id that another observer
// already uses. The three kinds share one id space in the world.
func (l *Layout) checkObservers() error {
	owners := make(map[int32]string, len(l.Kings)+len(l.Castles)+len(l.Mines))
	claim := func(kind string, id int32) error {
		name := fmt.Sprintf("%s %d", kind, id)
		if prev, ok := owners[id]; ok {
			return fmt.Errorf("%s and %s share observer id %d: %w", prev, name, id, world.ErrDuplicateObserver)
		}
		owners[id] = name
		return nil
	}
	for _, k := range l.Kings {
		if err := claim("king", k.ID); err != nil {
			return err
		}
	}
	for _, c := range l.Castles {
		if err := claim("castle", c.ID); err != nil {
			return err
		}
	}
	for _, m := range l.Mines {
		if err := claim("mine", m.ID); err != nil {
			return err
		}
	}
	return nil
}

// sample returns the noise terrain at (x, y), or false when the sample
// falls above every band.
func (l *Layout) sample(x, y int) (Terrain, bool) {
	if l.noise == nil {
		l.noise = opensimplex.NewWithSeed(l.Noise.Seed)
	}
	v := l.noise.Eval2(float64(x)/l.Noise.Scale, float64(y)/l.Noise.Scale)
	for _, b := range l.Noise.Bands {
		if v < b.Below {
			return b.Terrain, true
		}
	}
	return Terrain{}, false
}

// terrainAt resolves the terrain of one coordinate from the tile file, the
// noise bands, or the base terrain, in that order.
func (l *Layout) terrainAt(x, y int) (world.PointType, float32, error) {
	t := l.Base
	switch {
	case l.tiles != nil:
		code := int(l.tiles[x*l.Height+y])
		if def, ok := l.Terrain[code]; ok {
			t = def
		}
	case l.Noise != nil && l.Noise.Scale > 0:
		if def, ok := l.sample(x, y); ok {
			t = def
		}
	}
	typ, err := pointType(t.Type)
	return typ, t.Cost, err
}
