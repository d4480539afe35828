package world

import "fmt"

// Observer is an entity reachable by id alone, across kinds: kings, castles
// and mines.
type Observer interface {
	Placed
	ObserverKind() ObserverKind
}

// ObserverKind selects one of the observer-eligible registries. The only
// values are KingObserver, CastleObserver and MineObserver.
type ObserverKind interface {
	Kind() Kind
	String() string

	observerKind()
}

type (
	kingObserver   struct{}
	castleObserver struct{}
	mineObserver   struct{}
)

var (
	KingObserver   ObserverKind = kingObserver{}
	CastleObserver ObserverKind = castleObserver{}
	MineObserver   ObserverKind = mineObserver{}
)

func (kingObserver) Kind() Kind   { return KindKing }
func (castleObserver) Kind() Kind { return KindCastle }
func (mineObserver) Kind() Kind   { return KindMine }

func (kingObserver) String() string   { return "king" }
func (castleObserver) String() string { return "castle" }
func (mineObserver) String() string   { return "mine" }

func (kingObserver) observerKind()   {}
func (castleObserver) observerKind() {}
func (mineObserver) observerKind()   {}

// ObserverKindOf maps a stored classification tag to its observer kind.
func ObserverKindOf(t PointType) (ObserverKind, error) {
	switch t {
	case PointKing:
		return KingObserver, nil
	case PointCastle:
		return CastleObserver, nil
	case PointMine:
		return MineObserver, nil
	}
	return nil, fmt.Errorf("point type %s: %w", t, ErrInvalidObserverKind)
}
