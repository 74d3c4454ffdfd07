package edit

import (
	"github.com/zyedidia/generic/mapset"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

// Session is the scratch state of one top-level command. Nested commands share
// their parent's session.
type Session struct {
	// TrackSelectionRecheck asks ride construction to re-validate its
	// selection after the terrain changed.
	TrackSelectionRecheck bool

	touched mapset.Set[model.TileXY]
	order   []model.TileXY
	reasons map[model.TileXY]string
}

func NewSession() *Session {
	return &Session{
		touched: mapset.New[model.TileXY](),
		reasons: map[model.TileXY]string{},
	}
}

// Touch records a mutated tile. The first reason recorded for a tile wins.
func (s *Session) Touch(xy model.TileXY, reason string) {
	if s.touched.Has(xy) {
		return
	}
	s.touched.Put(xy)
	s.order = append(s.order, xy)
	s.reasons[xy] = reason
}

func (s *Session) Touched(xy model.TileXY) bool { return s.touched.Has(xy) }

// TouchedTiles returns mutated tiles in first-touch order.
func (s *Session) TouchedTiles() []model.TileXY {
	out := make([]model.TileXY, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Session) Reason(xy model.TileXY) string { return s.reasons[xy] }

func (s *Session) TouchedCount() int { return s.touched.Size() }
