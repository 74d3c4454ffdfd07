package store

import (
	"errors"
	"sort"

	"github.com/boljen/go-bitmap"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

var ErrNoFreeElements = errors.New("tile element limit reached")

// TileStore is the spatial store the editing commands run against.
type TileStore interface {
	Size() int
	InMap(xy model.TileXY) bool
	IsEdge(xy model.TileXY) bool

	Elements(xy model.TileXY) []Element
	SurfaceAt(xy model.TileXY) *Surface
	PathAt(xy model.TileXY, height int, pathSlope uint8) *Path
	ParkEntranceAt(xy model.TileXY, height int, requireMiddle bool) *Entrance

	CheckFreeElements(n int) bool
	Insert(xy model.TileXY, e Element) error
	Remove(xy model.TileXY, e Element) bool
	Resort(xy model.TileXY)

	InvalidateTile(xy model.TileXY)
	InvalidateRegion(min, max model.TileXY)
}

type Store struct {
	size        int
	maxElements int
	tiles       [][]Element
	count       int
	dirty       bitmap.Bitmap
}

// New creates a square map of flat surfaces at baseHeight. A maxElements of
// zero disables the global element limit.
func New(size, maxElements, baseHeight int) *Store {
	s := &Store{
		size:        size,
		maxElements: maxElements,
		tiles:       make([][]Element, size*size),
		dirty:       bitmap.New(size * size),
	}
	for i := range s.tiles {
		s.tiles[i] = []Element{NewSurface(baseHeight)}
	}
	s.count = len(s.tiles)
	return s
}

func (s *Store) Size() int { return s.size }

func (s *Store) MaxElements() int { return s.maxElements }

func (s *Store) Count() int { return s.count }

func (s *Store) InMap(xy model.TileXY) bool {
	return xy.X >= 0 && xy.Y >= 0 && xy.X < s.size && xy.Y < s.size
}

// IsEdge reports tiles on the outermost ring, which are never editable.
func (s *Store) IsEdge(xy model.TileXY) bool {
	return xy.X <= 0 || xy.Y <= 0 || xy.X >= s.size-1 || xy.Y >= s.size-1
}

func (s *Store) index(xy model.TileXY) int { return xy.X + xy.Y*s.size }

// Elements returns a copy of the tile's stack ordered by base height, so
// callers may insert or remove while iterating.
func (s *Store) Elements(xy model.TileXY) []Element {
	if !s.InMap(xy) {
		return nil
	}
	src := s.tiles[s.index(xy)]
	out := make([]Element, len(src))
	copy(out, src)
	return out
}

func (s *Store) SurfaceAt(xy model.TileXY) *Surface {
	if !s.InMap(xy) {
		return nil
	}
	for _, e := range s.tiles[s.index(xy)] {
		if sf, ok := e.(*Surface); ok {
			return sf
		}
	}
	return nil
}

// PathAt finds the path whose base and slope match exactly.
func (s *Store) PathAt(xy model.TileXY, height int, pathSlope uint8) *Path {
	if !s.InMap(xy) {
		return nil
	}
	sloped := pathSlope&PathSlopeSloped != 0
	for _, e := range s.tiles[s.index(xy)] {
		p, ok := e.(*Path)
		if !ok || p.BaseHeight != height || p.Sloped != sloped {
			continue
		}
		if sloped && uint8(p.SlopeDirection) != pathSlope&PathSlopeDirectionMask {
			continue
		}
		return p
	}
	return nil
}

func (s *Store) ParkEntranceAt(xy model.TileXY, height int, requireMiddle bool) *Entrance {
	if !s.InMap(xy) {
		return nil
	}
	for _, e := range s.tiles[s.index(xy)] {
		en, ok := e.(*Entrance)
		if !ok || en.Kind != EntrancePark || en.BaseHeight != height {
			continue
		}
		if requireMiddle && en.Sequence != ParkEntranceMiddle {
			continue
		}
		return en
	}
	return nil
}

func (s *Store) CheckFreeElements(n int) bool {
	if s.maxElements <= 0 {
		return true
	}
	return s.count+n <= s.maxElements
}

// Insert places e on the tile keeping the stack ordered by base height.
func (s *Store) Insert(xy model.TileXY, e Element) error {
	if !s.InMap(xy) {
		return errors.New("tile out of map")
	}
	if !s.CheckFreeElements(1) {
		return ErrNoFreeElements
	}
	i := s.index(xy)
	stack := s.tiles[i]
	h := e.Common().BaseHeight
	at := sort.Search(len(stack), func(k int) bool { return stack[k].Common().BaseHeight > h })
	stack = append(stack, nil)
	copy(stack[at+1:], stack[at:])
	stack[at] = e
	s.tiles[i] = stack
	s.count++
	return nil
}

// Resort restores height ordering after an element's base height changed.
func (s *Store) Resort(xy model.TileXY) {
	if !s.InMap(xy) {
		return
	}
	stack := s.tiles[s.index(xy)]
	sort.SliceStable(stack, func(a, b int) bool {
		return stack[a].Common().BaseHeight < stack[b].Common().BaseHeight
	})
}

// Remove deletes e by identity. Surfaces cannot be removed.
func (s *Store) Remove(xy model.TileXY, e Element) bool {
	if !s.InMap(xy) || e.Type() == TypeSurface {
		return false
	}
	i := s.index(xy)
	stack := s.tiles[i]
	for k, cur := range stack {
		if cur == e {
			s.tiles[i] = append(stack[:k], stack[k+1:]...)
			s.count--
			return true
		}
	}
	return false
}

func (s *Store) InvalidateTile(xy model.TileXY) {
	if !s.InMap(xy) {
		return
	}
	s.dirty.Set(s.index(xy), true)
}

func (s *Store) InvalidateRegion(min, max model.TileXY) {
	r := model.NewTileRange(min.X, min.Y, max.X, max.Y)
	r.Each(s.InvalidateTile)
}

func (s *Store) Dirty(xy model.TileXY) bool {
	if !s.InMap(xy) {
		return false
	}
	return s.dirty.Get(s.index(xy))
}

// TakeDirty returns every invalidated tile in row-major order and clears the map.
func (s *Store) TakeDirty() []model.TileXY {
	var out []model.TileXY
	for i := 0; i < len(s.tiles); i++ {
		if !s.dirty.Get(i) {
			continue
		}
		out = append(out, model.TileXY{X: i % s.size, Y: i / s.size})
		s.dirty.Set(i, false)
	}
	return out
}
