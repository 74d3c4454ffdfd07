package store

import (
	"fmt"

	snapv1 "parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/encoding"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// ExportTiles flattens the store into snapshot form: surfaces as RLE columns
// and every other element as a row.
func ExportTiles(s *Store) (snapv1.SurfacesV1, []snapv1.ElementV1) {
	n := s.size * s.size
	base := make([]uint16, n)
	sl := make([]uint16, n)
	own := make([]uint16, n)
	water := make([]uint16, n)
	style := make([]uint16, n)
	edge := make([]uint16, n)
	fences := make([]uint16, n)
	grass := make([]uint16, n)
	var elems []snapv1.ElementV1
	for i, stack := range s.tiles {
		x, y := i%s.size, i/s.size
		for _, e := range stack {
			if sf, ok := e.(*Surface); ok {
				base[i] = uint16(sf.BaseHeight)
				sl[i] = uint16(sf.Slope)
				own[i] = uint16(sf.Ownership)
				water[i] = uint16(sf.WaterHeight)
				style[i] = uint16(sf.SurfaceStyle)
				edge[i] = uint16(sf.EdgeStyle)
				fences[i] = uint16(sf.ParkFences)
				grass[i] = uint16(sf.GrassLength)
				continue
			}
			elems = append(elems, exportElement(x, y, e))
		}
	}
	return snapv1.SurfacesV1{
		Base:        encoding.EncodeRLE(base),
		Slope:       encoding.EncodeRLE(sl),
		Ownership:   encoding.EncodeRLE(own),
		Water:       encoding.EncodeRLE(water),
		Style:       encoding.EncodeRLE(style),
		Edge:        encoding.EncodeRLE(edge),
		Fences:      encoding.EncodeRLE(fences),
		GrassLength: encoding.EncodeRLE(grass),
	}, elems
}

func exportElement(x, y int, e Element) snapv1.ElementV1 {
	h := e.Common()
	out := snapv1.ElementV1{
		X:         x,
		Y:         y,
		Kind:      e.Type().String(),
		Base:      h.BaseHeight,
		Clearance: h.ClearanceHeight,
		Quadrants: h.Quadrants,
		Ghost:     h.Ghost,
	}
	switch v := e.(type) {
	case *Path:
		out.PathSurface = v.SurfaceIndex
		out.PathRailings = v.RailingsIndex
		out.PathEdges = v.Edges
		out.PathCorners = v.Corners
		out.PathSloped = v.Sloped
		out.Direction = uint8(v.SlopeDirection)
		out.PathQueue = v.Queue
		out.RideIndex = v.RideIndex
		out.Addition = v.Addition
		out.AdditionStatus = v.AdditionStatus
		out.Broken = v.Broken
	case *Track:
		out.RideIndex = v.RideIndex
		out.RideType = v.RideType
		out.TrackType = v.TrackType
		out.Direction = uint8(v.Direction)
	case *Entrance:
		out.EntranceKind = uint8(v.Kind)
		out.Sequence = v.Sequence
		out.PathSurface = v.PathType
		out.Direction = uint8(v.Direction)
		out.RideIndex = v.RideIndex
	case *SmallScenery:
		out.Entry = v.Entry
	case *Wall:
		out.Entry = v.Entry
		out.Direction = uint8(v.Direction)
	case *LargeScenery:
		out.Entry = v.Entry
		out.Sequence = v.Sequence
	}
	return out
}

// ImportTiles rebuilds a store from snapshot data.
func ImportTiles(size, maxElements int, surf snapv1.SurfacesV1, elems []snapv1.ElementV1) (*Store, error) {
	s := New(size, maxElements, 0)
	n := size * size
	var cols [8][]uint16
	for i, c := range []struct{ name, enc string }{
		{"base", surf.Base},
		{"slope", surf.Slope},
		{"ownership", surf.Ownership},
		{"water", surf.Water},
		{"style", surf.Style},
		{"edge", surf.Edge},
		{"fences", surf.Fences},
		{"grass_length", surf.GrassLength},
	} {
		v, err := encoding.DecodeColumn(c.enc, n)
		if err != nil {
			return nil, fmt.Errorf("surface %s: %w", c.name, err)
		}
		cols[i] = v
	}
	for i := 0; i < n; i++ {
		sf := s.tiles[i][0].(*Surface)
		sl := uint8(cols[1][i])
		if !slope.Valid(sl) {
			return nil, fmt.Errorf("surface slope %#x invalid at tile %d", sl, i)
		}
		sf.SetHeight(int(cols[0][i]), sl)
		sf.Ownership = uint8(cols[2][i])
		sf.WaterHeight = int(cols[3][i])
		sf.SurfaceStyle = uint8(cols[4][i])
		sf.EdgeStyle = uint8(cols[5][i])
		sf.ParkFences = uint8(cols[6][i])
		sf.GrassLength = uint8(cols[7][i])
	}
	for _, ev := range elems {
		e, err := importElement(ev)
		if err != nil {
			return nil, err
		}
		if err := s.Insert(model.TileXY{X: ev.X, Y: ev.Y}, e); err != nil {
			return nil, fmt.Errorf("element at %d,%d: %w", ev.X, ev.Y, err)
		}
	}
	return s, nil
}

func importElement(ev snapv1.ElementV1) (Element, error) {
	h := Header{BaseHeight: ev.Base, ClearanceHeight: ev.Clearance, Quadrants: ev.Quadrants, Ghost: ev.Ghost}
	switch ev.Kind {
	case TypePath.String():
		return &Path{
			Header:         h,
			SurfaceIndex:   ev.PathSurface,
			RailingsIndex:  ev.PathRailings,
			Edges:          ev.PathEdges,
			Corners:        ev.PathCorners,
			Sloped:         ev.PathSloped,
			SlopeDirection: model.Direction(ev.Direction),
			Queue:          ev.PathQueue,
			RideIndex:      ev.RideIndex,
			Addition:       ev.Addition,
			AdditionStatus: ev.AdditionStatus,
			Broken:         ev.Broken,
		}, nil
	case TypeTrack.String():
		return &Track{Header: h, RideIndex: ev.RideIndex, RideType: ev.RideType, TrackType: ev.TrackType, Direction: model.Direction(ev.Direction)}, nil
	case TypeEntrance.String():
		return &Entrance{Header: h, Kind: EntranceKind(ev.EntranceKind), Sequence: ev.Sequence, PathType: ev.PathSurface, Direction: model.Direction(ev.Direction), RideIndex: ev.RideIndex}, nil
	case TypeSmallScenery.String():
		return &SmallScenery{Header: h, Entry: ev.Entry}, nil
	case TypeWall.String():
		return &Wall{Header: h, Entry: ev.Entry, Direction: model.Direction(ev.Direction)}, nil
	case TypeLargeScenery.String():
		return &LargeScenery{Header: h, Entry: ev.Entry, Sequence: ev.Sequence}, nil
	default:
		return nil, fmt.Errorf("unknown element kind %q at %d,%d", ev.Kind, ev.X, ev.Y)
	}
}
