package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	modelpkg "parkcraft.ai/internal/sim/world/kernel/model"
	storepkg "parkcraft.ai/internal/sim/world/terrain/store"
)

// Tiles is the part of the tile store the digest reads.
type Tiles interface {
	Size() int
	Elements(xy modelpkg.TileXY) []storepkg.Element
}

type StateInput struct {
	NowTick uint64

	Cash   modelpkg.Money
	Ledger map[string]modelpkg.Money

	Tiles  Tiles
	Spawns []modelpkg.PeepSpawn
	Peeps  []modelpkg.Peep
	Litter map[modelpkg.TileXY]int
}

func StateDigest(in StateInput) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, in.NowTick)
	digestWriteI64(h, &tmp, int64(in.Cash))
	digestLedger(h, &tmp, in.Ledger)
	digestTiles(h, &tmp, in.Tiles)
	digestSpawns(h, &tmp, in.Spawns)
	digestPeeps(h, &tmp, in.Peeps)
	digestLitter(h, &tmp, in.Litter)

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func digestLedger(h hashWriter, tmp *[8]byte, ledger map[string]modelpkg.Money) {
	keys := make([]string, 0, len(ledger))
	for k, v := range ledger {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		digestWriteI64(h, tmp, int64(ledger[k]))
	}
}

// digestTiles walks tiles row-major; element order within a tile is the
// store's stacking order, which is itself deterministic.
func digestTiles(h hashWriter, tmp *[8]byte, tiles Tiles) {
	if tiles == nil {
		return
	}
	size := tiles.Size()
	digestWriteU64(h, tmp, uint64(size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			elems := tiles.Elements(modelpkg.TileXY{X: x, Y: y})
			digestWriteU64(h, tmp, uint64(len(elems)))
			for _, e := range elems {
				digestElement(h, tmp, e)
			}
		}
	}
}

func digestElement(h hashWriter, tmp *[8]byte, e storepkg.Element) {
	hd := e.Common()
	h.Write([]byte{byte(e.Type()), hd.Quadrants, boolByte(hd.Ghost)})
	digestWriteI64(h, tmp, int64(hd.BaseHeight))
	digestWriteI64(h, tmp, int64(hd.ClearanceHeight))
	switch v := e.(type) {
	case *storepkg.Surface:
		h.Write([]byte{v.Slope, v.Ownership, v.SurfaceStyle, v.EdgeStyle, v.GrassLength, v.ParkFences})
		digestWriteI64(h, tmp, int64(v.WaterHeight))
	case *storepkg.Path:
		h.Write([]byte{
			v.SurfaceIndex, v.RailingsIndex, v.Edges, v.Corners,
			boolByte(v.Sloped), byte(v.SlopeDirection), boolByte(v.Queue),
			v.Addition, v.AdditionStatus, boolByte(v.Broken),
		})
		digestWriteI64(h, tmp, int64(v.RideIndex))
	case *storepkg.Track:
		h.Write([]byte{v.TrackType, byte(v.Direction)})
		digestWriteI64(h, tmp, int64(v.RideIndex))
		digestWriteU64(h, tmp, uint64(v.RideType))
	case *storepkg.Entrance:
		h.Write([]byte{byte(v.Kind), v.Sequence, v.PathType, byte(v.Direction)})
		digestWriteI64(h, tmp, int64(v.RideIndex))
	case *storepkg.SmallScenery:
		digestWriteU64(h, tmp, uint64(v.Entry))
	case *storepkg.Wall:
		h.Write([]byte{byte(v.Direction)})
		digestWriteU64(h, tmp, uint64(v.Entry))
	case *storepkg.LargeScenery:
		h.Write([]byte{v.Sequence})
		digestWriteU64(h, tmp, uint64(v.Entry))
	}
}

func digestSpawns(h hashWriter, tmp *[8]byte, spawns []modelpkg.PeepSpawn) {
	digestWriteU64(h, tmp, uint64(len(spawns)))
	for _, s := range spawns {
		digestWriteI64(h, tmp, int64(s.X))
		digestWriteI64(h, tmp, int64(s.Y))
		digestWriteI64(h, tmp, int64(s.Z))
		h.Write([]byte{byte(s.Direction)})
	}
}

func digestPeeps(h hashWriter, tmp *[8]byte, peeps []modelpkg.Peep) {
	ps := append([]modelpkg.Peep(nil), peeps...)
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	for _, p := range ps {
		h.Write([]byte(p.ID))
		digestWriteI64(h, tmp, int64(p.Tile.X))
		digestWriteI64(h, tmp, int64(p.Tile.Y))
		digestWriteI64(h, tmp, int64(p.Height))
		h.Write([]byte{boolByte(p.Interrupted)})
	}
}

func digestLitter(h hashWriter, tmp *[8]byte, litter map[modelpkg.TileXY]int) {
	keys := make([]modelpkg.TileXY, 0, len(litter))
	for k, n := range litter {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
	for _, k := range keys {
		digestWriteI64(h, tmp, int64(k.X))
		digestWriteI64(h, tmp, int64(k.Y))
		digestWriteU64(h, tmp, uint64(litter[k]))
	}
}
