// Package encoding packs per-tile surface columns for snapshots.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrColumnLength = errors.New("column length mismatch")

// EncodeRLE run-length encodes a row-major column of tile values as
// base64(uvarint value, uvarint run) pairs.
func EncodeRLE(col []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	put := func(v uint64) {
		n := binary.PutUvarint(tmp[:], v)
		buf.Write(tmp[:n])
	}
	for i := 0; i < len(col); {
		v := col[i]
		j := i + 1
		for j < len(col) && col[j] == v {
			j++
		}
		put(uint64(v))
		put(uint64(j - i))
		i = j
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE expands a column of unknown length.
func DecodeRLE(b64 string) ([]uint16, error) {
	return decode(b64, -1)
}

// DecodeColumn expands a column that must hold exactly n values. It stops as
// soon as the runs overshoot n instead of allocating them.
func DecodeColumn(b64 string, n int) ([]uint16, error) {
	return decode(b64, n)
}

func decode(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	if want >= 0 {
		out = make([]uint16, 0, want)
	}
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad value varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad run varint at %d", i)
		}
		i += n
		if v > 0xFFFF {
			return nil, fmt.Errorf("value %d out of range", v)
		}
		if run == 0 {
			return nil, fmt.Errorf("empty run at %d", i)
		}
		if want >= 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("%w: more than %d values", ErrColumnLength, want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(v))
		}
	}
	if want >= 0 && len(out) != want {
		return nil, fmt.Errorf("%w: got %d want %d", ErrColumnLength, len(out), want)
	}
	return out, nil
}
