package encoding

import (
	"errors"
	"testing"
)

func TestColumnRoundTrip(t *testing.T) {
	// A 4x4 map: mostly base 14 with a raised corner and one deep tile.
	col := []uint16{14, 14, 14, 14, 14, 16, 16, 14, 14, 16, 16, 14, 2, 14, 14, 14}
	enc := EncodeRLE(col)
	out, err := DecodeColumn(enc, len(col))
	if err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}
	for i := range col {
		if out[i] != col[i] {
			t.Fatalf("tile %d: got %d want %d", i, out[i], col[i])
		}
	}
	if all, err := DecodeRLE(enc); err != nil || len(all) != len(col) {
		t.Fatalf("DecodeRLE: len %d err %v", len(all), err)
	}
}

func TestFlatColumnIsOneRun(t *testing.T) {
	col := make([]uint16, 256*256)
	for i := range col {
		col[i] = 14
	}
	enc := EncodeRLE(col)
	if len(enc) > 8 {
		t.Fatalf("flat column should encode to a single pair, got %q", enc)
	}
	if out, err := DecodeColumn(enc, len(col)); err != nil || len(out) != len(col) {
		t.Fatalf("decode: len %d err %v", len(out), err)
	}
}

func TestDecodeColumnChecksLength(t *testing.T) {
	enc := EncodeRLE([]uint16{1, 1, 1, 2})
	if _, err := DecodeColumn(enc, 3); !errors.Is(err, ErrColumnLength) {
		t.Fatalf("overshoot: %v", err)
	}
	if _, err := DecodeColumn(enc, 5); !errors.Is(err, ErrColumnLength) {
		t.Fatalf("short: %v", err)
	}
	if out, err := DecodeColumn("", 0); err != nil || len(out) != 0 {
		t.Fatalf("empty column: %v", err)
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	for name, in := range map[string]string{
		"not base64": "%%%",
		"zero run":   "DgA=", // value 14, run 0
		"truncated":  "Dg==", // value 14, no run
	} {
		if _, err := DecodeRLE(in); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
