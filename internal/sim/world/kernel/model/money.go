package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is a fixed-point currency amount in hundredths.
type Money int64

// Units builds an amount from whole units and cents, e.g. Units(2, 50) == 2.50.
func Units(whole, cents int64) Money {
	if whole < 0 {
		return Money(whole*100 - cents)
	}
	return Money(whole*100 + cents)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Money) UnmarshalText(b []byte) error {
	v, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney parses "12", "12.5" or "-12.50".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty money value")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad money %q: %w", s, err)
	}
	var c int64
	switch len(frac) {
	case 0:
	case 1:
		c, err = strconv.ParseInt(frac, 10, 64)
		c *= 10
	case 2:
		c, err = strconv.ParseInt(frac, 10, 64)
	default:
		return 0, fmt.Errorf("bad money %q: too many decimals", s)
	}
	if err != nil {
		return 0, fmt.Errorf("bad money %q: %w", s, err)
	}
	v := Money(w*100 + c)
	if neg {
		v = -v
	}
	return v, nil
}

type ExpenditureType uint8

const (
	ExpenditureNone ExpenditureType = iota
	ExpenditureLandscaping
	ExpenditureLandPurchase
	ExpenditureConstruction
)

func (e ExpenditureType) String() string {
	switch e {
	case ExpenditureLandscaping:
		return "LANDSCAPING"
	case ExpenditureLandPurchase:
		return "LAND_PURCHASE"
	case ExpenditureConstruction:
		return "CONSTRUCTION"
	default:
		return "NONE"
	}
}
