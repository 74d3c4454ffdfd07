package mathx

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 is a seeded, platform-independent hash of a 2D lattice point.
func Hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
