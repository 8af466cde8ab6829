package geom

// Hash32 mixes a 32-bit input into a well-distributed 32-bit output.
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Hash2 returns a stable hash of a cell coordinate and seed. Content uses
// it wherever a "random" but reproducible choice per tile is needed.
func Hash2(seed uint32, x, y int) uint32 {
	h := seed
	h ^= uint32(int32(x)) * 0x9e3779b1
	h ^= uint32(int32(y)) * 0x85ebca6b
	return Hash32(h)
}
