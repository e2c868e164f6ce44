package noise

// Random is a 48-bit linear congruential generator with the same sequence as
// java.util.Random. Maps exported before this port rely on those sequences,
// so the arithmetic must not change.
type Random struct {
	seed int64
}

const (
	lcgMultiplier = 0x5DEECE66D
	lcgAddend     = 0xB
	lcgMask       = (int64(1) << 48) - 1
)

func NewRandom(seed int64) *Random {
	r := &Random{}
	r.SetSeed(seed)
	return r
}

func (r *Random) SetSeed(seed int64) {
	r.seed = (seed ^ lcgMultiplier) & lcgMask
}

func (r *Random) next(bits uint) int32 {
	r.seed = (r.seed*lcgMultiplier + lcgAddend) & lcgMask
	return int32(r.seed >> (48 - bits))
}

// Int32 returns the next 32 random bits as a signed value.
func (r *Random) Int32() int32 { return r.next(32) }

// NextInt returns a uniform value in [0, bound). bound must be positive.
func (r *Random) NextInt(bound int) int {
	if bound <= 0 {
		panic("noise: NextInt bound must be positive")
	}
	n := int32(bound)
	if n&-n == n {
		return int((int64(n) * int64(r.next(31))) >> 31)
	}
	for {
		bits := r.next(31)
		val := bits % n
		// int32 wraparound detects the biased tail.
		if bits-val+(n-1) >= 0 {
			return int(val)
		}
	}
}

// NextFloat returns a uniform value in [0, 1) with 24 bits of precision.
func (r *Random) NextFloat() float32 {
	return float32(r.next(24)) / float32(1<<24)
}

// NextDouble returns a uniform value in [0, 1) with 53 bits of precision.
func (r *Random) NextDouble() float64 {
	hi := int64(r.next(26))
	lo := int64(r.next(27))
	return float64(hi<<27+lo) * (1.0 / float64(int64(1)<<53))
}

// TileSeed derives the decoration generator seed of a source tile. The
// multiplication wraps at 32 bits.
func TileSeed(worldSeed int64, tileX, tileY int) int64 {
	return worldSeed + int64(int32(tileX)*65537) + int64(int32(tileY)) + 4099
}

// CellSeed derives the grass generator seed of a cell addressed in source
// scale coordinates. Both products wrap at 32 bits.
func CellSeed(worldSeed int64, x, y int) int64 {
	return worldSeed + int64(int32(x)*65537) + int64(int32(y)*4099)
}
