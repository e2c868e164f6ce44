package noise

import (
	"sort"
	"sync"
)

// Blob scales divide world coordinates before sampling; larger values give
// larger features.
const (
	TinyBlobs  = 4.1
	SmallBlobs = 15.703
)

// Seed offsets decorrelate the fields derived from one world seed. Changing
// any of them changes every exported map.
const (
	DandelionSeedOffset       int64 = 145351781
	RoseSeedOffset            int64 = 28286488
	GrassSeedOffset           int64 = 169191195
	FlowerTypeFieldSeedOffset int64 = 65226710
	TallGrassSeedOffset       int64 = 31695680
	KelpSeedOffset            int64 = 18815862
	ReedSeedOffset            int64 = 79508482
)

// FlowerIncidence is K in the 1-in-K roll that tries a flower instead of grass.
const FlowerIncidence = 5

// RandomField maps 2-D coordinates to a bits-wide integer that stays constant
// over blobs of roughly scale columns. Bit i is the sign of its own Perlin
// field.
type RandomField struct {
	scale float64
	bits  []*Perlin
}

func NewRandomField(bits int, scale float64, seed int64) *RandomField {
	f := &RandomField{scale: scale, bits: make([]*Perlin, bits)}
	for i := range f.bits {
		f.bits[i] = &Perlin{}
	}
	f.SetSeed(seed)
	return f
}

func (f *RandomField) SetSeed(seed int64) {
	for i, p := range f.bits {
		p.SetSeed(seed + int64(i))
	}
}

func (f *RandomField) Value(x, y int) int {
	v := 0
	for i, p := range f.bits {
		if p.Sample(float64(x)/f.scale, float64(y)/f.scale, 0.5) > 0 {
			v |= 1 << i
		}
	}
	return v
}

// ValueSource yields a discrete value per coordinate.
type ValueSource interface {
	Value(x, y int) int
}

var (
	levelsOnce sync.Once
	levels     []float64
)

// reference field sampling: an off-lattice grid so no sample sits on an
// integer point where Perlin noise is always zero.
const (
	levelGrid  = 48
	levelStep  = 0.371
	levelSeed  = 0
	levelDepth = 12
)

func referenceLevels() []float64 {
	levelsOnce.Do(func() {
		p := NewPerlin(levelSeed)
		out := make([]float64, 0, levelGrid*levelGrid*levelDepth)
		for i := 0; i < levelGrid; i++ {
			for j := 0; j < levelGrid; j++ {
				for k := 0; k < levelDepth; k++ {
					out = append(out, p.Sample(float64(i)*levelStep+0.13, float64(j)*levelStep+0.29, float64(k)*levelStep+0.41))
				}
			}
		}
		sort.Float64s(out)
		levels = out
	})
	return levels
}

// LevelForPromille returns the noise level exceeded by about promille/1000
// of all samples of a Perlin field.
func LevelForPromille(promille int) float64 {
	if promille <= 0 {
		return 1
	}
	if promille >= 1000 {
		return -1
	}
	l := referenceLevels()
	idx := len(l) * (1000 - promille) / 1000
	return l[idx]
}

// Thresholds are the presence levels compared against field samples.
type Thresholds struct {
	Flower          float64
	Grass           float64
	DoubleTallGrass float64
	Reed            float64
	Kelp            float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Flower:          LevelForPromille(40),
		Grass:           LevelForPromille(400),
		DoubleTallGrass: LevelForPromille(200),
		Reed:            LevelForPromille(400),
		Kelp:            LevelForPromille(100),
	}
}

// FieldSet holds every seeded field used by one export. It is created once
// per export and shared read-only by all tiles.
type FieldSet struct {
	Seed int64

	Dandelion  Sampler
	Rose       Sampler
	Grass      Sampler
	TallGrass  Sampler
	Kelp       Sampler
	Reed       Sampler
	FlowerType ValueSource

	Thresholds Thresholds
}

func NewFieldSet(seed int64) *FieldSet {
	return &FieldSet{
		Seed:       seed,
		Dandelion:  NewPerlin(seed + DandelionSeedOffset),
		Rose:       NewPerlin(seed + RoseSeedOffset),
		Grass:      NewPerlin(seed + GrassSeedOffset),
		TallGrass:  NewPerlin(seed + TallGrassSeedOffset),
		Kelp:       NewPerlin(seed + KelpSeedOffset),
		Reed:       NewPerlin(seed + ReedSeedOffset),
		FlowerType: NewRandomField(4, SmallBlobs, seed+FlowerTypeFieldSeedOffset),
		Thresholds: DefaultThresholds(),
	}
}

// TileRandom returns the decoration generator of a source tile.
func (fs *FieldSet) TileRandom(tileX, tileY int) *Random {
	return NewRandom(TileSeed(fs.Seed, tileX, tileY))
}

// CellRandom returns the grass generator of a cell in source scale
// coordinates.
func (fs *FieldSet) CellRandom(x, y int) *Random {
	return NewRandom(CellSeed(fs.Seed, x, y))
}

// Constant is a Sampler returning the same value everywhere.
type Constant float64

func (c Constant) Sample(x, y, z float64) float64 { return float64(c) }
