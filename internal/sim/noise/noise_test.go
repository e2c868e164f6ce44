package noise

import (
	"math"
	"testing"
)

func TestRandomMatchesReferenceSequence(t *testing.T) {
	if got := NewRandom(42).Int32(); got != -1170105035 {
		t.Fatalf("seed 42 first int: %d", got)
	}
	if got := NewRandom(0).Int32(); got != -1155484576 {
		t.Fatalf("seed 0 first int: %d", got)
	}
	r := NewRandom(42)
	want := []int{0, 3, 8, 4, 0, 5, 5, 8, 9, 3}
	for i, w := range want {
		if got := r.NextInt(10); got != w {
			t.Fatalf("draw %d: got %d want %d", i, got, w)
		}
	}
	r = NewRandom(12345)
	for i, w := range []int{5, 8, 14, 14, 13, 0} {
		if got := r.NextInt(16); got != w {
			t.Fatalf("power of two draw %d: got %d want %d", i, got, w)
		}
	}
	if got := NewRandom(7).NextFloat(); math.Abs(float64(got)-0.7306990027427673) > 1e-7 {
		t.Fatalf("seed 7 first float: %v", got)
	}
}

func TestSeedDerivationWraps(t *testing.T) {
	if got := TileSeed(100, 1, 2); got != 100+65537+2+4099 {
		t.Fatalf("tile seed: %d", got)
	}
	// 40000*65537 overflows int32.
	if got, want := TileSeed(0, 40000, 0), int64(-1673487296)+4099; got != want {
		t.Fatalf("wrapped tile seed: got %d want %d", got, want)
	}
	if got := CellSeed(5, 4, 8); got != 5+4*65537+8*4099 {
		t.Fatalf("cell seed: %d", got)
	}
}

func TestPerlinDeterministicAndBounded(t *testing.T) {
	a, b := NewPerlin(99), NewPerlin(99)
	other := NewPerlin(100)
	differs := false
	for i := 0; i < 2000; i++ {
		x := float64(i)*0.173 - 80
		y := float64(i)*0.059 + 12
		z := float64(i) * 0.031
		va := a.Sample(x, y, z)
		if va != b.Sample(x, y, z) {
			t.Fatalf("not deterministic at %d", i)
		}
		if va < -1 || va > 1 {
			t.Fatalf("sample %v out of range", va)
		}
		if va != other.Sample(x, y, z) {
			differs = true
		}
	}
	if !differs {
		t.Fatalf("different seeds produced identical fields")
	}
	if v := a.Sample(3, 4, 5); v != 0 {
		t.Fatalf("lattice points must sample to zero, got %v", v)
	}
}

func TestLevelForPromilleOrdering(t *testing.T) {
	kelp, grass, flower := LevelForPromille(100), LevelForPromille(400), LevelForPromille(40)
	if !(flower > kelp && kelp > grass) {
		t.Fatalf("levels not ordered: flower=%v kelp=%v grass=%v", flower, kelp, grass)
	}
	if LevelForPromille(0) != 1 || LevelForPromille(1000) != -1 {
		t.Fatalf("edge promille levels wrong")
	}

	// The level must select roughly the requested share of a fresh field.
	p := NewPerlin(2024)
	above, total := 0, 0
	for i := 0; i < 60; i++ {
		for j := 0; j < 60; j++ {
			total++
			if p.Sample(float64(i)*0.413+0.07, float64(j)*0.389+0.11, 0.5) > grass {
				above++
			}
		}
	}
	share := float64(above) / float64(total)
	if share < 0.25 || share > 0.55 {
		t.Fatalf("grass level selects %.3f of samples", share)
	}
}

func TestRandomFieldRange(t *testing.T) {
	f := NewRandomField(4, SmallBlobs, 7)
	seen := map[int]bool{}
	for x := 0; x < 400; x += 3 {
		for y := 0; y < 400; y += 5 {
			v := f.Value(x, y)
			if v < 0 || v > 15 {
				t.Fatalf("value %d out of 4-bit range", v)
			}
			seen[v] = true
		}
	}
	if len(seen) < 4 {
		t.Fatalf("field too uniform: %v", seen)
	}
}

func TestFieldSetSeedsDiffer(t *testing.T) {
	fs := NewFieldSet(1)
	g := fs.Grass.Sample(1.37, 2.11, 0.5)
	k := fs.Kelp.Sample(1.37, 2.11, 0.5)
	r := fs.Reed.Sample(1.37, 2.11, 0.5)
	if g == k && k == r {
		t.Fatalf("fields share a seed")
	}
	if fs.TileRandom(3, 4).Int32() != NewRandom(TileSeed(1, 3, 4)).Int32() {
		t.Fatalf("tile generator seed mismatch")
	}
}
