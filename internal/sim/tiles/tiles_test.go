package tiles

import "testing"

func TestWordPacking(t *testing.T) {
	w := Encode(Kelp, 0xA5, -123)
	if w.Type() != Kelp || w.Data() != 0xA5 || w.Height() != -123 {
		t.Fatalf("unexpected unpack: type=%v data=%x height=%d", w.Type(), w.Data(), w.Height())
	}
	w = w.WithType(Dirt)
	if w.Type() != Dirt || w.Data() != 0xA5 || w.Height() != -123 {
		t.Fatalf("WithType changed other fields: %v %x %d", w.Type(), w.Data(), w.Height())
	}
	w = w.WithData(0)
	if w.Data() != 0 || w.Height() != -123 {
		t.Fatalf("WithData changed other fields: %x %d", w.Data(), w.Height())
	}
}

func TestTreeAndBushTiles(t *testing.T) {
	for tr := Birch; tr < numTreeTypes; tr++ {
		got, ok := tr.Tile().Tree()
		if !ok || got != tr {
			t.Fatalf("tree %v round trip: got %v ok=%v", tr, got, ok)
		}
		if tr.Tile().AcceptsVegetation() {
			t.Fatalf("tree tile %v must not accept vegetation", tr.Tile())
		}
	}
	for b := Lavender; b < numBushTypes; b++ {
		got, ok := b.Tile().Bush()
		if !ok || got != b {
			t.Fatalf("bush %v round trip: got %v ok=%v", b, got, ok)
		}
	}
	if _, ok := Grass.Tree(); ok {
		t.Fatalf("grass is not a tree tile")
	}
}

func TestAcceptsVegetation(t *testing.T) {
	for _, tt := range []Type{Grass, Dirt, Marsh, Moss} {
		if !tt.AcceptsVegetation() {
			t.Fatalf("%v should accept vegetation", tt)
		}
	}
	for _, tt := range []Type{Rock, Sand, Kelp, Reed, Snow, Cliff, Lava, Clay} {
		if tt.AcceptsVegetation() {
			t.Fatalf("%v should not accept vegetation", tt)
		}
	}
}

func TestDataPacking(t *testing.T) {
	s, f := SplitGrassData(GrassData(GrassWild, FlowerType(9)))
	if s != GrassWild || f != 9 {
		t.Fatalf("grass data: stage=%v flower=%d", s, f)
	}
	a, g := SplitFoliageData(FoliageData(AgeFromInt(13), GrowthFromInt(2)))
	if a != 13 || g != 2 {
		t.Fatalf("foliage data: age=%d stage=%d", a, g)
	}
}
