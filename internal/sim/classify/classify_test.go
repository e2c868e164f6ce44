package classify

import (
	"sync"
	"testing"

	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
)

type nameMap map[terrain.Terrain]string

func (m nameMap) TerrainName(t terrain.Terrain) string { return m[t] }

func TestClassifyTotal(t *testing.T) {
	c := New(nameMap{})
	for tr := 0; tr < terrain.NumTerrains; tr++ {
		for m := -3; m < terrain.NumMaterials+300; m += 7 {
			got := c.Classify(terrain.Terrain(tr), terrain.Material(m))
			if got.String() == "" {
				t.Fatalf("terrain %d material %d: empty tile", tr, m)
			}
		}
	}
}

func TestClassifyChain(t *testing.T) {
	c6, _ := terrain.Custom(6)
	c7, _ := terrain.Custom(7)
	c8, _ := terrain.Custom(8)
	c := New(nameMap{c6: "w:steppe", c7: "W:TUNDRA", c8: "Meadow"})

	cases := []struct {
		name string
		t    terrain.Terrain
		m    terrain.Material
		want tiles.Type
	}{
		{"table entry wins over material", terrain.Sandstone, 2, tiles.Rock},
		{"soul sand maps to tar", terrain.SoulSand, 1, tiles.Tar},
		{"grass defers to material", terrain.Grass, 2, tiles.Grass},
		{"custom steppe", c6, 1, tiles.Steppe},
		{"custom tundra", c7, 1, tiles.Tundra},
		{"custom unnamed falls to material", c8, 12, tiles.Sand},
		{"water with unsupported material", terrain.Water, 9, DefaultTile},
		{"out of range material", terrain.Grass, 4000, DefaultTile},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.t, tc.m); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
	ids := c.Unsupported().IDs()
	if len(ids) != 2 || ids[0] != 9 || ids[1] != 4000 {
		t.Fatalf("unexpected unsupported ids: %v", ids)
	}
}

func TestUnsupportedRecordedOncePerID(t *testing.T) {
	c := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Classify(terrain.Water, 9)
				c.Classify(terrain.Water, 121)
			}
		}()
	}
	wg.Wait()
	u := c.Unsupported()
	if u.Len() != 2 {
		t.Fatalf("want 2 distinct ids, got %v", u.IDs())
	}
	if u.Count(9) != 800 {
		t.Fatalf("want 800 occurrences of 9, got %d", u.Count(9))
	}
	names := u.Names()
	if names[0] != "Stationary Water" || names[1] != "End Stone" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestUnsupportedIgnoresNoMaterial(t *testing.T) {
	s := NewUnsupportedSet()
	s.Add(terrain.NoMaterial)
	if s.Len() != 0 {
		t.Fatalf("NoMaterial must not be recorded")
	}
	other := NewUnsupportedSet()
	other.Add(36)
	other.Add(36)
	s.Merge(other)
	if s.Count(36) != 2 {
		t.Fatalf("merge lost counts: %d", s.Count(36))
	}
}
