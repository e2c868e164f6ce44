package terrain

import "testing"

func TestCustomSlots(t *testing.T) {
	seen := map[Terrain]bool{}
	for n := 1; n <= NumCustom; n++ {
		tr, ok := Custom(n)
		if !ok {
			t.Fatalf("custom %d has no ordinal", n)
		}
		if got, _ := tr.CustomIndex(); got != n {
			t.Fatalf("custom %d round trip gave %d", n, got)
		}
		if seen[tr] {
			t.Fatalf("ordinal %d used twice", tr)
		}
		seen[tr] = true
	}
	if Grass.IsCustom() || Beaches.IsCustom() || Mycelium.IsCustom() || GrassPath.IsCustom() {
		t.Fatalf("named terrain reported as custom")
	}
	if tr, _ := Custom(1); tr != 22 {
		t.Fatalf("custom 1 ordinal = %d", tr)
	}
	if tr, _ := Custom(96); tr != NumTerrains-1 {
		t.Fatalf("custom 96 ordinal = %d", tr)
	}
	if _, ok := Custom(97); ok {
		t.Fatalf("custom 97 must not exist")
	}
}

func TestNamesAndDefaults(t *testing.T) {
	for i := 0; i < NumTerrains; i++ {
		tr := Terrain(i)
		if tr.String() == "" {
			t.Fatalf("terrain %d has no name", i)
		}
		if !DefaultMaterial(tr).Valid() {
			t.Fatalf("terrain %v has no default material", tr)
		}
	}
	if Material(9).Name() != "Stationary Water" {
		t.Fatalf("block 9 name = %q", Material(9).Name())
	}
	if Material(500).Name() != "Block 500" {
		t.Fatalf("out of range name = %q", Material(500).Name())
	}
}
