package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadWorld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlds", "w.world.zst")
	in := WorldV1{
		Header:      Header{Version: Version, WorldID: "w", Seed: 42},
		Seed:        42,
		WaterLevel:  62,
		MaxHeight:   256,
		TileSize:    128,
		WidthTiles:  1,
		HeightTiles: 1,
		Layers:      []LayerV1{{ID: "frost", Name: "Frost", Kind: "frost"}},
		Tiles:       []TileV1{{X: 0, Y: 0, Terrains: "AQE="}},
	}
	if err := WriteWorld(path, in); err != nil {
		t.Fatalf("WriteWorld: %v", err)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.WorldID != "w" || h.Seed != 42 || h.Version != Version {
		t.Fatalf("header = %+v", h)
	}

	out, err := ReadWorld(path)
	if err != nil {
		t.Fatalf("ReadWorld: %v", err)
	}
	if out.WaterLevel != 62 || len(out.Layers) != 1 || len(out.Tiles) != 1 || out.Tiles[0].Terrains != "AQE=" {
		t.Fatalf("world = %+v", out)
	}
}

func TestReadWorldRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.world.zst")
	if err := WriteWorld(path, WorldV1{Header: Header{Version: Version + 1}}); err != nil {
		t.Fatalf("WriteWorld: %v", err)
	}
	if _, err := ReadWorld(path); err == nil {
		t.Fatalf("expected version error")
	}
}
