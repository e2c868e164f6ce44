package source

import (
	"fmt"
	"sort"
	"strings"

	"wurmexport.ai/internal/persistence/snapshot"
	"wurmexport.ai/internal/sim/encoding"
	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
)

const (
	kindFrost = "frost"
	kindTrees = "trees"
	kindOther = "other"
)

// ToSnapshot converts w into its file form. worldID is informational.
func ToSnapshot(w *GridWorld, worldID string) snapshot.WorldV1 {
	b := w.TileBounds()
	out := snapshot.WorldV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: worldID,
			Seed:    w.Seed(),
		},
		Seed:        w.Seed(),
		WaterLevel:  w.WaterLevel(),
		MaxHeight:   w.MaxHeight(),
		TileSize:    TileSize,
		LowTileX:    b.LowX,
		LowTileY:    b.LowY,
		WidthTiles:  b.Width,
		HeightTiles: b.Height,
	}

	for t, name := range w.customNames {
		slot, ok := t.CustomIndex()
		if !ok {
			continue
		}
		out.CustomTerrains = append(out.CustomTerrains, snapshot.CustomTerrainV1{Slot: slot, Name: name})
	}
	sort.Slice(out.CustomTerrains, func(i, j int) bool { return out.CustomTerrains[i].Slot < out.CustomTerrains[j].Slot })

	for _, l := range w.AllLayers() {
		out.Layers = append(out.Layers, layerToV1(l))
	}

	for _, t := range w.Tiles() {
		tv := snapshot.TileV1{
			X:        t.X,
			Y:        t.Y,
			Heights:  append([]float32(nil), t.Heights...),
			TopLayer: append([]float32(nil), t.TopLayer...),
			Terrains: encoding.EncodeRLE(t.Terrains),
		}
		if t.Materials != nil {
			mats := make([]uint16, len(t.Materials))
			for i, m := range t.Materials {
				mats[i] = uint16(m)
			}
			tv.Materials = encoding.EncodeRLE(mats)
		}
		for _, l := range t.layers {
			tv.Layers = append(tv.Layers, snapshot.TileLayerV1{ID: l.ID(), Values: encoding.EncodeRLE(t.values[l])})
		}
		out.Tiles = append(out.Tiles, tv)
	}
	return out
}

// FromSnapshot rebuilds a GridWorld from its file form.
func FromSnapshot(s snapshot.WorldV1) (*GridWorld, error) {
	if s.TileSize != 0 && s.TileSize != TileSize {
		return nil, fmt.Errorf("unsupported tile size %d (want %d)", s.TileSize, TileSize)
	}
	bounds := Bounds{LowX: s.LowTileX, LowY: s.LowTileY, Width: s.WidthTiles, Height: s.HeightTiles}
	if bounds.Empty() {
		return nil, fmt.Errorf("world has no tiles")
	}
	w := NewGridWorld(s.Seed, s.WaterLevel, s.MaxHeight, bounds)

	for _, c := range s.CustomTerrains {
		t, ok := terrain.Custom(c.Slot)
		if !ok {
			return nil, fmt.Errorf("custom terrain slot %d out of range", c.Slot)
		}
		w.SetCustomName(t, c.Name)
	}

	layers := map[string]Layer{}
	for _, lv := range s.Layers {
		l, err := layerFromV1(lv)
		if err != nil {
			return nil, err
		}
		layers[lv.ID] = l
	}

	const n = TileSize * TileSize
	for _, tv := range s.Tiles {
		t := w.AddTile(tv.X, tv.Y)
		if t == nil {
			return nil, fmt.Errorf("tile %d,%d outside world bounds", tv.X, tv.Y)
		}
		if len(tv.Heights) != n || len(tv.TopLayer) != n {
			return nil, fmt.Errorf("tile %d,%d: bad column count", tv.X, tv.Y)
		}
		copy(t.Heights, tv.Heights)
		copy(t.TopLayer, tv.TopLayer)

		terrains, err := encoding.DecodeRLE[uint8](tv.Terrains, n)
		if err != nil {
			return nil, fmt.Errorf("tile %d,%d terrains: %w", tv.X, tv.Y, err)
		}
		for i, v := range terrains {
			tr := terrain.Terrain(v)
			if !tr.Valid() {
				return nil, fmt.Errorf("tile %d,%d: terrain %d out of range", tv.X, tv.Y, v)
			}
			t.Terrains[i] = tr
		}

		if tv.Materials != "" {
			mats, err := encoding.DecodeRLE[uint16](tv.Materials, n)
			if err != nil {
				return nil, fmt.Errorf("tile %d,%d materials: %w", tv.X, tv.Y, err)
			}
			t.Materials = make([]terrain.Material, n)
			for i, m := range mats {
				t.Materials[i] = terrain.Material(int16(m))
			}
		}

		for _, lv := range tv.Layers {
			l, ok := layers[lv.ID]
			if !ok {
				if l, ok = BuiltinLayer(lv.ID); !ok {
					return nil, fmt.Errorf("tile %d,%d: undefined layer %q", tv.X, tv.Y, lv.ID)
				}
			}
			vals, err := encoding.DecodeRLE[uint8](lv.Values, n)
			if err != nil {
				return nil, fmt.Errorf("tile %d,%d layer %s: %w", tv.X, tv.Y, lv.ID, err)
			}
			t.SetLayerValues(l, vals)
		}
	}
	return w, nil
}

func layerToV1(l Layer) snapshot.LayerV1 {
	switch v := l.(type) {
	case *FrostLayer:
		return snapshot.LayerV1{ID: v.ID(), Name: v.Name(), Kind: kindFrost}
	case *TreeLayer:
		species := make([]string, len(v.Species))
		for i, s := range v.Species {
			species[i] = s.String()
		}
		return snapshot.LayerV1{ID: v.ID(), Name: v.Name(), Kind: kindTrees, Swamp: v.Swamp, Species: species}
	case *OtherLayer:
		return snapshot.LayerV1{ID: v.ID(), Name: v.Name(), Kind: kindOther, Silent: v.Silent}
	}
	return snapshot.LayerV1{ID: l.ID(), Name: l.Name(), Kind: kindOther}
}

func layerFromV1(lv snapshot.LayerV1) (Layer, error) {
	if l, ok := BuiltinLayer(lv.ID); ok {
		return l, nil
	}
	switch lv.Kind {
	case kindFrost:
		return Frost, nil
	case kindTrees:
		if len(lv.Species) == 0 {
			return nil, fmt.Errorf("tree layer %q has no species", lv.ID)
		}
		species := make([]tiles.TreeType, 0, len(lv.Species))
		for _, name := range lv.Species {
			s, ok := tiles.TreeTypeByName(strings.ToUpper(name))
			if !ok {
				return nil, fmt.Errorf("tree layer %q: unknown species %q", lv.ID, name)
			}
			species = append(species, s)
		}
		return &TreeLayer{LayerID: lv.ID, LayerName: lv.Name, Swamp: lv.Swamp, Species: species}, nil
	case kindOther, "":
		return &OtherLayer{LayerID: lv.ID, LayerName: lv.Name, Silent: lv.Silent}, nil
	}
	return nil, fmt.Errorf("layer %q: unknown kind %q", lv.ID, lv.Kind)
}
