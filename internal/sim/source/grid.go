package source

import (
	"math"
	"sort"

	"wurmexport.ai/internal/sim/terrain"
)

type TileKey struct {
	X, Y int
}

// GridWorld is an in-memory World. Build it single-threaded, then share it
// read-only.
type GridWorld struct {
	seed       int64
	waterLevel int
	maxHeight  int
	bounds     Bounds

	tiles       map[TileKey]*GridTile
	customNames map[terrain.Terrain]string
}

func NewGridWorld(seed int64, waterLevel, maxHeight int, bounds Bounds) *GridWorld {
	return &GridWorld{
		seed:        seed,
		waterLevel:  waterLevel,
		maxHeight:   maxHeight,
		bounds:      bounds,
		tiles:       map[TileKey]*GridTile{},
		customNames: map[terrain.Terrain]string{},
	}
}

func (w *GridWorld) Seed() int64        { return w.seed }
func (w *GridWorld) WaterLevel() int    { return w.waterLevel }
func (w *GridWorld) MaxHeight() int     { return w.maxHeight }
func (w *GridWorld) TileBounds() Bounds { return w.bounds }

// SetCustomName names custom terrain slot t.
func (w *GridWorld) SetCustomName(t terrain.Terrain, name string) {
	w.customNames[t] = name
}

func (w *GridWorld) TerrainName(t terrain.Terrain) string {
	if n, ok := w.customNames[t]; ok {
		return n
	}
	return t.String()
}

// CustomNames returns the configured custom names keyed by terrain.
func (w *GridWorld) CustomNames() map[terrain.Terrain]string {
	out := make(map[terrain.Terrain]string, len(w.customNames))
	for k, v := range w.customNames {
		out[k] = v
	}
	return out
}

// AddTile creates (or returns) the tile at tile coordinates (tx, ty). Tiles
// outside the world rectangle are not addressable and yield nil.
func (w *GridWorld) AddTile(tx, ty int) *GridTile {
	if !w.bounds.Contains(tx, ty) {
		return nil
	}
	k := TileKey{tx, ty}
	if t, ok := w.tiles[k]; ok {
		return t
	}
	t := NewGridTile(tx, ty)
	w.tiles[k] = t
	return t
}

func (w *GridWorld) Tile(tx, ty int) (Tile, bool) {
	t, ok := w.tiles[TileKey{tx, ty}]
	if !ok {
		return nil, false
	}
	return t, true
}

// GridTile returns the concrete tile at tile coordinates.
func (w *GridWorld) GridTile(tx, ty int) (*GridTile, bool) {
	t, ok := w.tiles[TileKey{tx, ty}]
	return t, ok
}

// Tiles returns every present tile sorted by (Y, X).
func (w *GridWorld) Tiles() []*GridTile {
	out := make([]*GridTile, 0, len(w.tiles))
	for _, t := range w.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// column clamps (x, y) into the world rectangle and resolves the tile and
// local offset. A missing tile yields nil.
func (w *GridWorld) column(x, y int) (*GridTile, int) {
	minX, minY := w.bounds.LowX<<TileSizeBits, w.bounds.LowY<<TileSizeBits
	maxX, maxY := ((w.bounds.HighX()+1)<<TileSizeBits)-1, ((w.bounds.HighY()+1)<<TileSizeBits)-1
	x = clampInt(x, minX, maxX)
	y = clampInt(y, minY, maxY)
	t := w.tiles[TileKey{x >> TileSizeBits, y >> TileSizeBits}]
	if t == nil {
		return nil, 0
	}
	return t, t.index(x&(TileSize-1), y&(TileSize-1))
}

func (w *GridWorld) HeightAt(x, y int) float32 {
	t, i := w.column(x, y)
	if t == nil {
		return 0
	}
	return t.Heights[i]
}

func (w *GridWorld) IntHeightAt(x, y int) int {
	return int(math.Floor(float64(w.HeightAt(x, y)) + 0.5))
}

func (w *GridWorld) TopLayerDepth(x, y, z int) float32 {
	t, i := w.column(x, y)
	if t == nil {
		return 0
	}
	return t.TopLayer[i]
}

func (w *GridWorld) TerrainAt(x, y int) terrain.Terrain {
	t, i := w.column(x, y)
	if t == nil {
		return terrain.Grass
	}
	return t.Terrains[i]
}

func (w *GridWorld) MaterialAt(x, y int, height float32, intHeight int) terrain.Material {
	t, i := w.column(x, y)
	if t == nil {
		return terrain.DefaultMaterial(terrain.Grass)
	}
	if t.Materials != nil && t.Materials[i] != defaultMaterial {
		return t.Materials[i]
	}
	return terrain.DefaultMaterial(t.Terrains[i])
}

// AllLayers returns every layer present in any tile, ordered by first
// appearance in (Y, X) tile order.
func (w *GridWorld) AllLayers() []Layer {
	seen := map[Layer]bool{}
	var out []Layer
	for _, t := range w.Tiles() {
		for _, l := range t.layers {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// defaultMaterial marks a column that uses its terrain's default material.
const defaultMaterial terrain.Material = -2

// GridTile is one source tile of a GridWorld. Column slices are indexed by
// x + y*TileSize.
type GridTile struct {
	X, Y int

	Heights   []float32
	TopLayer  []float32
	Terrains  []terrain.Terrain
	Materials []terrain.Material // nil until a column overrides its default

	layers []Layer
	values map[Layer][]uint8
}

func NewGridTile(tx, ty int) *GridTile {
	const n = TileSize * TileSize
	return &GridTile{
		X:        tx,
		Y:        ty,
		Heights:  make([]float32, n),
		TopLayer: make([]float32, n),
		Terrains: make([]terrain.Terrain, n),
		values:   map[Layer][]uint8{},
	}
}

func (t *GridTile) index(x, y int) int { return x + y*TileSize }

func (t *GridTile) SetHeight(x, y int, h float32) { t.Heights[t.index(x, y)] = h }

func (t *GridTile) SetTopLayer(x, y int, depth float32) { t.TopLayer[t.index(x, y)] = depth }

func (t *GridTile) SetTerrain(x, y int, tr terrain.Terrain) { t.Terrains[t.index(x, y)] = tr }

// SetMaterial overrides the material of one column.
func (t *GridTile) SetMaterial(x, y int, m terrain.Material) {
	if t.Materials == nil {
		t.Materials = make([]terrain.Material, TileSize*TileSize)
		for i := range t.Materials {
			t.Materials[i] = defaultMaterial
		}
	}
	t.Materials[t.index(x, y)] = m
}

// Fill sets every column of the tile.
func (t *GridTile) Fill(height, topLayer float32, tr terrain.Terrain) {
	for i := range t.Heights {
		t.Heights[i] = height
		t.TopLayer[i] = topLayer
		t.Terrains[i] = tr
	}
}

func (t *GridTile) Layers() []Layer { return t.layers }

// LayerValues returns the raw per-column values of l, or nil.
func (t *GridTile) LayerValues(l Layer) []uint8 { return t.values[l] }

func (t *GridTile) ensure(l Layer) []uint8 {
	v, ok := t.values[l]
	if !ok {
		v = make([]uint8, TileSize*TileSize)
		t.values[l] = v
		t.layers = append(t.layers, l)
	}
	return v
}

// SetLevel stores a 0..15 level; the layer joins the tile on first use.
func (t *GridTile) SetLevel(l Layer, x, y, level int) {
	t.ensure(l)[t.index(x, y)] = uint8(clampInt(level, 0, 15))
}

func (t *GridTile) SetBit(l Layer, x, y int, on bool) {
	var v uint8
	if on {
		v = 1
	}
	t.ensure(l)[t.index(x, y)] = v
}

// SetLayerValues replaces all values of l, adding it to the tile.
func (t *GridTile) SetLayerValues(l Layer, vals []uint8) {
	dst := t.ensure(l)
	copy(dst, vals)
}

func (t *GridTile) Bit(l Layer, x, y int) bool {
	v := t.values[l]
	if v == nil {
		return false
	}
	return v[t.index(x, y)] != 0
}

func (t *GridTile) Level(l Layer, x, y int) int {
	v := t.values[l]
	if v == nil {
		return 0
	}
	return int(v[t.index(x, y)])
}
