package source

import "wurmexport.ai/internal/sim/terrain"

// Source tiles are square blocks of columns.
const (
	TileSizeBits = 7
	TileSize     = 1 << TileSizeBits
)

// World is the read-only source of an export. Implementations must be safe
// for concurrent readers. Coordinates are in columns unless noted.
type World interface {
	Seed() int64
	WaterLevel() int
	MaxHeight() int

	// TileBounds returns the tile rectangle of the world.
	TileBounds() Bounds
	// Tile returns the layer data of the tile at tile coordinates (tx, ty).
	Tile(tx, ty int) (Tile, bool)

	HeightAt(x, y int) float32
	IntHeightAt(x, y int) int
	// TopLayerDepth is the depth of the terrain's top layer at column (x, y)
	// whose surface is at height z.
	TopLayerDepth(x, y, z int) float32
	TerrainAt(x, y int) terrain.Terrain
	MaterialAt(x, y int, height float32, intHeight int) terrain.Material
	// TerrainName returns the user-visible name of t, which for custom slots
	// is configured per world.
	TerrainName(t terrain.Terrain) string

	// AllLayers lists every layer used anywhere in the world.
	AllLayers() []Layer
}

// Tile exposes per-column layer values of one source tile. Local coordinates
// are 0..TileSize-1.
type Tile interface {
	Layers() []Layer
	Bit(l Layer, x, y int) bool
	Level(l Layer, x, y int) int
}

// Bounds is a rectangle in tile units.
type Bounds struct {
	LowX, LowY    int
	Width, Height int
}

func (b Bounds) HighX() int { return b.LowX + b.Width - 1 }
func (b Bounds) HighY() int { return b.LowY + b.Height - 1 }

func (b Bounds) Contains(tx, ty int) bool {
	return tx >= b.LowX && tx <= b.HighX() && ty >= b.LowY && ty <= b.HighY()
}

// Empty reports a rectangle without tiles.
func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }
