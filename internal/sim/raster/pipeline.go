// Package raster turns source world tiles into target map cells: it
// down-samples columns, picks a surface tile per cell and decorates the
// result with vegetation.
package raster

import (
	"fmt"
	"math"

	"wurmexport.ai/internal/sim/classify"
	"wurmexport.ai/internal/sim/noise"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/tiles"
)

// Mode is the scaling applied between source columns and target cells.
type Mode uint8

const (
	// Unscaled maps one column to one cell and one metre to one metre.
	Unscaled Mode = iota
	// HorizontalScaled maps 4x4 columns to one cell.
	HorizontalScaled
	// VerticalScaled multiplies heights and depths by 4.
	VerticalScaled
)

func (m Mode) String() string {
	switch m {
	case Unscaled:
		return "unscaled (horizontal 1:1, vertical 1:1)"
	case HorizontalScaled:
		return "horizontal (horizontal 4:1, vertical 1:1)"
	case VerticalScaled:
		return "vertical (horizontal 1:1, vertical 1:4)"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// HScale is the number of source columns per target cell edge.
func (m Mode) HScale() int {
	if m == HorizontalScaled {
		return 4
	}
	return 1
}

// VScale multiplies source heights.
func (m Mode) VScale() float32 {
	if m == VerticalScaled {
		return 4
	}
	return 1
}

// EdgeLength is the number of target cells along one source tile edge.
func (m Mode) EdgeLength() int { return source.TileSize / m.HScale() }

// Sink receives the cells of the target map. Implementations need not be
// safe for concurrent use.
type Sink interface {
	SetRockHeight(x, y int, h int16)
	// SetSurfaceTile sets type and height and clears tile data.
	SetSurfaceTile(x, y int, t tiles.Type, h int16)
	// SetSurfaceType replaces type, clears data and keeps height.
	SetSurfaceType(x, y int, t tiles.Type)
	SetGrass(x, y int, stage tiles.GrassStage, flower tiles.FlowerType)
	SetBush(x, y int, b tiles.BushType, age tiles.FoliageAge, stage tiles.GrowthStage)
	SetTree(x, y int, t tiles.TreeType, age tiles.FoliageAge, stage tiles.GrowthStage)
	SurfaceTile(x, y int) tiles.Type
}

type Params struct {
	Mode Mode
	// KelpMinimumDepth is the water depth kelp needs, in scaled metres.
	KelpMinimumDepth float32
	// GrassMossOneIn > 0 turns land grass cells to moss with probability
	// 1/GrassMossOneIn.
	GrassMossOneIn int
}

// Pipeline holds everything one export shares between tiles. It is
// read-only after construction apart from the classifier's unsupported set,
// so one Pipeline may serve several workers, each with its own Scratch and
// Sink.
type Pipeline struct {
	world      source.World
	fields     *noise.FieldSet
	classifier *classify.Classifier
	params     Params

	water            float32
	offsetX, offsetY int
}

func New(world source.World, fields *noise.FieldSet, classifier *classify.Classifier, p Params) *Pipeline {
	b := world.TileBounds()
	return &Pipeline{
		world:      world,
		fields:     fields,
		classifier: classifier,
		params:     p,
		water:      float32(world.WaterLevel()) * p.Mode.VScale(),
		offsetX:    -b.LowX << source.TileSizeBits,
		offsetY:    -b.LowY << source.TileSizeBits,
	}
}

func (p *Pipeline) Params() Params { return p.params }

// ScaledWaterLevel is the water level in target height units before the
// x10 conversion.
func (p *Pipeline) ScaledWaterLevel() float32 { return p.water }

// Origin returns the target coordinates of the first cell of a source tile.
// Target coordinates start at the world's lowest tile corner.
func (p *Pipeline) Origin(tileX, tileY int) (int, int) {
	h := p.params.Mode.HScale()
	return ((tileX << source.TileSizeBits) + p.offsetX) / h, ((tileY << source.TileSizeBits) + p.offsetY) / h
}

// ProcessTile aggregates, rasterizes and decorates one source tile into sink.
// It returns false, touching nothing, when the world has no such tile.
func (p *Pipeline) ProcessTile(s *Scratch, sink Sink, tileX, tileY int) bool {
	tile, ok := p.world.Tile(tileX, tileY)
	if !ok {
		return false
	}
	p.Aggregate(s, tileX, tileY)
	rnd := p.fields.TileRandom(tileX, tileY)
	p.Rasterize(s, sink, tileX, tileY, rnd)
	p.Decorate(s, sink, tile, tileX, tileY, rnd)
	return true
}

// WurmHeight converts a height in metres to target units of a tenth of a
// metre, rounding half up and saturating at the int16 range.
func WurmHeight(metres float32) int16 {
	v := math.Floor(float64(float64(metres)*10) + 0.5)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
