package raster

import (
	"wurmexport.ai/internal/sim/noise"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/tiles"
)

// Decorate applies the frost and tree layers of tile on top of the
// rasterized cells. Layers are visited in the tile's order and cells in
// dx-major order; rnd is drawn in a fixed sequence per cell so output is a
// function of the world seed alone.
func (p *Pipeline) Decorate(s *Scratch, sink Sink, tile source.Tile, tileX, tileY int, rnd *noise.Random) {
	ox, oy := p.Origin(tileX, tileY)
	scale := p.params.Mode.HScale()
	for _, layer := range tile.Layers() {
		switch l := layer.(type) {
		case *source.FrostLayer:
			for dx := 0; dx < source.TileSize; dx += scale {
				for dy := 0; dy < source.TileSize; dy += scale {
					cx, cy := dx/scale, dy/scale
					if s.TileHeight(cx, cy) < p.water {
						continue
					}
					if p.frost(tile, l, dx, dy) {
						sink.SetSurfaceType(ox+cx, oy+cy, tiles.Snow)
					}
				}
			}
		case *source.TreeLayer:
			for dx := 0; dx < source.TileSize; dx += scale {
				for dy := 0; dy < source.TileSize; dy += scale {
					cx, cy := dx/scale, dy/scale
					level := p.level(tile, l, dx, dy)
					if level <= 0 {
						continue
					}
					p.plant(sink, l, ox+cx, oy+cy, s.TileHeight(cx, cy), level, rnd)
				}
			}
		}
	}
}

// plant runs the marsh, moss and tree/bush rules of one tree layer cell.
func (p *Pipeline) plant(sink Sink, l *source.TreeLayer, x, y int, tileHeight float32, level int, rnd *noise.Random) {
	existing := sink.SurfaceTile(x, y)
	if !existing.AcceptsVegetation() {
		return
	}
	flooded := tileHeight < p.water
	if l.Swamp {
		shore := tileHeight - p.water
		if shore < 0 {
			shore = -shore
		}
		if shore < 1 && (existing == tiles.Grass || existing == tiles.Dirt) {
			sink.SetSurfaceType(x, y, tiles.Marsh)
		} else if rnd.NextInt(16) < level && sink.SurfaceTile(x, y) == tiles.Grass {
			sink.SetSurfaceType(x, y, tiles.Moss)
		}
	} else if !flooded && rnd.NextInt(32) < level && sink.SurfaceTile(x, y) == tiles.Grass {
		sink.SetSurfaceType(x, y, tiles.Moss)
	}

	if flooded || rnd.NextInt(16) >= level {
		return
	}
	if rnd.NextInt(5) == 0 {
		bush := tiles.BushFromInt(rnd.NextInt(6))
		age := tiles.AgeFromInt(rnd.NextInt(16))
		stage := tiles.GrowthFromInt(rnd.NextInt(4))
		sink.SetBush(x, y, bush, age, stage)
		return
	}
	if len(l.Species) == 0 {
		return
	}
	species := l.Species[rnd.NextInt(len(l.Species))]
	age := tiles.AgeFromInt(rnd.NextInt(16))
	stage := tiles.GrowthFromInt(rnd.NextInt(4))
	sink.SetTree(x, y, species, age, stage)
}

// frost reads the frost bit of a cell; under horizontal scaling the cell is
// frosted when at least half of its 16 columns are.
func (p *Pipeline) frost(tile source.Tile, l source.Layer, dx, dy int) bool {
	if p.params.Mode != HorizontalScaled {
		return tile.Bit(l, dx, dy)
	}
	n := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if tile.Bit(l, dx+i, dy+j) {
				n++
			}
		}
	}
	return n >= 8
}

// level reads a 0..15 layer value; under horizontal scaling it is the
// truncated mean of the cell's 16 columns.
func (p *Pipeline) level(tile source.Tile, l source.Layer, dx, dy int) int {
	if p.params.Mode != HorizontalScaled {
		return tile.Level(l, dx, dy)
	}
	total := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			total += tile.Level(l, dx+i, dy+j)
		}
	}
	return total / 16
}
