package raster

import (
	"wurmexport.ai/internal/sim/noise"
	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
)

// Rasterize sets rock height and surface tile of every cell of the tile
// from the aggregated fields in s. rnd is the tile's decoration generator;
// it is only drawn from for the optional moss roll.
func (p *Pipeline) Rasterize(s *Scratch, sink Sink, tileX, tileY int, rnd *noise.Random) {
	ox, oy := p.Origin(tileX, tileY)
	water := p.water
	for dx := 0; dx < s.n; dx++ {
		for dy := 0; dy < s.n; dy++ {
			x, y := ox+dx, oy+dy
			corner := s.Corner(dx, dy)
			surface := WurmHeight(corner - water)
			tileHeight := s.TileHeight(dx, dy)
			sink.SetRockHeight(x, y, WurmHeight(corner-s.TopLayerDepth(dx, dy)-water))

			switch t := s.Terrain(dx, dy); t {
			case terrain.Grass:
				if tileHeight >= water {
					p.placeGrass(sink, x, y, surface)
					if p.params.GrassMossOneIn > 0 && rnd.NextInt(p.params.GrassMossOneIn) == 0 {
						sink.SetSurfaceType(x, y, tiles.Moss)
					}
				} else {
					p.submerged(sink, x, y, tileHeight, surface)
				}

			case terrain.Beaches:
				tile := p.classifier.MaterialTile(s.Material(dx, dy))
				switch {
				case tileHeight >= water:
					sink.SetSurfaceTile(x, y, tile, surface)
				case water-tileHeight < 1 && (tile == tiles.Grass || tile == tiles.Sand) && p.reed(x, y, tileHeight):
					sink.SetSurfaceTile(x, y, tiles.Reed, surface)
				case tile == tiles.Grass:
					p.submerged(sink, x, y, tileHeight, surface)
				default:
					sink.SetSurfaceTile(x, y, tile, surface)
				}

			default:
				tile := p.classifier.Classify(t, s.Material(dx, dy))
				switch {
				case tileHeight < water && tile == tiles.Grass:
					p.submerged(sink, x, y, tileHeight, surface)
				case tile == tiles.Rock && s.Slope(dx, dy) > 1.0:
					sink.SetSurfaceTile(x, y, tiles.Cliff, surface)
				default:
					sink.SetSurfaceTile(x, y, tile, surface)
				}
			}
		}
	}
}

// submerged places kelp on vegetated ground deep enough under water where
// the kelp field allows it, and dirt otherwise. Every terrain branch uses it
// for grass below the water line.
func (p *Pipeline) submerged(sink Sink, x, y int, tileHeight float32, surface int16) {
	if p.water-tileHeight > p.params.KelpMinimumDepth && p.kelp(x, y, tileHeight) {
		sink.SetSurfaceTile(x, y, tiles.Kelp, surface)
		return
	}
	sink.SetSurfaceTile(x, y, tiles.Dirt, surface)
}

func (p *Pipeline) kelp(x, y int, tileHeight float32) bool {
	const s = noise.TinyBlobs
	return p.fields.Kelp.Sample(float64(x)/s, float64(y)/s, float64(tileHeight)/s) > p.fields.Thresholds.Kelp
}

func (p *Pipeline) reed(x, y int, tileHeight float32) bool {
	const s = noise.SmallBlobs
	return p.fields.Reed.Sample(float64(x)/s, float64(y)/s, float64(tileHeight)/s) > p.fields.Thresholds.Reed
}

// placeGrass puts dirt on a land cell and then grass, possibly with a
// flower, where the grass fields allow it. The fields are sampled in source
// column units (four per cell) with a constant third coordinate; existing
// maps depend on both.
func (p *Pipeline) placeGrass(sink Sink, x, y int, surface int16) {
	sink.SetSurfaceTile(x, y, tiles.Dirt, surface)

	const s = noise.SmallBlobs
	wpX, wpY := x*4, y*4
	fx, fy, fz := float64(wpX)/s, float64(wpY)/s, 1/s
	f := p.fields
	rnd := f.CellRandom(wpX, wpY)

	if rnd.NextInt(noise.FlowerIncidence) == 0 {
		if f.Dandelion.Sample(fx, fy, fz) > f.Thresholds.Flower || f.Rose.Sample(fx, fy, fz) > f.Thresholds.Flower {
			flower := tiles.FlowerFromInt(f.FlowerType.Value(wpX, wpY))
			sink.SetGrass(x, y, tiles.GrassShort, flower)
		}
		return
	}

	jitter := float32(rnd.NextFloat()*0.3) - 0.15
	density := f.Grass.Sample(fx, fy, fz) + float64(jitter)
	if density <= f.Thresholds.Grass {
		return
	}
	stage := tiles.GrassMedium
	if f.TallGrass.Sample(fx, fy, fz) > 0 && density > f.Thresholds.DoubleTallGrass {
		stage = tiles.GrassTall
		if rnd.NextInt(4) == 0 {
			stage = tiles.GrassWild
		}
	}
	sink.SetGrass(x, y, stage, tiles.FlowerNone)
}
