package raster

import (
	"wurmexport.ai/internal/sim/classify"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/terrain"
)

// Scratch holds the per-tile aggregation buffers for an edge length of n
// cells. Every cell is rewritten by Aggregate before it is read, so a
// Scratch can be reused across tiles but never shared between goroutines.
type Scratch struct {
	n int

	corners   []float32 // (n+1)*(n+1) corner heights
	depths    []float32 // top layer depth at each cell's corner
	slopes    []float32
	heights   []float32 // average of the four corners
	terrains  []terrain.Terrain
	materials []terrain.Material

	terrainVotes  [terrain.NumTerrains]int
	materialVotes [terrain.NumMaterials]int
}

func NewScratch(n int) *Scratch {
	return &Scratch{
		n:         n,
		corners:   make([]float32, (n+1)*(n+1)),
		depths:    make([]float32, n*n),
		slopes:    make([]float32, n*n),
		heights:   make([]float32, n*n),
		terrains:  make([]terrain.Terrain, n*n),
		materials: make([]terrain.Material, n*n),
	}
}

func (s *Scratch) N() int { return s.n }

func (s *Scratch) cell(dx, dy int) int { return dx*s.n + dy }

func (s *Scratch) Corner(dx, dy int) float32            { return s.corners[dx*(s.n+1)+dy] }
func (s *Scratch) TopLayerDepth(dx, dy int) float32     { return s.depths[s.cell(dx, dy)] }
func (s *Scratch) Slope(dx, dy int) float32             { return s.slopes[s.cell(dx, dy)] }
func (s *Scratch) TileHeight(dx, dy int) float32        { return s.heights[s.cell(dx, dy)] }
func (s *Scratch) Terrain(dx, dy int) terrain.Terrain   { return s.terrains[s.cell(dx, dy)] }
func (s *Scratch) Material(dx, dy int) terrain.Material { return s.materials[s.cell(dx, dy)] }
func (s *Scratch) setCorner(dx, dy int, v float32)      { s.corners[dx*(s.n+1)+dy] = v }

// finishCell derives the cell quantities of (dx-1, dy-1) once its far
// corner (dx, dy) is known.
func (s *Scratch) finishCell(dx, dy int) {
	a, b := s.Corner(dx-1, dy-1), s.Corner(dx-1, dy)
	c, d := s.Corner(dx, dy-1), s.Corner(dx, dy)
	i := s.cell(dx-1, dy-1)
	s.heights[i] = (a + b + c + d) / 4
	s.slopes[i] = (max4(a, b, c, d) - min4(a, b, c, d)) / 4
}

// Aggregate fills s with the fields of source tile (tileX, tileY) for the
// pipeline's scaling mode. s must have the mode's edge length.
func (p *Pipeline) Aggregate(s *Scratch, tileX, tileY int) {
	if s.n != p.params.Mode.EdgeLength() {
		panic("raster: scratch edge length does not match scaling mode")
	}
	if p.params.Mode == HorizontalScaled {
		p.aggregateScaled(s, tileX, tileY)
		return
	}
	p.aggregateDirect(s, tileX, tileY)
}

func (p *Pipeline) aggregateDirect(s *Scratch, tileX, tileY int) {
	vs := p.params.Mode.VScale()
	n := s.n
	for dx := 0; dx <= n; dx++ {
		for dy := 0; dy <= n; dy++ {
			x, y := tileX<<source.TileSizeBits+dx, tileY<<source.TileSizeBits+dy
			height := p.world.HeightAt(x, y)
			intHeight := int(height + 0.5)
			s.setCorner(dx, dy, height*vs)
			if dx < n && dy < n {
				i := s.cell(dx, dy)
				s.depths[i] = p.world.TopLayerDepth(x, y, intHeight) * vs
				t := p.world.TerrainAt(x, y)
				s.terrains[i] = t
				s.materials[i] = p.world.MaterialAt(x, y, height, intHeight)
			}
			if dx > 0 && dy > 0 {
				s.finishCell(dx, dy)
			}
		}
	}
}

func (p *Pipeline) aggregateScaled(s *Scratch, tileX, tileY int) {
	for dx := 0; dx <= source.TileSize; dx += 4 {
		for dy := 0; dy <= source.TileSize; dy += 4 {
			x, y := tileX<<source.TileSizeBits+dx, tileY<<source.TileSizeBits+dy
			wdx, wdy := dx>>2, dy>>2
			s.setCorner(wdx, wdy, p.averageHeight(x, y))
			if dx < source.TileSize && dy < source.TileSize {
				i := s.cell(wdx, wdy)
				s.depths[i] = p.averageTopLayerDepth(x, y)
				s.terrains[i] = p.prevalentTerrain(s, x, y)
				s.materials[i] = p.prevalentMaterial(s, x, y)
			}
			if wdx > 0 && wdy > 0 {
				s.finishCell(wdx, wdy)
			}
		}
	}
}

// averageHeight averages the 4x4 columns centred on corner (x, y).
func (p *Pipeline) averageHeight(x, y int) float32 {
	var total float32
	for dx := -2; dx < 2; dx++ {
		for dy := -2; dy < 2; dy++ {
			total += p.world.HeightAt(x+dx, y+dy)
		}
	}
	return total / 16
}

func (p *Pipeline) averageTopLayerDepth(x, y int) float32 {
	var total float32
	for dx := -2; dx < 2; dx++ {
		for dy := -2; dy < 2; dy++ {
			total += p.world.TopLayerDepth(x+dx, y+dy, p.world.IntHeightAt(x+dx, y+dy))
		}
	}
	return total / 16
}

// prevalentTerrain votes over the 4x4 block starting at (x, y). A category
// must strictly exceed the best count to take over, so ties go to the one
// seen first in dx-major order.
func (p *Pipeline) prevalentTerrain(s *Scratch, x, y int) terrain.Terrain {
	votes := &s.terrainVotes
	*votes = [terrain.NumTerrains]int{}
	best, bestCount := terrain.Grass, 0
	for dx := 0; dx < 4; dx++ {
		for dy := 0; dy < 4; dy++ {
			t := p.world.TerrainAt(x+dx, y+dy)
			if !t.Valid() {
				continue
			}
			votes[t]++
			if votes[t] > bestCount {
				bestCount = votes[t]
				best = t
			}
		}
	}
	return best
}

// prevalentMaterial votes like prevalentTerrain but only over supported
// materials; unsupported samples are recorded and skipped. The result is
// NoMaterial when no sample was supported.
func (p *Pipeline) prevalentMaterial(s *Scratch, x, y int) terrain.Material {
	votes := &s.materialVotes
	*votes = [terrain.NumMaterials]int{}
	best, bestCount := terrain.NoMaterial, 0
	for dx := 0; dx < 4; dx++ {
		for dy := 0; dy < 4; dy++ {
			wx, wy := x+dx, y+dy
			height := p.world.HeightAt(wx, wy)
			m := p.world.MaterialAt(wx, wy, height, int(height+0.5))
			if !classify.Supported(m) {
				p.classifier.Unsupported().Add(m)
				continue
			}
			votes[m]++
			if votes[m] > bestCount {
				bestCount = votes[m]
				best = m
			}
		}
	}
	return best
}

func max4(a, b, c, d float32) float32 {
	return max(max(a, b), max(c, d))
}

func min4(a, b, c, d float32) float32 {
	return min(min(a, b), min(c, d))
}
