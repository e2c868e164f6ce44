// Package gen builds deterministic source worlds for the CLI and tests.
package gen

import (
	"wurmexport.ai/internal/sim/noise"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/terrain"
)

type Biome uint8

const (
	Plains Biome = iota
	Forest
	Desert
	Highlands
)

func (b Biome) String() string {
	switch b {
	case Plains:
		return "PLAINS"
	case Forest:
		return "FOREST"
	case Desert:
		return "DESERT"
	default:
		return "HIGHLANDS"
	}
}

func BiomeFrom(h uint64) Biome {
	return Biome(h % 4)
}

// BiomeAt picks a biome per square region of regionSize columns.
func BiomeAt(seed int64, x, y, regionSize int) Biome {
	if regionSize <= 0 {
		regionSize = 1
	}
	return BiomeFrom(Hash2(seed, FloorDiv(x, regionSize), FloorDiv(y, regionSize)))
}

type Params struct {
	Seed int64

	LowTileX, LowTileY      int
	WidthTiles, HeightTiles int

	WaterLevel int
	MaxHeight  int

	// Relief: height = BaseHeight + Relief*noise.
	BaseHeight float64
	Relief     float64
	// Horizontal feature size of the relief noise, in columns.
	ReliefScale float64

	BiomeRegionSize int
	// Height above which frost covers the ground.
	SnowLine float64

	// ClusterProbScalePermille scales forest/steppe cluster frequency.
	ClusterProbScalePermille int
	// MissingTilePermille leaves tiles out of the world.
	MissingTilePermille int
	// AnnotationLayer adds a layer the exporter does not render.
	AnnotationLayer bool
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:                     seed,
		WidthTiles:               2,
		HeightTiles:              2,
		WaterLevel:               62,
		MaxHeight:                256,
		BaseHeight:               66,
		Relief:                   26,
		ReliefScale:              90,
		BiomeRegionSize:          96,
		SnowLine:                 86,
		ClusterProbScalePermille: 1000,
	}
}

func (p *Params) normalize() {
	d := DefaultParams(p.Seed)
	if p.WidthTiles <= 0 {
		p.WidthTiles = d.WidthTiles
	}
	if p.HeightTiles <= 0 {
		p.HeightTiles = d.HeightTiles
	}
	if p.MaxHeight <= 0 {
		p.MaxHeight = d.MaxHeight
	}
	if p.ReliefScale <= 0 {
		p.ReliefScale = d.ReliefScale
	}
	if p.BiomeRegionSize <= 0 {
		p.BiomeRegionSize = d.BiomeRegionSize
	}
}

// Names given to the two custom slots the generator paints.
const (
	SteppeSlot = 1
	TundraSlot = 2
)

// Generate builds a world from p. Equal params give equal worlds.
func Generate(p Params) *source.GridWorld {
	p.normalize()
	w := source.NewGridWorld(p.Seed, p.WaterLevel, p.MaxHeight, source.Bounds{
		LowX: p.LowTileX, LowY: p.LowTileY, Width: p.WidthTiles, Height: p.HeightTiles,
	})
	steppe, _ := terrain.Custom(SteppeSlot)
	tundra, _ := terrain.Custom(TundraSlot)
	w.SetCustomName(steppe, "W:Steppe")
	w.SetCustomName(tundra, "W:Tundra")

	relief := noise.NewPerlin(p.Seed + 1)
	detail := noise.NewPerlin(p.Seed + 2)
	annotations := &source.OtherLayer{LayerID: "annotations", LayerName: "Annotations"}

	for ty := p.LowTileY; ty < p.LowTileY+p.HeightTiles; ty++ {
		for tx := p.LowTileX; tx < p.LowTileX+p.WidthTiles; tx++ {
			if p.MissingTilePermille > 0 && int(Hash2(p.Seed+7, tx, ty)%1000) < p.MissingTilePermille {
				continue
			}
			t := w.AddTile(tx, ty)
			for ly := 0; ly < source.TileSize; ly++ {
				for lx := 0; lx < source.TileSize; lx++ {
					x := tx<<source.TileSizeBits + lx
					y := ty<<source.TileSizeBits + ly
					h := p.height(relief, detail, x, y)
					t.SetHeight(lx, ly, float32(h))
					tr, depth := p.surface(x, y, h, steppe, tundra)
					t.SetTerrain(lx, ly, tr)
					t.SetTopLayer(lx, ly, depth)
					p.layers(t, lx, ly, x, y, h)
					if p.AnnotationLayer && Hash2(p.Seed+900, x, y)%97 == 0 {
						t.SetLevel(annotations, lx, ly, 1)
					}
				}
			}
		}
	}
	return w
}

func (p Params) height(relief, detail *noise.Perlin, x, y int) float64 {
	fx, fy := float64(x)/p.ReliefScale, float64(y)/p.ReliefScale
	v := relief.Sample(fx, fy, 0.5) + 0.35*detail.Sample(fx*3.1, fy*3.1, 0.5)
	h := p.BaseHeight + p.Relief*v
	if h < 0 {
		h = 0
	}
	if h > float64(p.MaxHeight-1) {
		h = float64(p.MaxHeight - 1)
	}
	return h
}

func (p Params) surface(x, y int, h float64, steppe, tundra terrain.Terrain) (terrain.Terrain, float32) {
	water := float64(p.WaterLevel)
	switch {
	case h < water+1.5 && h > water-2:
		return terrain.Beaches, 3
	case h > p.SnowLine+8:
		return terrain.Rock, 0
	case h > p.SnowLine:
		return tundra, 2
	}

	scale := p.ClusterProbScalePermille
	switch BiomeAt(p.Seed, x, y, p.BiomeRegionSize) {
	case Desert:
		if InCluster(p.Seed+301, x, y, 48, 6, ScalePermille(300, scale)) {
			return terrain.Sandstone, 1
		}
		return terrain.Desert, 4
	case Highlands:
		switch {
		case InCluster(p.Seed+401, x, y, 32, 5, ScalePermille(450, scale)):
			return terrain.Stone, 0
		case InCluster(p.Seed+402, x, y, 64, 10, ScalePermille(400, scale)):
			return steppe, 2
		}
		return terrain.Grass, 3
	case Forest:
		if InCluster(p.Seed+201, x, y, 48, 4, ScalePermille(250, scale)) {
			return terrain.Podzol, 3
		}
		return terrain.Grass, 3
	default:
		switch {
		case InCluster(p.Seed+101, x, y, 96, 3, ScalePermille(200, scale)):
			return terrain.Gravel, 2
		case InCluster(p.Seed+102, x, y, 64, 3, ScalePermille(150, scale)):
			return terrain.Water, 0
		}
		return terrain.Grass, 3
	}
}

func (p Params) layers(t *source.GridTile, lx, ly, x, y int, h float64) {
	if h > p.SnowLine-4 {
		t.SetBit(source.Frost, lx, ly, h > p.SnowLine || Hash2(p.Seed+500, x, y)%2 == 0)
	}
	water := float64(p.WaterLevel)
	level := func(salt int64) int { return int(Hash2(p.Seed+salt, x, y)%15) + 1 }
	scale := p.ClusterProbScalePermille

	switch BiomeAt(p.Seed, x, y, p.BiomeRegionSize) {
	case Forest:
		if InCluster(p.Seed+601, x, y, 40, 14, ScalePermille(700, scale)) {
			t.SetLevel(source.PineForest, lx, ly, level(601))
		} else if InCluster(p.Seed+602, x, y, 40, 12, ScalePermille(600, scale)) {
			t.SetLevel(source.DeciduousForest, lx, ly, level(602))
		}
	case Plains:
		if h < water+3 && InCluster(p.Seed+603, x, y, 48, 16, ScalePermille(600, scale)) {
			t.SetLevel(source.SwampLand, lx, ly, level(603))
		} else if InCluster(p.Seed+604, x, y, 64, 6, ScalePermille(300, scale)) {
			t.SetLevel(source.DeciduousForest, lx, ly, level(604))
		}
	case Highlands:
		if InCluster(p.Seed+605, x, y, 56, 8, ScalePermille(350, scale)) {
			t.SetLevel(source.Jungle, lx, ly, level(605))
		}
	}
}
