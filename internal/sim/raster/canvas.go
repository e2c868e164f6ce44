package raster

import "wurmexport.ai/internal/sim/tiles"

// TileCanvas is a Sink covering the n x n target cells of one source tile.
// Workers render into canvases; the driver copies finished canvases into
// the map in a fixed order.
type TileCanvas struct {
	OriginX, OriginY int
	N                int

	Words []tiles.Word
	Rock  []int16
}

func NewTileCanvas(n int) *TileCanvas {
	return &TileCanvas{
		N:     n,
		Words: make([]tiles.Word, n*n),
		Rock:  make([]int16, n*n),
	}
}

// Reset moves the canvas to a new origin and clears it.
func (c *TileCanvas) Reset(originX, originY int) {
	c.OriginX, c.OriginY = originX, originY
	for i := range c.Words {
		c.Words[i] = 0
		c.Rock[i] = 0
	}
}

// index maps target coordinates to row-major canvas storage.
func (c *TileCanvas) index(x, y int) int {
	lx, ly := x-c.OriginX, y-c.OriginY
	if lx < 0 || ly < 0 || lx >= c.N || ly >= c.N {
		panic("raster: canvas write outside its tile")
	}
	return lx + ly*c.N
}

func (c *TileCanvas) SetRockHeight(x, y int, h int16) { c.Rock[c.index(x, y)] = h }

func (c *TileCanvas) SetSurfaceTile(x, y int, t tiles.Type, h int16) {
	c.Words[c.index(x, y)] = tiles.Encode(t, 0, h)
}

func (c *TileCanvas) SetSurfaceType(x, y int, t tiles.Type) {
	i := c.index(x, y)
	c.Words[i] = c.Words[i].WithType(t).WithData(0)
}

func (c *TileCanvas) SetGrass(x, y int, stage tiles.GrassStage, flower tiles.FlowerType) {
	i := c.index(x, y)
	c.Words[i] = c.Words[i].WithType(tiles.Grass).WithData(tiles.GrassData(stage, flower))
}

func (c *TileCanvas) SetBush(x, y int, b tiles.BushType, age tiles.FoliageAge, stage tiles.GrowthStage) {
	i := c.index(x, y)
	c.Words[i] = c.Words[i].WithType(b.Tile()).WithData(tiles.FoliageData(age, stage))
}

func (c *TileCanvas) SetTree(x, y int, t tiles.TreeType, age tiles.FoliageAge, stage tiles.GrowthStage) {
	i := c.index(x, y)
	c.Words[i] = c.Words[i].WithType(t.Tile()).WithData(tiles.FoliageData(age, stage))
}

func (c *TileCanvas) SurfaceTile(x, y int) tiles.Type { return c.Words[c.index(x, y)].Type() }

// Word returns the packed surface word at target coordinates.
func (c *TileCanvas) Word(x, y int) tiles.Word { return c.Words[c.index(x, y)] }

// RockHeight returns the rock height at target coordinates.
func (c *TileCanvas) RockHeight(x, y int) int16 { return c.Rock[c.index(x, y)] }

// BlockWriter accepts a square block of cells in row-major order.
type BlockWriter interface {
	WriteBlock(originX, originY, n int, words []tiles.Word, rock []int16) error
}

func (c *TileCanvas) WriteTo(dst BlockWriter) error {
	return dst.WriteBlock(c.OriginX, c.OriginY, c.N, c.Words, c.Rock)
}

// Histogram counts cells by surface kind; trees and bushes are grouped.
func (c *TileCanvas) Histogram() map[string]int {
	out := map[string]int{}
	for _, w := range c.Words {
		t := w.Type()
		switch {
		case isTree(t):
			out["TREE"]++
		case isBush(t):
			out["BUSH"]++
		default:
			out[t.String()]++
		}
	}
	return out
}

func isTree(t tiles.Type) bool {
	_, ok := t.Tree()
	return ok
}

func isBush(t tiles.Type) bool {
	_, ok := t.Bush()
	return ok
}
