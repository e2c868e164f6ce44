package export

import (
	"fmt"
	"math/bits"

	"wurmexport.ai/internal/sim/raster"
	"wurmexport.ai/internal/sim/source"
)

// Window is the block of source tiles an export covers and the size of
// the target map that holds it.
type Window struct {
	SizeExponent int
	// Cropped is set when the world did not fit and only its lowest/left
	// tiles are exported.
	Cropped bool

	LowX, LowY     int
	TilesX, TilesY int
}

func (w Window) Tiles() int { return w.TilesX * w.TilesY }

// TargetTiles is the number of target map cells per edge.
func (w Window) TargetTiles() int { return 1 << w.SizeExponent }

// Positions lists the window's tile coordinates in row-major order.
func (w Window) Positions() [][2]int {
	out := make([][2]int, 0, w.Tiles())
	for ty := w.LowY; ty < w.LowY+w.TilesY; ty++ {
		for tx := w.LowX; tx < w.LowX+w.TilesX; tx++ {
			out = append(out, [2]int{tx, ty})
		}
	}
	return out
}

// ceilLog2 returns the smallest e with 1<<e >= v, for v >= 1.
func ceilLog2(v int) int {
	if v <= 1 {
		return 0
	}
	return bits.Len(uint(v - 1))
}

// PlanWindow picks the size exponent for a world and the tiles that fit.
func PlanWindow(b source.Bounds, mode raster.Mode, minExp, maxExp int) (Window, error) {
	if b.Empty() {
		return Window{}, fmt.Errorf("world has no tiles (%dx%d)", b.Width, b.Height)
	}
	edge := (max(b.Width, b.Height) << source.TileSizeBits) / mode.HScale()
	w := Window{
		SizeExponent: max(ceilLog2(edge), minExp),
		LowX:         b.LowX,
		LowY:         b.LowY,
	}
	if w.SizeExponent > maxExp {
		w.SizeExponent = maxExp
		w.Cropped = true
	}
	perAxis := w.TargetTiles() / mode.EdgeLength()
	w.TilesX = min(b.Width, perAxis)
	w.TilesY = min(b.Height, perAxis)
	return w, nil
}
