package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"wurmexport.ai/internal/persistence/snapshot"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/source/gen"
)

func main() {
	var (
		seed        = flag.Int64("seed", 1337, "world seed")
		worldID     = flag.String("id", "", "world id (default: world_<seed>)")
		out         = flag.String("out", "", "output path (default: ./worlds/<id>.world.zst)")
		lowX        = flag.Int("low_x", 0, "lowest tile x")
		lowY        = flag.Int("low_y", 0, "lowest tile y")
		width       = flag.Int("width", 4, "width in tiles")
		height      = flag.Int("height", 4, "height in tiles")
		waterLevel  = flag.Int("water", 62, "water level")
		relief      = flag.Float64("relief", 26, "relief amplitude")
		snowLine    = flag.Float64("snow_line", 86, "height above which frost is set")
		missing     = flag.Int("missing_permille", 0, "permille of tiles left out of the world")
		annotations = flag.Bool("annotations", false, "add a layer the exporter ignores")
	)
	flag.Parse()

	p := gen.DefaultParams(*seed)
	p.LowTileX, p.LowTileY = *lowX, *lowY
	p.WidthTiles, p.HeightTiles = *width, *height
	p.WaterLevel = *waterLevel
	p.Relief = *relief
	p.SnowLine = *snowLine
	p.MissingTilePermille = *missing
	p.AnnotationLayer = *annotations

	id := *worldID
	if id == "" {
		id = fmt.Sprintf("world_%d", *seed)
	}
	path := *out
	if path == "" {
		path = filepath.Join("worlds", id+".world.zst")
	}

	w := gen.Generate(p)
	if err := snapshot.WriteWorld(path, source.ToSnapshot(w, id)); err != nil {
		fmt.Fprintln(os.Stderr, "write world:", err)
		os.Exit(1)
	}
	b := w.TileBounds()
	fmt.Printf("world %s seed=%d tiles=%dx%d present=%d layers=%d -> %s\n",
		id, *seed, b.Width, b.Height, len(w.Tiles()), len(w.AllLayers()), path)
}
