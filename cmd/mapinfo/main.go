package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"wurmexport.ai/internal/persistence/mapfile"
	"wurmexport.ai/internal/sim/tiles"
)

func main() {
	var (
		mapDir = flag.String("map", "", "map directory containing map.wmz")
		full   = flag.Bool("full", false, "load every block, verify the digest and print a tile histogram")
		top    = flag.Int("top", 20, "histogram rows to print")
	)
	flag.Parse()

	if *mapDir == "" {
		fmt.Fprintln(os.Stderr, "missing -map")
		os.Exit(2)
	}

	h, err := mapfile.ReadHeader(*mapDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read header:", err)
		os.Exit(1)
	}
	fmt.Printf("map v%d size=%d (exponent %d) blocks=%d digest=%s\n",
		h.Version, 1<<h.SizeExponent, h.SizeExponent, h.Blocks, h.Digest)
	if !*full {
		return
	}

	m, err := mapfile.Read(*mapDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read map:", err)
		os.Exit(1)
	}
	defer m.Close()

	type row struct {
		t tiles.Type
		n int
	}
	var rows []row
	for t, n := range m.Histogram() {
		rows = append(rows, row{t, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].t < rows[j].t
	})
	total := m.Size() * m.Size()
	for i, r := range rows {
		if i >= *top {
			break
		}
		fmt.Printf("%-18s %10d %6.2f%%\n", r.t, r.n, 100*float64(r.n)/float64(total))
	}
}
