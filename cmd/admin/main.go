package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/persistence/mapfile"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "tilelog":
			tileLogCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints every saved map under the output directory.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	outDir := fs.String("out", "./maps", "export output directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(*outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		h, err := mapfile.ReadHeader(filepath.Join(*outDir, e.Name()))
		if err != nil {
			continue
		}
		fmt.Printf("%s exponent=%d blocks=%d digest=%s\n", e.Name(), h.SizeExponent, h.Blocks, h.Digest)
	}
}

// tileLogCmd reads a per-tile export log and prints either every entry or
// the slowest tiles and the cell totals.
func tileLogCmd(args []string) {
	fs := flag.NewFlagSet("tilelog", flag.ExitOnError)
	path := fs.String("file", "", "tiles-<run>.jsonl.zst path")
	raw := fs.Bool("raw", false, "print every entry")
	slowest := fs.Int("slowest", 5, "slowest tiles to list")
	_ = fs.Parse(args)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}
	entries, err := readTileLog(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if *raw {
		for _, e := range entries {
			printJSON(e)
		}
		return
	}

	totals := map[string]int{}
	missing := 0
	var micros int64
	for _, e := range entries {
		if e.Missing {
			missing++
		}
		micros += e.Micros
		for k, v := range e.Cells {
			totals[k] += v
		}
	}
	fmt.Printf("tiles=%d missing=%d render_ms=%.1f\n", len(entries), missing, float64(micros)/1000)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Micros > entries[j].Micros })
	for i := 0; i < len(entries) && i < *slowest; i++ {
		e := entries[i]
		fmt.Printf("  slow tile (%d,%d) seq=%d %dus\n", e.TileX, e.TileY, e.Seq, e.Micros)
	}

	names := make([]string, 0, len(totals))
	for k := range totals {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return totals[names[i]] > totals[names[j]] })
	for _, k := range names {
		fmt.Printf("  %-18s %d\n", k, totals[k])
	}
}

func readTileLog(path string) ([]persistlog.TileLogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []persistlog.TileLogEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e persistlog.TileLogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
