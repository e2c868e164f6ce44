package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Version is the current source world file version.
const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Seed    int64  `json:"seed"`
}

// WorldV1 is a complete source world: global parameters, layer definitions
// and the column data of every present tile.
type WorldV1 struct {
	Header Header `json:"header"`

	Seed       int64 `json:"seed"`
	WaterLevel int   `json:"water_level"`
	MaxHeight  int   `json:"max_height"`
	TileSize   int   `json:"tile_size"`

	// Tile rectangle; tiles inside it may still be absent.
	LowTileX    int `json:"low_tile_x"`
	LowTileY    int `json:"low_tile_y"`
	WidthTiles  int `json:"width_tiles"`
	HeightTiles int `json:"height_tiles"`

	CustomTerrains []CustomTerrainV1 `json:"custom_terrains,omitempty"`
	Layers         []LayerV1         `json:"layers,omitempty"`
	Tiles          []TileV1          `json:"tiles"`
}

type CustomTerrainV1 struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// LayerV1 defines a layer once; tiles refer to it by ID.
type LayerV1 struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    string   `json:"kind"` // frost | trees | other
	Swamp   bool     `json:"swamp,omitempty"`
	Species []string `json:"species,omitempty"`
	Silent  bool     `json:"silent,omitempty"`
}

type TileV1 struct {
	X int `json:"x"`
	Y int `json:"y"`

	Heights  []float32 `json:"heights"`
	TopLayer []float32 `json:"top_layer"`
	// RLE of terrain ordinals.
	Terrains string `json:"terrains"`
	// RLE of uint16(material); empty means every column uses its terrain default.
	Materials string `json:"materials,omitempty"`

	Layers []TileLayerV1 `json:"layers,omitempty"`
}

// TileLayerV1 holds one layer's per-column values (bit layers store 0/1).
type TileLayerV1 struct {
	ID     string `json:"id"`
	Values string `json:"values"`
}

func WriteWorld(path string, w WorldV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(w.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&w); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadWorld(path string) (WorldV1, error) {
	var w WorldV1
	f, err := os.Open(path)
	if err != nil {
		return w, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return w, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is informational; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return w, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&w); err != nil {
		return w, fmt.Errorf("gob decode: %w", err)
	}
	if w.Header.Version != Version {
		return w, fmt.Errorf("unsupported world version %d", w.Header.Version)
	}
	return w, nil
}
