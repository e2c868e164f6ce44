package catalogs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"wurmexport.ai/internal/sim/terrain"
)

// FileName is the catalog file read from the config directory.
const FileName = "terrains.json"

//go:embed schema/terrains.schema.json
var terrainsSchema []byte

const schemaURL = "terrains.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(terrainsSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

type Catalogs struct {
	Terrains TerrainCatalog
}

type TerrainCatalog struct {
	Custom []CustomTerrainDef `json:"custom_terrains"`
	// ByTerrain maps custom terrain ordinals to their configured names.
	ByTerrain map[terrain.Terrain]string `json:"-"`
	Digest    string                     `json:"-"`
}

type CustomTerrainDef struct {
	Slot int    `json:"custom"`
	Name string `json:"name"`
}

// Load reads terrains.json from configDir. A missing file yields an empty
// catalog.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadTerrains(filepath.Join(configDir, FileName), &c.Terrains); err != nil {
		return nil, err
	}
	return &c, nil
}

// Empty returns a catalog with no custom terrain names.
func Empty() *Catalogs {
	return &Catalogs{Terrains: TerrainCatalog{ByTerrain: map[terrain.Terrain]string{}, Digest: sha256Hex(nil)}}
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadTerrains(path string, out *TerrainCatalog) error {
	out.ByTerrain = map[terrain.Terrain]string{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	s, err := schema()
	if err != nil {
		return fmt.Errorf("terrains schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", FileName, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", FileName, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", FileName, err)
	}
	for _, d := range out.Custom {
		t, ok := terrain.Custom(d.Slot)
		if !ok {
			return fmt.Errorf("%s: no custom terrain slot %d", FileName, d.Slot)
		}
		if _, dup := out.ByTerrain[t]; dup {
			return fmt.Errorf("%s: custom terrain %d named twice", FileName, d.Slot)
		}
		out.ByTerrain[t] = d.Name
	}
	return nil
}

// CustomName returns the configured name of a custom terrain.
func (c *Catalogs) CustomName(t terrain.Terrain) (string, bool) {
	n, ok := c.Terrains.ByTerrain[t]
	return n, ok
}

// Namer is the part of a source world that can take custom terrain names.
type Namer interface {
	CustomNames() map[terrain.Terrain]string
	SetCustomName(t terrain.Terrain, name string)
}

// Apply names the custom terrains w does not name itself and returns the
// terrains it named, in ordinal order.
func (c *Catalogs) Apply(w Namer) []terrain.Terrain {
	have := w.CustomNames()
	var named []terrain.Terrain
	for t, name := range c.Terrains.ByTerrain {
		if _, ok := have[t]; ok {
			continue
		}
		w.SetCustomName(t, name)
		named = append(named, t)
	}
	sort.Slice(named, func(i, j int) bool { return named[i] < named[j] })
	return named
}
