package classify

import (
	"sort"
	"strings"
	"sync"

	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
)

// DefaultTile is used for anything the tables cannot resolve.
const DefaultTile = tiles.Dirt

// Names of custom terrains that select dedicated tile types. Matched without
// regard to case.
const (
	SteppeName = "W:Steppe"
	TundraName = "W:Tundra"
)

// Namer supplies the user-visible name of a terrain; only custom slots are
// ever asked.
type Namer interface {
	TerrainName(t terrain.Terrain) string
}

// Classifier resolves source terrains and materials to surface tiles and
// accumulates the materials it could not resolve. Safe for concurrent use.
type Classifier struct {
	names       Namer
	unsupported *UnsupportedSet
}

func New(names Namer) *Classifier {
	return &Classifier{names: names, unsupported: NewUnsupportedSet()}
}

func (c *Classifier) Unsupported() *UnsupportedSet { return c.unsupported }

// Classify resolves a terrain to a tile type:
//  1. the terrain table entry, if any;
//  2. for custom slots, the Steppe/Tundra name match;
//  3. the material table entry for fallback;
//  4. DefaultTile, recording fallback as unsupported.
func (c *Classifier) Classify(t terrain.Terrain, fallback terrain.Material) tiles.Type {
	if tile, ok := TerrainTile(t); ok {
		return tile
	}
	if tile, ok := c.CustomTile(t); ok {
		return tile
	}
	return c.MaterialTile(fallback)
}

// CustomTile applies the custom-name match for custom terrain slots.
func (c *Classifier) CustomTile(t terrain.Terrain) (tiles.Type, bool) {
	if !t.IsCustom() || c.names == nil {
		return 0, false
	}
	name := c.names.TerrainName(t)
	switch {
	case strings.EqualFold(name, SteppeName):
		return tiles.Steppe, true
	case strings.EqualFold(name, TundraName):
		return tiles.Tundra, true
	}
	return 0, false
}

// MaterialTile looks m up in the material table, falling back to DefaultTile
// and recording m when it has no mapping.
func (c *Classifier) MaterialTile(m terrain.Material) tiles.Type {
	if tile, ok := MaterialTile(m); ok {
		return tile
	}
	c.unsupported.Add(m)
	return DefaultTile
}

// TerrainTile is the raw terrain table lookup.
func TerrainTile(t terrain.Terrain) (tiles.Type, bool) {
	if !t.Valid() {
		return 0, false
	}
	e := terrainTiles[t]
	return e.tile, e.ok
}

// MaterialTile is the raw material table lookup; out of range ids are
// unmapped.
func MaterialTile(m terrain.Material) (tiles.Type, bool) {
	if !m.Valid() {
		return 0, false
	}
	e := materialTiles[m]
	return e.tile, e.ok
}

// Supported reports whether m has a material table entry.
func Supported(m terrain.Material) bool {
	_, ok := MaterialTile(m)
	return ok
}

// UnsupportedSet counts occurrences of unmapped material ids.
type UnsupportedSet struct {
	mu     sync.Mutex
	counts map[terrain.Material]int
}

func NewUnsupportedSet() *UnsupportedSet {
	return &UnsupportedSet{counts: map[terrain.Material]int{}}
}

// Add records one occurrence of m. NoMaterial is not a material and is
// ignored.
func (s *UnsupportedSet) Add(m terrain.Material) {
	if m == terrain.NoMaterial {
		return
	}
	s.mu.Lock()
	s.counts[m]++
	s.mu.Unlock()
}

// Merge folds other into s.
func (s *UnsupportedSet) Merge(other *UnsupportedSet) {
	if other == nil || other == s {
		return
	}
	other.mu.Lock()
	snapshot := make(map[terrain.Material]int, len(other.counts))
	for m, n := range other.counts {
		snapshot[m] = n
	}
	other.mu.Unlock()

	s.mu.Lock()
	for m, n := range snapshot {
		s.counts[m] += n
	}
	s.mu.Unlock()
}

func (s *UnsupportedSet) Count(m terrain.Material) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[m]
}

func (s *UnsupportedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// IDs returns the distinct recorded ids in ascending order.
func (s *UnsupportedSet) IDs() []terrain.Material {
	s.mu.Lock()
	out := make([]terrain.Material, 0, len(s.counts))
	for m := range s.counts {
		out = append(out, m)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns human readable names of the recorded ids, ordered by id.
func (s *UnsupportedSet) Names() []string {
	ids := s.IDs()
	out := make([]string, 0, len(ids))
	for _, m := range ids {
		out = append(out, m.Name())
	}
	return out
}
