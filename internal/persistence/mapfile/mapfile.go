// Package mapfile holds the target map in memory and stores it as a single
// zstd container. Cells are kept in 128x128 blocks allocated on first
// write; unwritten cells read as a hole at height 0.
package mapfile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"wurmexport.ai/internal/sim/tiles"
)

const (
	BlockBits = 7
	BlockSize = 1 << BlockBits

	MinSizeExponent = 1
	MaxSizeExponent = 15

	// FileName is the container written into the map directory.
	FileName = "map.wmz"
)

var ErrClosed = errors.New("mapfile: map is closed")

type blockKey struct{ BX, BY int }

type block struct {
	words [BlockSize * BlockSize]tiles.Word
	rock  [BlockSize * BlockSize]int16
}

// MapData is a square target map of 1<<SizeExponent cells per edge. It is
// not safe for concurrent use.
type MapData struct {
	dir     string
	sizeExp int
	size    int

	blocks  map[blockKey]*block
	dirty   bool
	closed  bool
	dropped int
}

// Create prepares an empty map that SaveChanges will write into dir.
func Create(dir string, sizeExp int) (*MapData, error) {
	if sizeExp < MinSizeExponent || sizeExp > MaxSizeExponent {
		return nil, fmt.Errorf("size exponent %d outside [%d,%d]", sizeExp, MinSizeExponent, MaxSizeExponent)
	}
	return &MapData{
		dir:     dir,
		sizeExp: sizeExp,
		size:    1 << sizeExp,
		blocks:  map[blockKey]*block{},
	}, nil
}

func (m *MapData) Dir() string       { return m.dir }
func (m *MapData) SizeExponent() int { return m.sizeExp }
func (m *MapData) Size() int         { return m.size }

// Blocks is the number of allocated blocks.
func (m *MapData) Blocks() int { return len(m.blocks) }

// Dropped counts writes that fell outside the map.
func (m *MapData) Dropped() int { return m.dropped }

func (m *MapData) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.size && y < m.size
}

func (m *MapData) cell(x, y int, alloc bool) (*block, int) {
	if m.closed || !m.inside(x, y) {
		if alloc && !m.closed {
			m.dropped++
		}
		return nil, 0
	}
	k := blockKey{x >> BlockBits, y >> BlockBits}
	b := m.blocks[k]
	if b == nil && alloc {
		b = &block{}
		m.blocks[k] = b
	}
	if alloc {
		m.dirty = true
	}
	return b, (x & (BlockSize - 1)) + (y&(BlockSize-1))<<BlockBits
}

func (m *MapData) SetRockHeight(x, y int, h int16) {
	if b, i := m.cell(x, y, true); b != nil {
		b.rock[i] = h
	}
}

func (m *MapData) SetSurfaceTile(x, y int, t tiles.Type, h int16) {
	if b, i := m.cell(x, y, true); b != nil {
		b.words[i] = tiles.Encode(t, 0, h)
	}
}

func (m *MapData) SetSurfaceType(x, y int, t tiles.Type) {
	if b, i := m.cell(x, y, true); b != nil {
		b.words[i] = b.words[i].WithType(t).WithData(0)
	}
}

func (m *MapData) SetGrass(x, y int, stage tiles.GrassStage, flower tiles.FlowerType) {
	if b, i := m.cell(x, y, true); b != nil {
		b.words[i] = b.words[i].WithType(tiles.Grass).WithData(tiles.GrassData(stage, flower))
	}
}

func (m *MapData) SetBush(x, y int, bush tiles.BushType, age tiles.FoliageAge, stage tiles.GrowthStage) {
	if b, i := m.cell(x, y, true); b != nil {
		b.words[i] = b.words[i].WithType(bush.Tile()).WithData(tiles.FoliageData(age, stage))
	}
}

func (m *MapData) SetTree(x, y int, t tiles.TreeType, age tiles.FoliageAge, stage tiles.GrowthStage) {
	if b, i := m.cell(x, y, true); b != nil {
		b.words[i] = b.words[i].WithType(t.Tile()).WithData(tiles.FoliageData(age, stage))
	}
}

func (m *MapData) SurfaceTile(x, y int) tiles.Type { return m.Word(x, y).Type() }

// Word returns the packed surface word of a cell.
func (m *MapData) Word(x, y int) tiles.Word {
	if b, i := m.cell(x, y, false); b != nil {
		return b.words[i]
	}
	return 0
}

func (m *MapData) RockHeight(x, y int) int16 {
	if b, i := m.cell(x, y, false); b != nil {
		return b.rock[i]
	}
	return 0
}

// WriteBlock copies an n x n row-major block of cells with its first cell
// at (originX, originY). Cells outside the map are dropped.
func (m *MapData) WriteBlock(originX, originY, n int, words []tiles.Word, rock []int16) error {
	if m.closed {
		return ErrClosed
	}
	if len(words) != n*n || len(rock) != n*n {
		return fmt.Errorf("block of %d cells needs %d words and rock heights, got %d and %d", n, n*n, len(words), len(rock))
	}
	for ly := 0; ly < n; ly++ {
		for lx := 0; lx < n; lx++ {
			b, i := m.cell(originX+lx, originY+ly, true)
			if b == nil {
				continue
			}
			j := lx + ly*n
			b.words[i] = words[j]
			b.rock[i] = rock[j]
		}
	}
	return nil
}

// Histogram counts surface types over the whole map; unwritten cells count
// as holes.
func (m *MapData) Histogram() map[tiles.Type]int {
	out := map[tiles.Type]int{}
	edge := min(m.size, BlockSize)
	written := 0
	for _, b := range m.blocks {
		for ly := 0; ly < edge; ly++ {
			for lx := 0; lx < edge; lx++ {
				out[b.words[lx+ly<<BlockBits].Type()]++
			}
		}
		written += edge * edge
	}
	if rest := m.size*m.size - written; rest > 0 {
		out[tiles.Hole] += rest
	}
	return out
}

func (m *MapData) sortedKeys() []blockKey {
	keys := make([]blockKey, 0, len(m.blocks))
	for k := range m.blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].BY != keys[j].BY {
			return keys[i].BY < keys[j].BY
		}
		return keys[i].BX < keys[j].BX
	})
	return keys
}

// Digest hashes the size exponent and every allocated block in row-major
// block order. Two maps with equal cells have equal digests as long as
// they allocated the same blocks.
func (m *MapData) Digest() string {
	h := sha256.New()
	var tmp [8]byte
	digestWriteU64(h, &tmp, uint64(m.sizeExp))
	var buf [BlockSize * BlockSize * 4]byte
	for _, k := range m.sortedKeys() {
		b := m.blocks[k]
		digestWriteI64(h, &tmp, int64(k.BX))
		digestWriteI64(h, &tmp, int64(k.BY))
		for i, w := range b.words {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(w))
		}
		h.Write(buf[:])
		for i, r := range b.rock {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(r))
		}
		h.Write(buf[:len(b.rock)*2])
	}
	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

// Close releases the map. Unsaved changes are discarded.
func (m *MapData) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	m.blocks = nil
	return nil
}
