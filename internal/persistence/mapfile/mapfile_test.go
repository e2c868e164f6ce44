package mapfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wurmexport.ai/internal/sim/tiles"
)

func TestCreateRejectsExponent(t *testing.T) {
	for _, exp := range []int{0, 16} {
		if _, err := Create(t.TempDir(), exp); err == nil {
			t.Fatalf("exponent %d accepted", exp)
		}
	}
}

func TestSinkWrites(t *testing.T) {
	m, err := Create(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m.SetSurfaceTile(3, 4, tiles.Dirt, 120)
	m.SetGrass(3, 4, tiles.GrassTall, tiles.FlowerNone)
	if got := m.Word(3, 4); got.Type() != tiles.Grass || got.Height() != 120 {
		t.Fatalf("grass word: type %v height %d", got.Type(), got.Height())
	}
	if stage, _ := tiles.SplitGrassData(m.Word(3, 4).Data()); stage != tiles.GrassTall {
		t.Fatalf("grass stage %v", stage)
	}

	m.SetTree(500, 700, tiles.Oak, tiles.AgeFromInt(3), tiles.GrowthFromInt(1))
	if got, ok := m.SurfaceTile(500, 700).Tree(); !ok || got != tiles.Oak {
		t.Fatalf("tree: %v %v", got, ok)
	}
	m.SetSurfaceType(500, 700, tiles.Snow)
	if w := m.Word(500, 700); w.Type() != tiles.Snow || w.Data() != 0 {
		t.Fatalf("surface type did not clear data: %v %d", w.Type(), w.Data())
	}

	m.SetRockHeight(1023, 1023, -45)
	if got := m.RockHeight(1023, 1023); got != -45 {
		t.Fatalf("rock height %d", got)
	}
	m.SetRockHeight(1024, 0, 1)
	if m.Dropped() != 1 {
		t.Fatalf("dropped = %d", m.Dropped())
	}
	if m.Blocks() != 3 {
		t.Fatalf("blocks = %d", m.Blocks())
	}
	if got := m.SurfaceTile(900, 10); got != tiles.Hole {
		t.Fatalf("unwritten cell = %v", got)
	}
}

func TestWriteBlockRowMajor(t *testing.T) {
	m, _ := Create(t.TempDir(), 10)
	n := 32
	words := make([]tiles.Word, n*n)
	rock := make([]int16, n*n)
	for i := range words {
		words[i] = tiles.Encode(tiles.Sand, 0, int16(i))
		rock[i] = int16(-i)
	}
	if err := m.WriteBlock(64, 32, n, words, rock); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if got := m.Word(64+5, 32+2).Height(); got != int16(5+2*n) {
		t.Fatalf("height at (5,2) = %d", got)
	}
	if got := m.RockHeight(64+31, 32+31); got != int16(-(n*n - 1)) {
		t.Fatalf("rock at last cell = %d", got)
	}
	if err := m.WriteBlock(0, 0, n, words[:10], rock); err == nil {
		t.Fatalf("short block accepted")
	}
}

func TestSaveAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "world")
	m, _ := Create(dir, 11)
	for y := 0; y < 300; y += 7 {
		for x := 0; x < 2048; x += 13 {
			m.SetSurfaceTile(x, y, tiles.Rock, int16(x-y))
			m.SetRockHeight(x, y, int16(y-x))
		}
	}
	m.SetBush(2047, 2047, tiles.BushFromInt(2), tiles.AgeFromInt(9), tiles.GrowthFromInt(3))
	if !m.Dirty() {
		t.Fatalf("map not dirty after writes")
	}
	if err := m.SaveChanges(); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}
	if m.Dirty() {
		t.Fatalf("map still dirty after save")
	}
	if _, err := os.Stat(filepath.Join(dir, FileName+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	h, err := ReadHeader(dir)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.SizeExponent != 11 || h.Blocks != m.Blocks() || h.Digest != m.Digest() {
		t.Fatalf("header = %+v", h)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Digest() != m.Digest() {
		t.Fatalf("digest changed across save")
	}
	if got.Word(13*5, 14) != m.Word(13*5, 14) || got.RockHeight(13*5, 14) != m.RockHeight(13*5, 14) {
		t.Fatalf("cell changed across save")
	}
	if _, ok := got.SurfaceTile(2047, 2047).Bush(); !ok {
		t.Fatalf("bush lost across save")
	}
}

func TestDigestTracksCells(t *testing.T) {
	a, _ := Create(t.TempDir(), 10)
	b, _ := Create(t.TempDir(), 10)
	a.SetSurfaceTile(1, 1, tiles.Grass, 10)
	b.SetSurfaceTile(1, 1, tiles.Grass, 10)
	if a.Digest() != b.Digest() {
		t.Fatalf("equal maps digest differently")
	}
	b.SetRockHeight(1, 1, 1)
	if a.Digest() == b.Digest() {
		t.Fatalf("rock change not reflected in digest")
	}
}

func TestHistogramSmallMap(t *testing.T) {
	m, _ := Create(t.TempDir(), 3)
	m.SetSurfaceTile(0, 0, tiles.Sand, 0)
	h := m.Histogram()
	if h[tiles.Sand] != 1 || h[tiles.Hole] != 63 {
		t.Fatalf("histogram = %v", h)
	}
}

func TestClosed(t *testing.T) {
	m, _ := Create(t.TempDir(), 10)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.SaveChanges(); !errors.Is(err, ErrClosed) {
		t.Fatalf("SaveChanges after Close: %v", err)
	}
	m.SetRockHeight(0, 0, 1)
	if err := m.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close: %v", err)
	}
}
