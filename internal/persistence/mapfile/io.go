package mapfile

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"wurmexport.ai/internal/sim/encoding"
	"wurmexport.ai/internal/sim/tiles"
)

// Version is the current container version.
const Version = 1

type Header struct {
	Version      int    `json:"version"`
	SizeExponent int    `json:"size_exponent"`
	Blocks       int    `json:"blocks"`
	Digest       string `json:"digest"`
}

type fileV1 struct {
	Header Header
	Blocks []blockV1
}

// blockV1 stores one block as RLE of the surface words and of the rock
// heights reinterpreted as uint16.
type blockV1 struct {
	BX, BY int
	Words  string
	Rock   string
}

// SaveChanges writes the whole map to <dir>/map.wmz, replacing any earlier
// save atomically.
func (m *MapData) SaveChanges() error {
	if m.closed {
		return ErrClosed
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	f := fileV1{Header: Header{
		Version:      Version,
		SizeExponent: m.sizeExp,
		Blocks:       len(m.blocks),
		Digest:       m.Digest(),
	}}
	rock := make([]uint16, BlockSize*BlockSize)
	for _, k := range m.sortedKeys() {
		b := m.blocks[k]
		for i, r := range b.rock {
			rock[i] = uint16(r)
		}
		f.Blocks = append(f.Blocks, blockV1{
			BX:    k.BX,
			BY:    k.BY,
			Words: encoding.EncodeRLE(b.words[:]),
			Rock:  encoding.EncodeRLE(rock),
		})
	}

	path := filepath.Join(m.dir, FileName)
	tmp := path + ".tmp"
	if err := writeFile(tmp, &f); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// Dirty reports whether cells changed since the last save or load.
func (m *MapData) Dirty() bool { return m.dirty }

func writeFile(path string, v *fileV1) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(v.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(v); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return out.Sync()
}

// ReadHeader decodes only the JSON header line of a saved map.
func ReadHeader(dir string) (Header, error) {
	var h Header
	f, err := os.Open(filepath.Join(dir, FileName))
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

// Read loads a saved map and checks it against its recorded digest.
func Read(dir string) (*MapData, error) {
	in, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	if _, err := br.ReadBytes('\n'); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var f fileV1
	if err := gob.NewDecoder(br).Decode(&f); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if f.Header.Version != Version {
		return nil, fmt.Errorf("unsupported map version %d", f.Header.Version)
	}

	m, err := Create(dir, f.Header.SizeExponent)
	if err != nil {
		return nil, err
	}
	blocksPerEdge := (m.size + BlockSize - 1) >> BlockBits
	for _, bv := range f.Blocks {
		if bv.BX < 0 || bv.BY < 0 || bv.BX >= blocksPerEdge || bv.BY >= blocksPerEdge {
			return nil, fmt.Errorf("block %d,%d outside map", bv.BX, bv.BY)
		}
		words, err := encoding.DecodeRLE[tiles.Word](bv.Words, BlockSize*BlockSize)
		if err != nil {
			return nil, fmt.Errorf("block %d,%d words: %w", bv.BX, bv.BY, err)
		}
		rock, err := encoding.DecodeRLE[uint16](bv.Rock, BlockSize*BlockSize)
		if err != nil {
			return nil, fmt.Errorf("block %d,%d rock: %w", bv.BX, bv.BY, err)
		}
		if len(words) != BlockSize*BlockSize || len(rock) != BlockSize*BlockSize {
			return nil, fmt.Errorf("block %d,%d is short", bv.BX, bv.BY)
		}
		b := &block{}
		copy(b.words[:], words)
		for i, r := range rock {
			b.rock[i] = int16(r)
		}
		m.blocks[blockKey{bv.BX, bv.BY}] = b
	}
	if got := m.Digest(); got != f.Header.Digest {
		return nil, fmt.Errorf("digest mismatch: file %s, content %s", f.Header.Digest, got)
	}
	return m, nil
}
