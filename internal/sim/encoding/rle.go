package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Value is anything stored as an unsigned run-length symbol.
type Value interface {
	~uint8 | ~uint16 | ~uint32
}

// EncodeRLE encodes a sequence of values into base64(varint pairs).
// The pairs are (value, run_len) repeated.
func EncodeRLE[T Value](vals []T) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(vals) {
		v := vals[i]
		run := 1
		for j := i + 1; j < len(vals) && vals[j] == v && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. want > 0 bounds the decoded length so a
// corrupt run cannot allocate without limit.
func DecodeRLE[T Value](b64 string, want int) ([]T, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var zero T
	maxVal := uint64(math.MaxUint32)
	switch any(zero).(type) {
	case uint8:
		maxVal = math.MaxUint8
	case uint16:
		maxVal = math.MaxUint16
	}
	var out []T
	if want > 0 {
		out = make([]T, 0, want)
	}
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > maxVal {
			return nil, fmt.Errorf("value too large: %d", v)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("run overflows %d values", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, T(v))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d values, want %d", len(out), want)
	}
	return out, nil
}
