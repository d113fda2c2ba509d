package muscle

import (
	"fmt"
	"math"
)

// DataBuffer is an append-only pair of value streams, doubles and integers,
// read back in the order they were written. Reads past the end return zero
// and set a sticky error reported by Err.
type DataBuffer struct {
	D []float64 `json:"d"`
	Z []int     `json:"z"`

	doff, zoff int
	err        error
}

func NewDataBuffer() *DataBuffer {
	return &DataBuffer{}
}

func (b *DataBuffer) DPut(v float64) { b.D = append(b.D, v) }
func (b *DataBuffer) ZPut(v int)     { b.Z = append(b.Z, v) }

func (b *DataBuffer) ZPutBool(v bool) {
	if v {
		b.ZPut(1)
	} else {
		b.ZPut(0)
	}
}

func (b *DataBuffer) DGet() float64 {
	if b.doff >= len(b.D) {
		b.fail("double", b.doff, len(b.D))
		return 0
	}
	v := b.D[b.doff]
	b.doff++
	return v
}

func (b *DataBuffer) ZGet() int {
	if b.zoff >= len(b.Z) {
		b.fail("integer", b.zoff, len(b.Z))
		return 0
	}
	v := b.Z[b.zoff]
	b.zoff++
	return v
}

func (b *DataBuffer) ZGetBool() bool {
	return b.ZGet() != 0
}

func (b *DataBuffer) fail(kind string, off, size int) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s read at offset %d of %d", ErrStateBuffer, kind, off, size)
	}
}

func (b *DataBuffer) Err() error { return b.err }

func (b *DataBuffer) DSize() int { return len(b.D) }
func (b *DataBuffer) ZSize() int { return len(b.Z) }

// ResetOffsets rewinds both read cursors and clears the error.
func (b *DataBuffer) ResetOffsets() {
	b.doff, b.zoff = 0, 0
	b.err = nil
}

func (b *DataBuffer) Clear() {
	b.D = b.D[:0]
	b.Z = b.Z[:0]
	b.ResetOffsets()
}

// Equal compares contents bit for bit, ignoring cursors.
func (b *DataBuffer) Equal(o *DataBuffer) bool {
	if len(b.D) != len(o.D) || len(b.Z) != len(o.Z) {
		return false
	}
	for i := range b.D {
		if math.Float64bits(b.D[i]) != math.Float64bits(o.D[i]) {
			return false
		}
	}
	for i := range b.Z {
		if b.Z[i] != o.Z[i] {
			return false
		}
	}
	return true
}
