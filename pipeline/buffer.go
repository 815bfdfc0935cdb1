package pipeline

import (
	"fmt"

	"github.com/syssam/loom"
)

// Buffer is a realized, dense, zero-based array of scalar values.
// Zero-dimensional buffers hold a single element.
type Buffer struct {
	typ     loom.Type
	extents []int
	ints    []int64
	floats  []float64
}

// NewBuffer allocates a buffer of the given element type and extents.
func NewBuffer(t loom.Type, extents []int) *Buffer {
	n := 1
	for _, e := range extents {
		n *= e
	}
	b := &Buffer{typ: t, extents: append([]int(nil), extents...)}
	if t.Code == loom.TypeFloat {
		b.floats = make([]float64, n)
	} else {
		b.ints = make([]int64, n)
	}
	return b
}

// Type returns the element type.
func (b *Buffer) Type() loom.Type { return b.typ }

// Extents returns the per-dimension extents.
func (b *Buffer) Extents() []int { return b.extents }

// Len returns the total number of elements.
func (b *Buffer) Len() int {
	n := 1
	for _, e := range b.extents {
		n *= e
	}
	return n
}

// Int returns the integer element at the given index.
func (b *Buffer) Int(idx ...int) int64 {
	return b.ints[b.offset(idx)]
}

// Float returns the floating-point element at the given index.
func (b *Buffer) Float(idx ...int) float64 {
	return b.floats[b.offset(idx)]
}

func (b *Buffer) set(idx []int, v value) {
	if b.floats != nil {
		b.floats[b.offset(idx)] = v.toFloat()
	} else {
		b.ints[b.offset(idx)] = v.toInt()
	}
}

// offset computes the dense innermost-first element offset.
func (b *Buffer) offset(idx []int) int {
	if len(idx) != len(b.extents) {
		panic(fmt.Sprintf("pipeline: internal: %d indexes for %d-dimensional buffer", len(idx), len(b.extents)))
	}
	off := 0
	stride := 1
	for d := 0; d < len(idx); d++ {
		if idx[d] < 0 || idx[d] >= b.extents[d] {
			panic(fmt.Sprintf("pipeline: internal: index %d out of range for dimension %d", idx[d], d))
		}
		off += idx[d] * stride
		stride *= b.extents[d]
	}
	return off
}
