// Package column implements the owning Column / borrowed ColumnView model
// (C2): typed buffers with an optional validity bitmap and a logical
// offset, assembled into tables. Kernels never mutate a View; they accept
// views and return owning Columns.
package column

import (
	"dfkernel/internal/alloc"
	"dfkernel/internal/bitmap"
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// MaskPolicy controls whether a freshly allocated column gets a validity
// bitmap.
type MaskPolicy int

const (
	Never MaskPolicy = iota
	Always
	Retain // copy source nullability
)

// Column is the owning form: it holds the data, validity, offsets, and
// child buffers and releases them all when dropped (left to the garbage
// collector, since Go has no explicit drop; ownership here just means
// no other Column aliases this buffer).
type Column struct {
	typ       dtype.Type
	size      int
	validity  []uint32
	nullCount int // bitmap.UnknownNullCount to force recompute

	data    any     // concrete slice for fixed-width types, []byte chars for String
	offsets []int32 // length size+1, String/List only
	child   *Column // List only
}

// View is a non-owning reference into a Column (or another View) with an
// added logical offset. Slicing a view shifts the offset; ownership is
// unchanged.
type View struct {
	typ       dtype.Type
	offset    int
	size      int
	validity  []uint32
	nullCount int

	data    any
	offsets []int32
	child   *View
}

func (c *Column) Type() dtype.Type { return c.typ }
func (c *Column) Size() int        { return c.size }
func (c *Column) Nullable() bool   { return c.validity != nil }
func (c *Column) HasNulls() bool   { return c.NullCount() > 0 }

func (c *Column) NullCount() int {
	c.nullCount = bitmap.NullCountOf(c.validity, 0, c.size, c.nullCount)
	return c.nullCount
}

func (c *Column) NullMask() []uint32 { return c.validity }
func (c *Column) Data() any          { return c.data }
func (c *Column) Offsets() []int32   { return c.offsets }
func (c *Column) Child() *Column     { return c.child }

// View returns a zero-offset, full-size borrowed view of c.
func (c *Column) View() *View {
	var childView *View
	if c.child != nil {
		childView = c.child.View()
	}
	return &View{
		typ: c.typ, offset: 0, size: c.size,
		validity: c.validity, nullCount: c.nullCount,
		data: c.data, offsets: c.offsets, child: childView,
	}
}

func (v *View) Type() dtype.Type { return v.typ }
func (v *View) Size() int        { return v.size }
func (v *View) Offset() int      { return v.offset }
func (v *View) Nullable() bool   { return v.validity != nil }
func (v *View) HasNulls() bool   { return v.NullCount() > 0 }

func (v *View) NullCount() int {
	v.nullCount = bitmap.NullCountOf(v.validity, v.offset, v.offset+v.size, v.nullCount)
	return v.nullCount
}

func (v *View) NullMask() []uint32 { return v.validity }
func (v *View) Data() any          { return v.data }
func (v *View) Offsets() []int32   { return v.offsets }
func (v *View) Child() *View       { return v.child }

func (v *View) IsValid(i int) bool { return bitmap.IsValid(v.validity, v.offset+i) }

// Slice returns a new, non-owning view over [begin, end) of v. No data is
// copied.
func (v *View) Slice(begin, end int) (*View, error) {
	if begin < 0 || begin > end || end > v.size {
		return nil, errs.New(errs.OutOfRange, "slice [%d,%d) out of bounds for size %d", begin, end, v.size)
	}
	return &View{
		typ: v.typ, offset: v.offset + begin, size: end - begin,
		validity: v.validity, nullCount: bitmap.UnknownNullCount,
		data: v.data, offsets: v.offsets, child: v.child,
	}, nil
}

// --- factories ---

// MakeFixedWidthColumn allocates an uninitialized data buffer of the given
// type and size, with validity per maskState.
func MakeFixedWidthColumn(t dtype.Type, size int, maskState bitmap.MaskState) (*Column, error) {
	width, ok := t.FixedWidth()
	if !ok {
		return nil, errs.New(errs.TypeNotSupported, "type %s is not fixed-width", t)
	}
	data, err := allocFixed(t, width, size)
	if err != nil {
		return nil, err
	}
	return &Column{
		typ: t, size: size,
		validity:  bitmap.CreateNullMask(size, maskState),
		nullCount: bitmap.UnknownNullCount,
		data:      data,
	}, nil
}

func allocFixed(t dtype.Type, width, size int) (any, error) {
	if err := alloc.Current().Reserve(int64(width) * int64(size)); err != nil {
		return nil, err
	}
	switch t.ID {
	case dtype.Bool8, dtype.Int8:
		return make([]int8, size), nil
	case dtype.UInt8:
		return make([]uint8, size), nil
	case dtype.Int16:
		return make([]int16, size), nil
	case dtype.UInt16:
		return make([]uint16, size), nil
	case dtype.Int32, dtype.Date32,
		dtype.TimestampSeconds, dtype.TimestampMilliseconds, dtype.TimestampMicroseconds, dtype.TimestampNanoseconds,
		dtype.DurationSeconds, dtype.DurationMilliseconds, dtype.DurationMicroseconds, dtype.DurationNanoseconds:
		return make([]int32, size), nil
	case dtype.UInt32:
		return make([]uint32, size), nil
	case dtype.Int64, dtype.Date64:
		return make([]int64, size), nil
	case dtype.UInt64:
		return make([]uint64, size), nil
	case dtype.Float32:
		return make([]float32, size), nil
	case dtype.Float64:
		return make([]float64, size), nil
	default:
		return nil, errs.New(errs.TypeNotSupported, "no fixed-width allocator for %s", t)
	}
}

// MakeStringsColumn constructs a String column from a packed char buffer
// and a monotonically non-decreasing offsets vector of length size+1.
func MakeStringsColumn(chars []byte, offsets []int32, nullMask []uint32) (*Column, error) {
	if len(offsets) == 0 {
		return nil, errs.New(errs.InvalidArgument, "offsets must have at least one entry")
	}
	size := len(offsets) - 1
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, errs.New(errs.InvalidArgument, "offsets must be non-decreasing")
		}
	}
	if err := alloc.Current().Reserve(int64(len(chars))); err != nil {
		return nil, err
	}
	return &Column{
		typ: dtype.Fixed(dtype.String), size: size,
		validity:  nullMask,
		nullCount: bitmap.UnknownNullCount,
		data:      chars,
		offsets:   offsets,
	}, nil
}

// MakeListsColumn constructs a List column from a size, offsets vector, and
// an element (child) column. The child may itself be a List.
func MakeListsColumn(size int, offsets []int32, child *Column, nullMask []uint32) (*Column, error) {
	if len(offsets) != size+1 {
		return nil, errs.New(errs.InvalidArgument, "offsets length %d must be size+1=%d", len(offsets), size+1)
	}
	if offsets[size] != int32(child.Size()) {
		return nil, errs.New(errs.InvalidArgument, "offsets[size]=%d must equal child size %d", offsets[size], child.Size())
	}
	return &Column{
		typ:       dtype.ListOf(child.Type()),
		size:      size,
		validity:  nullMask,
		nullCount: bitmap.UnknownNullCount,
		offsets:   offsets,
		child:     child,
	}, nil
}

// NewFixedWidthColumn builds an owning Column directly from a materialized
// data slice, validity bitmap, and (optionally cached) null count. Used by
// kernels that have already computed the output buffers themselves
// (gather, scatter, copy-if-else, concatenate) and just need to wrap them.
func NewFixedWidthColumn(t dtype.Type, size int, data any, validity []uint32, nullCount int) *Column {
	return &Column{typ: t, size: size, data: data, validity: validity, nullCount: nullCount}
}

// EmptyLike returns a zero-row column with the same type/shape as v.
func EmptyLike(v *View) *Column {
	c, _ := AllocateLike(v, 0, Retain)
	return c
}

// AllocateLike allocates a new column shaped like v with the given row
// count and validity policy.
func AllocateLike(v *View, size int, policy MaskPolicy) (*Column, error) {
	state := bitmap.Unallocated
	switch policy {
	case Always:
		state = bitmap.Uninitialized
	case Retain:
		if v.Nullable() {
			state = bitmap.Uninitialized
		}
	}

	if v.Type().IsString() {
		return &Column{
			typ: v.Type(), size: size,
			validity:  bitmap.CreateNullMask(size, state),
			nullCount: bitmap.UnknownNullCount,
			data:      make([]byte, 0),
			offsets:   make([]int32, size+1),
		}, nil
	}
	if v.Type().IsList() {
		childCol, err := AllocateLike(v.Child(), 0, policy)
		if err != nil {
			return nil, err
		}
		return &Column{
			typ: v.Type(), size: size,
			validity:  bitmap.CreateNullMask(size, state),
			nullCount: bitmap.UnknownNullCount,
			offsets:   make([]int32, size+1),
			child:     childCol,
		}, nil
	}
	return MakeFixedWidthColumn(v.Type(), size, state)
}
