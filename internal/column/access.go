package column

import "dfkernel/internal/errs"

// At returns element i (view-relative) of a fixed-width view typed T. The
// caller must have already dispatched on the correct Go type for v.Type().
func At[T any](v *View, i int) T {
	s := v.data.([]T)
	return s[v.offset+i]
}

// SetAt writes element i (view-relative) of a fixed-width, owned Column's
// data. Used only by the handful of in-place mutators permitted by §3
// (fill-in-place, set-null-mask) and by kernel materialization code that
// owns the destination buffer outright.
func SetAt[T any](c *Column, i int, val T) {
	s := c.data.([]T)
	s[i] = val
}

// StringAt returns the string at row i of a String view.
func (v *View) StringAt(i int) string {
	chars := v.data.([]byte)
	begin := v.offsets[v.offset+i]
	end := v.offsets[v.offset+i+1]
	return string(chars[begin:end])
}

// FillInPlace replaces rows [begin,end) of a mutable fixed-width column
// with a scalar value, updating validity. It is one of the few in-place
// mutators the kernel contract allows (§3 Lifecycles & ownership).
func FillInPlace[T any](c *Column, begin, end int, val T, valid bool) error {
	if begin < 0 || begin > end || end > c.size {
		return errs.New(errs.OutOfRange, "fill range [%d,%d) out of bounds for size %d", begin, end, c.size)
	}
	s := c.data.([]T)
	for i := begin; i < end; i++ {
		s[i] = val
	}
	if !valid && c.validity == nil {
		c.validity = allValidMask(c.size)
	}
	if c.validity != nil {
		for i := begin; i < end; i++ {
			setValidBit(c, i, valid)
		}
	}
	c.nullCount = -1
	return nil
}

// SetNullMask replaces the column's validity bitmap wholesale (the other
// permitted in-place mutator).
func (c *Column) SetNullMask(mask []uint32, nullCount int) {
	c.validity = mask
	c.nullCount = nullCount
}

func allValidMask(size int) []uint32 {
	words := make([]uint32, (size+31)/32)
	for i := range words {
		words[i] = 0xFFFFFFFF
	}
	return words
}

func setValidBit(c *Column, i int, v bool) {
	w, b := i/32, uint(i%32)
	if v {
		c.validity[w] |= 1 << b
	} else {
		c.validity[w] &^= 1 << b
	}
}
