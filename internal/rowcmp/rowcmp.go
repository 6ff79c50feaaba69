// Package rowcmp implements the lexicographic row comparator (C5): row
// equality and ordering over a projected set of key columns, with
// configurable per-column sort direction and null ordering.
package rowcmp

import (
	"math"

	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

type NullOrder int

const (
	Before NullOrder = iota
	After
)

// Key describes one projected column's role in the comparator.
type Key struct {
	Col       int
	Direction Direction
	Nulls     NullOrder
}

// elementCompare returns -1/0/1 comparing element i of va to element j of
// vb, ignoring validity (callers handle nulls separately). Floats compare
// with NaN == NaN and +0 == -0.
func elementCompare(va, vb *column.View, i, j int) (int, error) {
	cmp := func(a, b int64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return dispatch.Apply(va.Type(), va.Data(), va.Offsets(), dispatch.Visitor[int]{
		OnInt8: func(d []int8) int {
			e := vb.Data().([]int8)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnBool8: func(d []int8) int {
			e := vb.Data().([]int8)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnUInt8: func(d []uint8) int {
			e := vb.Data().([]uint8)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnInt16: func(d []int16) int {
			e := vb.Data().([]int16)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnUInt16: func(d []uint16) int {
			e := vb.Data().([]uint16)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnInt32: func(d []int32) int {
			e := vb.Data().([]int32)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnUInt32: func(d []uint32) int {
			e := vb.Data().([]uint32)
			return cmp(int64(d[va.Offset()+i]), int64(e[vb.Offset()+j]))
		},
		OnInt64: func(d []int64) int {
			e := vb.Data().([]int64)
			return cmp(d[va.Offset()+i], e[vb.Offset()+j])
		},
		OnUInt64: func(d []uint64) int {
			e := vb.Data().([]uint64)
			a, b := d[va.Offset()+i], e[vb.Offset()+j]
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
		OnFloat32: func(d []float32) int {
			e := vb.Data().([]float32)
			a, b := float64(d[va.Offset()+i]), float64(e[vb.Offset()+j])
			return compareFloat(a, b)
		},
		OnFloat64: func(d []float64) int {
			e := vb.Data().([]float64)
			return compareFloat(d[va.Offset()+i], e[vb.Offset()+j])
		},
		OnString: func(chars []byte, offsets []int32) int {
			bchars := vb.Data().([]byte)
			boffsets := vb.Offsets()
			as := string(chars[offsets[va.Offset()+i]:offsets[va.Offset()+i+1]])
			bs := string(bchars[boffsets[vb.Offset()+j]:boffsets[vb.Offset()+j+1]])
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		},
	})
}

func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1 // NaN sorts after everything, arbitrary but consistent
	}
	if bNaN {
		return -1
	}
	// normalize -0 == 0 for comparison purposes
	if a == 0 {
		a = 0
	}
	if b == 0 {
		b = 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare returns -1/0/1 for row i of a vs row j of b, projected over keys
// in order, honoring per-key direction and null ordering. Two nulls always
// tie at a key (ordering never depends on nulls_are_equal; that flag only
// affects Equal).
func Compare(a, b *column.TableView, i, j int, keys []Key) (int, error) {
	for _, k := range keys {
		va, vb := a.Columns[k.Col], b.Columns[k.Col]
		aValid, bValid := !va.Nullable() || va.IsValid(i), !vb.Nullable() || vb.IsValid(j)

		if !aValid || !bValid {
			if aValid == bValid {
				continue // both null: tie at this key
			}
			aBeforeB := !aValid // a is null, b is not
			if k.Nulls == Before {
				if aBeforeB {
					return -1, nil
				}
				return 1, nil
			}
			if aBeforeB {
				return 1, nil
			}
			return -1, nil
		}

		c, err := elementCompare(va, vb, i, j)
		if err != nil {
			return 0, err
		}
		if k.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// Equal reports row i of a == row j of b over the projected keys.
// nullsAreEqual controls whether two null values at the same key compare
// equal; if false, a null on either side makes the rows unequal.
func Equal(a, b *column.TableView, i, j int, keys []Key, nullsAreEqual bool) (bool, error) {
	for _, k := range keys {
		va, vb := a.Columns[k.Col], b.Columns[k.Col]
		aValid, bValid := !va.Nullable() || va.IsValid(i), !vb.Nullable() || vb.IsValid(j)

		if !aValid || !bValid {
			if aValid != bValid {
				return false, nil
			}
			if !nullsAreEqual {
				return false, nil
			}
			continue
		}
		c, err := elementCompare(va, vb, i, j)
		if err != nil {
			return false, err
		}
		if c != 0 {
			return false, nil
		}
	}
	return true, nil
}

// Less is the `sort.Interface`-flavored convenience wrapper used by frame
// sorting and group-by's sorted result order: row i of tv orders before
// row j of the same view.
func Less(tv *column.TableView, i, j int, keys []Key) (bool, error) {
	c, err := Compare(tv, tv, i, j, keys)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

var errNoKeys = errs.New(errs.InvalidArgument, "row comparator requires at least one key column")

// Validate checks that keys is non-empty and every index is in range.
func Validate(keys []Key, numCols int) error {
	if len(keys) == 0 {
		return errNoKeys
	}
	for _, k := range keys {
		if k.Col < 0 || k.Col >= numCols {
			return errs.New(errs.OutOfRange, "key column index %d out of range [0,%d)", k.Col, numCols)
		}
	}
	return nil
}
