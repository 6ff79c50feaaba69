// Package rhash implements element and row hashing (C4): Murmur3-32 as the
// default element hasher, with floating-point values normalized so +0/-0
// and all NaNs hash identically, and a row-hash combiner that folds column
// hashes left to right while skipping null elements entirely.
package rhash

import (
	"crypto/md5"
	"encoding/binary"
	"math"

	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
)

// Method selects the element hashing algorithm: Murmur3-32, identity, or
// MD5, the last applied uniformly across strings and fixed-width values.
type Method int

const (
	MethodMurmur3 Method = iota
	MethodIdentity
	MethodMD5
)

// canonicalNaN is the quiet-NaN bit pattern every NaN is normalized to
// before hashing, so distinct NaN payloads collide as required.
const canonicalNaN64 = 0x7ff8000000000000
const canonicalNaN32 = 0x7fc00000

func normalizeFloat64(f float64) uint64 {
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		return canonicalNaN64
	}
	if bits == 0x8000000000000000 { // -0.0
		return 0
	}
	return bits
}

func normalizeFloat32(f float32) uint32 {
	bits := math.Float32bits(f)
	if math.IsNaN(float64(f)) {
		return canonicalNaN32
	}
	if bits == 0x80000000 { // -0.0
		return 0
	}
	return bits
}

func hashBytes(method Method, b []byte) uint32 {
	switch method {
	case MethodIdentity:
		// identity hash: fold the bytes as a little-endian integer (only
		// sound for small fixed-width payloads, which is all this hasher
		// is ever used for)
		var v uint64
		for i, c := range b {
			if i >= 8 {
				break
			}
			v |= uint64(c) << (8 * uint(i))
		}
		return uint32(v) ^ uint32(v>>32)
	case MethodMD5:
		sum := md5.Sum(b)
		return binary.LittleEndian.Uint32(sum[:4])
	default:
		return Murmur3(b)
	}
}

func put64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
func put32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// ElementHash hashes element i of view v under the given method.
func ElementHash(method Method, v *column.View, i int) (uint32, error) {
	return dispatch.Apply(v.Type(), v.Data(), v.Offsets(), dispatch.Visitor[uint32]{
		OnInt8:    func(d []int8) uint32 { return hashBytes(method, []byte{byte(d[v.Offset()+i])}) },
		OnBool8:   func(d []int8) uint32 { return hashBytes(method, []byte{byte(d[v.Offset()+i])}) },
		OnUInt8:   func(d []uint8) uint32 { return hashBytes(method, []byte{d[v.Offset()+i]}) },
		OnInt16:   func(d []int16) uint32 { return hashBytes(method, put32(uint32(uint16(d[v.Offset()+i])))[:2]) },
		OnUInt16:  func(d []uint16) uint32 { return hashBytes(method, put32(uint32(d[v.Offset()+i]))[:2]) },
		OnInt32:   func(d []int32) uint32 { return hashBytes(method, put32(uint32(d[v.Offset()+i]))) },
		OnUInt32:  func(d []uint32) uint32 { return hashBytes(method, put32(d[v.Offset()+i])) },
		OnInt64:   func(d []int64) uint32 { return hashBytes(method, put64(uint64(d[v.Offset()+i]))) },
		OnUInt64:  func(d []uint64) uint32 { return hashBytes(method, put64(d[v.Offset()+i])) },
		OnFloat32: func(d []float32) uint32 { return hashBytes(method, put32(normalizeFloat32(d[v.Offset()+i]))) },
		OnFloat64: func(d []float64) uint32 { return hashBytes(method, put64(normalizeFloat64(d[v.Offset()+i]))) },
		OnString: func(chars []byte, offsets []int32) uint32 {
			begin, end := offsets[v.Offset()+i], offsets[v.Offset()+i+1]
			return hashBytes(method, chars[begin:end])
		},
	})
}

// combine folds rhs into lhs, the classic boost::hash_combine mix.
func combine(lhs, rhs uint32) uint32 {
	return lhs ^ (rhs + 0x9e3779b9 + (lhs << 6) + (lhs >> 2))
}

// RowHash hashes row i of the projected key columns, folding left to
// right. Nulls contribute nothing (are skipped, not hashed as zero); the
// first non-null element's hash seeds the fold.
func RowHash(method Method, tv *column.TableView, keyCols []int, i int) (uint32, error) {
	if len(keyCols) == 0 {
		return 0, errEmptyKeys
	}
	var h uint32
	seeded := false
	for _, ci := range keyCols {
		v := tv.Columns[ci]
		if v.Nullable() && !v.IsValid(i) {
			continue
		}
		eh, err := ElementHash(method, v, i)
		if err != nil {
			return 0, err
		}
		if !seeded {
			h = eh
			seeded = true
		} else {
			h = combine(h, eh)
		}
	}
	return h, nil
}

var errEmptyKeys = errs.New(errs.InvalidArgument, "row hash requires at least one key column")
