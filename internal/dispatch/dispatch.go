// Package dispatch implements the type-dispatch contract (C3): mapping a
// runtime dtype.Type tag to a compile-time element type and invoking a
// generic functor instantiated for that type. Since Go generics cannot be
// chosen at runtime, the functor is expressed as a struct of per-type
// closures, a manual monomorphization table — one field per supported
// element type. A nil field means the functor does not
// support that type, and Apply reports TypeNotSupported instead of
// panicking on a bad type assertion.
package dispatch

import (
	"dfkernel/internal/dtype"
	"dfkernel/internal/errs"
)

// Visitor holds one closure per element Go type a generic algorithm can be
// instantiated for. R is the algorithm's result type (often `error`,
// `*column.Column`, or a Scalar).
type Visitor[R any] struct {
	OnInt8    func(data []int8) R
	OnInt16   func(data []int16) R
	OnInt32   func(data []int32) R
	OnInt64   func(data []int64) R
	OnUInt8   func(data []uint8) R
	OnUInt16  func(data []uint16) R
	OnUInt32  func(data []uint32) R
	OnUInt64  func(data []uint64) R
	OnFloat32 func(data []float32) R
	OnFloat64 func(data []float64) R
	OnBool8   func(data []int8) R
	OnString  func(chars []byte, offsets []int32) R
}

// Apply dispatches on t and invokes the matching Visitor field, asserting
// data to the concrete Go slice type that field expects. data must be the
// Column/View's untyped `any` data buffer (or, for String, the chars
// buffer, with offsets supplied separately).
func Apply[R any](t dtype.Type, data any, offsets []int32, v Visitor[R]) (R, error) {
	var zero R
	switch t.ID {
	case dtype.Int8:
		if v.OnInt8 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnInt8(data.([]int8)), nil
	case dtype.Bool8:
		if v.OnBool8 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnBool8(data.([]int8)), nil
	case dtype.Int16:
		if v.OnInt16 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnInt16(data.([]int16)), nil
	case dtype.Int32, dtype.Date32, dtype.TimestampSeconds, dtype.TimestampMilliseconds, dtype.TimestampMicroseconds, dtype.TimestampNanoseconds,
		dtype.DurationSeconds, dtype.DurationMilliseconds, dtype.DurationMicroseconds, dtype.DurationNanoseconds:
		if v.OnInt32 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnInt32(data.([]int32)), nil
	case dtype.Int64, dtype.Date64:
		if v.OnInt64 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnInt64(data.([]int64)), nil
	case dtype.UInt8:
		if v.OnUInt8 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnUInt8(data.([]uint8)), nil
	case dtype.UInt16:
		if v.OnUInt16 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnUInt16(data.([]uint16)), nil
	case dtype.UInt32:
		if v.OnUInt32 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnUInt32(data.([]uint32)), nil
	case dtype.UInt64:
		if v.OnUInt64 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnUInt64(data.([]uint64)), nil
	case dtype.Float32:
		if v.OnFloat32 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnFloat32(data.([]float32)), nil
	case dtype.Float64:
		if v.OnFloat64 == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnFloat64(data.([]float64)), nil
	case dtype.String:
		if v.OnString == nil {
			return zero, errs.New(errs.TypeNotSupported, "functor does not support %s", t)
		}
		return v.OnString(data.([]byte), offsets), nil
	default:
		return zero, errs.New(errs.TypeNotSupported, "no dispatch arm for %s", t)
	}
}
