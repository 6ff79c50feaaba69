package column

import "dfkernel/internal/dtype"

// Scalar is a single typed value with a validity flag, accepted as an
// operand for fills, copy-if-else, and reductions.
type Scalar struct {
	Typ   dtype.Type
	Valid bool
	Value any // concrete Go value matching Typ, or a string for String
}

func NewScalar[T any](t dtype.Type, v T, valid bool) Scalar {
	return Scalar{Typ: t, Valid: valid, Value: v}
}

func NullScalar(t dtype.Type) Scalar {
	return Scalar{Typ: t, Valid: false}
}

func ScalarAs[T any](s Scalar) T {
	v, _ := s.Value.(T)
	return v
}
