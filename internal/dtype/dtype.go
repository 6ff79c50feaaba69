// Package dtype defines the DataType tagged union shared by columns,
// hashing, comparison, and the type-dispatch table.
package dtype

import "fmt"

// ID is the runtime tag for a column's element type.
type ID uint8

const (
	Invalid ID = iota
	Bool8
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Date32
	Date64
	TimestampSeconds
	TimestampMilliseconds
	TimestampMicroseconds
	TimestampNanoseconds
	DurationSeconds
	DurationMilliseconds
	DurationMicroseconds
	DurationNanoseconds
	String
	Dictionary
	List
)

// TimeUnit distinguishes the resolution of Timestamp/Duration types.
type TimeUnit uint8

const (
	Seconds TimeUnit = iota
	Milliseconds
	Microseconds
	Nanoseconds
)

// Type is the full DataType descriptor: most IDs need nothing more than the
// tag, but Dictionary and List carry child type information.
type Type struct {
	ID         ID
	IndexType  *Type // Dictionary: type of the index column
	ValueType  *Type // Dictionary: type of the value column
	ChildType  *Type // List: type of the element column (may itself be List)
}

func Fixed(id ID) Type { return Type{ID: id} }

func ListOf(child Type) Type {
	c := child
	return Type{ID: List, ChildType: &c}
}

func DictionaryOf(index, value Type) Type {
	i, v := index, value
	return Type{ID: Dictionary, IndexType: &i, ValueType: &v}
}

// FixedWidth reports whether the type has a constant element width, and
// what it is.
func (t Type) FixedWidth() (width int, ok bool) {
	switch t.ID {
	case Bool8, Int8, UInt8:
		return 1, true
	case Int16, UInt16:
		return 2, true
	case Int32, UInt32, Float32, Date32,
		TimestampSeconds, TimestampMilliseconds, TimestampMicroseconds, TimestampNanoseconds,
		DurationSeconds, DurationMilliseconds, DurationMicroseconds, DurationNanoseconds:
		return 4, true
	case Int64, UInt64, Float64, Date64:
		return 8, true
	default:
		return 0, false
	}
}

func (t Type) IsInteger() bool {
	switch t.ID {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	}
	return false
}

func (t Type) IsFloat() bool {
	return t.ID == Float32 || t.ID == Float64
}

func (t Type) IsTimestamp() bool {
	switch t.ID {
	case TimestampSeconds, TimestampMilliseconds, TimestampMicroseconds, TimestampNanoseconds:
		return true
	}
	return false
}

func (t Type) IsDuration() bool {
	switch t.ID {
	case DurationSeconds, DurationMilliseconds, DurationMicroseconds, DurationNanoseconds:
		return true
	}
	return false
}

func (t Type) IsString() bool { return t.ID == String }
func (t Type) IsList() bool   { return t.ID == List }

func (t Type) Equal(o Type) bool {
	if t.ID != o.ID {
		return false
	}
	switch t.ID {
	case List:
		return t.ChildType.Equal(*o.ChildType)
	case Dictionary:
		return t.IndexType.Equal(*o.IndexType) && t.ValueType.Equal(*o.ValueType)
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.ID {
	case List:
		return fmt.Sprintf("List<%s>", t.ChildType)
	case Dictionary:
		return fmt.Sprintf("Dictionary<%s,%s>", t.IndexType, t.ValueType)
	default:
		return names[t.ID]
	}
}

var names = map[ID]string{
	Invalid: "Invalid", Bool8: "Bool8",
	Int8: "Int8", Int16: "Int16", Int32: "Int32", Int64: "Int64",
	UInt8: "UInt8", UInt16: "UInt16", UInt32: "UInt32", UInt64: "UInt64",
	Float32: "Float32", Float64: "Float64",
	Date32: "Date32", Date64: "Date64",
	TimestampSeconds: "Timestamp[s]", TimestampMilliseconds: "Timestamp[ms]",
	TimestampMicroseconds: "Timestamp[us]", TimestampNanoseconds: "Timestamp[ns]",
	DurationSeconds: "Duration[s]", DurationMilliseconds: "Duration[ms]",
	DurationMicroseconds: "Duration[us]", DurationNanoseconds: "Duration[ns]",
	String: "String",
}
