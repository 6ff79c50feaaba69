package rowcmp

import (
	"math"
	"testing"

	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
)

func int64Table(t *testing.T, name string, values []int64, nullAt map[int]bool) *column.TableView {
	t.Helper()
	typ := dtype.Fixed(dtype.Int64)
	var mask []uint32
	nullCount := 0
	if len(nullAt) > 0 {
		mask = bitmap.CreateNullMask(len(values), bitmap.AllValid)
		for i := range nullAt {
			bitmap.SetValid(mask, i, false)
			nullCount++
		}
	}
	col := column.NewFixedWidthColumn(typ, len(values), values, mask, nullCount)
	tbl, err := column.NewTable([]string{name}, []*column.Column{col})
	if err != nil {
		t.Fatal(err)
	}
	return tbl.View()
}

func TestCompareAscendingDescending(t *testing.T) {
	tv := int64Table(t, "k", []int64{3, 1, 2}, nil)
	keys := []Key{{Col: 0, Direction: Ascending}}

	c, err := Compare(tv, tv, 1, 2, keys) // 1 vs 2
	if err != nil {
		t.Fatal(err)
	}
	if c >= 0 {
		t.Fatalf("Compare(1,2) ascending = %d, want < 0", c)
	}

	keys[0].Direction = Descending
	c, err = Compare(tv, tv, 1, 2, keys)
	if err != nil {
		t.Fatal(err)
	}
	if c <= 0 {
		t.Fatalf("Compare(1,2) descending = %d, want > 0", c)
	}
}

func TestCompareNullOrdering(t *testing.T) {
	tv := int64Table(t, "k", []int64{5, 0, 5}, map[int]bool{1: true})
	keysBefore := []Key{{Col: 0, Direction: Ascending, Nulls: Before}}
	c, err := Compare(tv, tv, 1, 0, keysBefore) // row1 is null, row0 is 5
	if err != nil {
		t.Fatal(err)
	}
	if c >= 0 {
		t.Fatalf("null Before: Compare(null,5) = %d, want < 0", c)
	}

	keysAfter := []Key{{Col: 0, Direction: Ascending, Nulls: After}}
	c, err = Compare(tv, tv, 1, 0, keysAfter)
	if err != nil {
		t.Fatal(err)
	}
	if c <= 0 {
		t.Fatalf("null After: Compare(null,5) = %d, want > 0", c)
	}
}

func TestCompareTwoNullsTieRegardlessOfNullOrder(t *testing.T) {
	tv := int64Table(t, "k", []int64{0, 0}, map[int]bool{0: true, 1: true})
	keys := []Key{{Col: 0, Direction: Ascending, Nulls: Before}}
	c, err := Compare(tv, tv, 0, 1, keys)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Fatalf("two nulls should tie regardless of NullOrder, got %d", c)
	}
}

func TestEqualNullsAreEqualFlag(t *testing.T) {
	tv := int64Table(t, "k", []int64{0, 0}, map[int]bool{0: true, 1: true})
	keys := []Key{{Col: 0}}

	eq, err := Equal(tv, tv, 0, 1, keys, true)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatal("nullsAreEqual=true: two nulls at the same key should be equal")
	}

	eq, err = Equal(tv, tv, 0, 1, keys, false)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Fatal("nullsAreEqual=false: two nulls at the same key should not be equal")
	}
}

func TestCompareFloatNaNAndSignedZero(t *testing.T) {
	typ := dtype.Fixed(dtype.Float64)
	data := []float64{0}
	col := column.NewFixedWidthColumn(typ, 1, data, nil, 0)
	tbl, err := column.NewTable([]string{"f"}, []*column.Column{col})
	if err != nil {
		t.Fatal(err)
	}
	tv := tbl.View()

	if c := compareFloat(0.0, negZero()); c != 0 {
		t.Fatalf("compareFloat(0, -0) = %d, want 0", c)
	}
	if c := compareFloat(math.NaN(), math.NaN()); c != 0 {
		t.Fatalf("compareFloat(NaN, NaN) = %d, want 0", c)
	}
	_ = tv
}

func negZero() float64 {
	var z float64
	return -z
}

func TestLessOrdersByKey(t *testing.T) {
	tv := int64Table(t, "k", []int64{9, 1, 5}, nil)
	keys := []Key{{Col: 0, Direction: Ascending}}
	less, err := Less(tv, 1, 0, keys)
	if err != nil {
		t.Fatal(err)
	}
	if !less {
		t.Fatal("row 1 (value 1) should sort before row 0 (value 9)")
	}
}

func TestValidateRejectsEmptyAndOutOfRange(t *testing.T) {
	if err := Validate(nil, 3); err == nil {
		t.Fatal("Validate should reject an empty key list")
	}
	if err := Validate([]Key{{Col: 5}}, 3); err == nil {
		t.Fatal("Validate should reject an out-of-range column index")
	}
	if err := Validate([]Key{{Col: 0}}, 3); err != nil {
		t.Fatalf("Validate should accept a valid key: %v", err)
	}
}
