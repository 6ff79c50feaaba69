package column

import (
	"testing"

	"dfkernel/internal/alloc"
	"dfkernel/internal/bitmap"
	"dfkernel/internal/dtype"
)

func TestNewTableRejectsMismatchedColumnLengths(t *testing.T) {
	a := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, nil, 0)
	b := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 3, []int64{1, 2, 3}, nil, 0)
	if _, err := NewTable([]string{"a", "b"}, []*Column{a, b}); err == nil {
		t.Fatal("NewTable should reject columns with different row counts")
	}
}

func TestNewTableRejectsNameColumnCountMismatch(t *testing.T) {
	a := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 1, []int64{1}, nil, 0)
	if _, err := NewTable([]string{"a", "b"}, []*Column{a}); err == nil {
		t.Fatal("NewTable should reject names/columns length mismatch")
	}
}

func TestColumnByName(t *testing.T) {
	a := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 1, []int64{1}, nil, 0)
	tbl, err := NewTable([]string{"a"}, []*Column{a})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := tbl.ColumnByName("missing"); ok {
		t.Fatal("ColumnByName should report not-found for an absent name")
	}
	col, idx, ok := tbl.ColumnByName("a")
	if !ok || idx != 0 || col != a {
		t.Fatalf("ColumnByName(a) = %v, %d, %v; want a, 0, true", col, idx, ok)
	}
}

func TestViewSliceOutOfRange(t *testing.T) {
	a := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 3, []int64{1, 2, 3}, nil, 0)
	v := a.View()
	if _, err := v.Slice(2, 1); err == nil {
		t.Fatal("Slice with begin>end should error")
	}
	if _, err := v.Slice(0, 4); err == nil {
		t.Fatal("Slice past the view's size should error")
	}
	sub, err := v.Slice(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Size() != 2 || sub.Offset() != 1 {
		t.Fatalf("Slice(1,3) = size %d offset %d, want size 2 offset 1", sub.Size(), sub.Offset())
	}
}

func TestAtRespectsViewOffset(t *testing.T) {
	a := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 3, []int64{10, 20, 30}, nil, 0)
	v, err := a.View().Slice(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := At[int64](v, 0); got != 20 {
		t.Fatalf("At(sliced view, 0) = %d, want 20", got)
	}
}

func TestMakeStringsColumnRejectsDecreasingOffsets(t *testing.T) {
	if _, err := MakeStringsColumn([]byte("ab"), []int32{0, 2, 1}, nil); err == nil {
		t.Fatal("MakeStringsColumn should reject a non-monotonic offsets vector")
	}
}

func TestMakeStringsColumnRejectsEmptyOffsets(t *testing.T) {
	if _, err := MakeStringsColumn(nil, nil, nil); err == nil {
		t.Fatal("MakeStringsColumn should reject an empty offsets vector")
	}
}

func TestStringAtRoundTrips(t *testing.T) {
	chars := []byte("foobar")
	offsets := []int32{0, 3, 6}
	col, err := MakeStringsColumn(chars, offsets, nil)
	if err != nil {
		t.Fatal(err)
	}
	v := col.View()
	if v.StringAt(0) != "foo" || v.StringAt(1) != "bar" {
		t.Fatalf("StringAt = %q, %q; want foo, bar", v.StringAt(0), v.StringAt(1))
	}
}

func TestEmptyLikePreservesTypeWithZeroRows(t *testing.T) {
	mask := bitmap.CreateNullMask(2, bitmap.AllValid)
	src := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, mask, 0)
	empty := EmptyLike(src.View())
	if empty.Type() != src.Type() {
		t.Fatalf("EmptyLike type = %v, want %v", empty.Type(), src.Type())
	}
	if empty.Size() != 0 {
		t.Fatalf("EmptyLike size = %d, want 0", empty.Size())
	}
}

func TestAllocateLikeRetainPolicyAllocatesMaskOnlyWhenSourceNullable(t *testing.T) {
	nonNullable := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, nil, 0)
	out, err := AllocateLike(nonNullable.View(), 2, Retain)
	if err != nil {
		t.Fatal(err)
	}
	if out.Nullable() {
		t.Fatal("AllocateLike(Retain) over a non-nullable source should not allocate a mask")
	}

	mask := bitmap.CreateNullMask(2, bitmap.AllValid)
	nullable := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, mask, 0)
	out2, err := AllocateLike(nullable.View(), 2, Retain)
	if err != nil {
		t.Fatal(err)
	}
	if !out2.Nullable() {
		t.Fatal("AllocateLike(Retain) over a nullable source should allocate a mask")
	}
}

func TestFillInPlaceUpdatesDataAndValidity(t *testing.T) {
	col := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 3, []int64{1, 2, 3}, nil, 0)
	if err := FillInPlace[int64](col, 1, 3, 99, false); err != nil {
		t.Fatal(err)
	}
	data := col.Data().([]int64)
	if data[1] != 99 || data[2] != 99 {
		t.Fatalf("FillInPlace data = %v, want [.. 99 99]", data)
	}
	if col.IsValidForTest(1) || col.IsValidForTest(2) {
		t.Fatal("FillInPlace(valid=false) should mark the filled range invalid")
	}
	if !col.IsValidForTest(0) {
		t.Fatal("FillInPlace should not disturb rows outside [begin,end)")
	}
}

func TestFillInPlaceRejectsOutOfRange(t *testing.T) {
	col := NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, nil, 0)
	if err := FillInPlace[int64](col, 0, 5, 0, true); err == nil {
		t.Fatal("FillInPlace past the column's size should error")
	}
}

func TestAllocatorBudgetRejectsOversizedAllocation(t *testing.T) {
	prev := alloc.Current()
	defer alloc.SetDefault(prev)

	alloc.SetDefault(&alloc.Budgeted{Limit: 8})
	if _, err := MakeFixedWidthColumn(dtype.Fixed(dtype.Int64), 1000, bitmap.Unallocated); err == nil {
		t.Fatal("MakeFixedWidthColumn should fail once the allocator budget is exceeded")
	}
}

// IsValidForTest exposes bit-level validity checks to this package's tests
// without growing the exported Column API purely for test convenience.
func (c *Column) IsValidForTest(i int) bool {
	return bitmap.IsValid(c.validity, i)
}
