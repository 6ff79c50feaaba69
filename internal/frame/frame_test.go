package frame

import (
	"testing"

	"dfkernel/internal/bitmap"
	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/dtype"
	"dfkernel/internal/groupby"
	"dfkernel/internal/join"
)

func newFrame(t *testing.T, names []string, cols []*column.Column) *Frame {
	t.Helper()
	tbl, err := column.NewTable(names, cols)
	if err != nil {
		t.Fatal(err)
	}
	return New(tbl)
}

func int64Col(values []int64, nullAt map[int]bool) *column.Column {
	var mask []uint32
	nullCount := 0
	if len(nullAt) > 0 {
		mask = bitmap.CreateNullMask(len(values), bitmap.AllValid)
		for i := range nullAt {
			bitmap.SetValid(mask, i, false)
			nullCount++
		}
	}
	return column.NewFixedWidthColumn(dtype.Fixed(dtype.Int64), len(values), values, mask, nullCount)
}

func TestSelectProjectsNamedColumns(t *testing.T) {
	f := newFrame(t, []string{"a", "b"}, []*column.Column{
		int64Col([]int64{1, 2}, nil),
		int64Col([]int64{10, 20}, nil),
	})
	out, err := f.Select([]string{"b"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Table.NumColumns() != 1 || out.Table.Names[0] != "b" {
		t.Fatalf("Select([b]) kept columns %v, want [b]", out.Table.Names)
	}
}

func TestHeadTail(t *testing.T) {
	f := newFrame(t, []string{"a"}, []*column.Column{int64Col([]int64{1, 2, 3, 4, 5}, nil)})

	head, err := f.Head(2)
	if err != nil {
		t.Fatal(err)
	}
	if head.NumRows() != 2 {
		t.Fatalf("Head(2).NumRows() = %d, want 2", head.NumRows())
	}
	headData := head.Table.Columns[0].View().Data().([]int64)
	if headData[0] != 1 || headData[1] != 2 {
		t.Fatalf("Head(2) = %v, want [1 2]", headData)
	}

	tail, err := f.Tail(2)
	if err != nil {
		t.Fatal(err)
	}
	tailData := tail.Table.Columns[0].View().Data().([]int64)
	if tailData[0] != 4 || tailData[1] != 5 {
		t.Fatalf("Tail(2) = %v, want [4 5]", tailData)
	}
}

func TestHeadClampsPastRowCount(t *testing.T) {
	f := newFrame(t, []string{"a"}, []*column.Column{int64Col([]int64{1, 2}, nil)})
	out, err := f.Head(10)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("Head(10) on a 2-row frame should clamp to 2, got %d", out.NumRows())
	}
}

func TestSortAscendingDescending(t *testing.T) {
	f := newFrame(t, []string{"a"}, []*column.Column{int64Col([]int64{3, 1, 2}, nil)})

	asc, err := f.Sort("a", true)
	if err != nil {
		t.Fatal(err)
	}
	ascData := asc.Table.Columns[0].View().Data().([]int64)
	if ascData[0] != 1 || ascData[1] != 2 || ascData[2] != 3 {
		t.Fatalf("Sort ascending = %v, want [1 2 3]", ascData)
	}

	desc, err := f.Sort("a", false)
	if err != nil {
		t.Fatal(err)
	}
	descData := desc.Table.Columns[0].View().Data().([]int64)
	if descData[0] != 3 || descData[1] != 2 || descData[2] != 1 {
		t.Fatalf("Sort descending = %v, want [3 2 1]", descData)
	}
}

func TestGroupByAggregate(t *testing.T) {
	f := newFrame(t, []string{"k", "v"}, []*column.Column{
		int64Col([]int64{1, 1, 2}, nil),
		int64Col([]int64{10, 20, 30}, nil),
	})
	grouped, err := f.GroupBy([]string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	req := []groupby.Request{{ColumnIndex: 1, Specs: []dispatch.AggSpec{dispatch.Sum()}}}
	out, err := grouped.Aggregate(req, groupby.Options{SortResult: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Table.Names[len(out.Table.Names)-1] != "v_SUM" {
		t.Fatalf("aggregate output column name = %q, want %q", out.Table.Names[len(out.Table.Names)-1], "v_SUM")
	}
	sums := out.Table.Columns[len(out.Table.Columns)-1].View().Data().([]int64)
	if len(sums) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(sums))
	}
}

func TestJoinRenamesRightSideColumns(t *testing.T) {
	left := newFrame(t, []string{"id", "x"}, []*column.Column{
		int64Col([]int64{1, 2}, nil),
		int64Col([]int64{100, 200}, nil),
	})
	right := newFrame(t, []string{"id", "x"}, []*column.Column{
		int64Col([]int64{1, 2}, nil),
		int64Col([]int64{9, 8}, nil),
	})
	out, err := left.Join(right, []string{"id"}, join.Inner)
	if err != nil {
		t.Fatal(err)
	}
	foundRightX := false
	for _, n := range out.Table.Names {
		if n == "x_right" {
			foundRightX = true
		}
	}
	if !foundRightX {
		t.Fatalf("joined frame columns = %v, want an x_right column", out.Table.Names)
	}
}

func TestDropNADropsRowsMissingNamedKeys(t *testing.T) {
	f := newFrame(t, []string{"a", "b"}, []*column.Column{
		int64Col([]int64{1, 2, 3}, map[int]bool{1: true}),
		int64Col([]int64{10, 20, 30}, nil),
	})
	out, err := f.DropNA([]string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("DropNA([a]) should drop the 1 row with a null in column a, got %d rows", out.NumRows())
	}
}

func TestDropNAAllColumnsWhenNamesEmpty(t *testing.T) {
	f := newFrame(t, []string{"a", "b"}, []*column.Column{
		int64Col([]int64{1, 2, 3}, nil),
		int64Col([]int64{10, 20, 30}, map[int]bool{2: true}),
	})
	out, err := f.DropNA(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 2 {
		t.Fatalf("DropNA(nil) over all columns should drop the row null in b, got %d rows", out.NumRows())
	}
}
