package join

import (
	"sort"
	"testing"

	"dfkernel/internal/column"
	"dfkernel/internal/dtype"
)

func keysOf(t *testing.T, values []int64) *column.TableView {
	t.Helper()
	col := column.NewFixedWidthColumn(dtype.Fixed(dtype.Int64), len(values), values, nil, 0)
	tbl, err := column.NewTable([]string{"k"}, []*column.Column{col})
	if err != nil {
		t.Fatal(err)
	}
	return tbl.View()
}

type pair struct{ l, r int32 }

func pairs(l, r []int32) []pair {
	out := make([]pair, len(l))
	for i := range l {
		out[i] = pair{l[i], r[i]}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].l != out[j].l {
			return out[i].l < out[j].l
		}
		return out[i].r < out[j].r
	})
	return out
}

func TestInnerJoinMatchesOnly(t *testing.T) {
	left := keysOf(t, []int64{1, 2, 3})
	right := keysOf(t, []int64{2, 3, 4})

	l, r, err := HashJoin(left, right, Inner)
	if err != nil {
		t.Fatal(err)
	}
	got := pairs(l, r)
	want := []pair{{1, 0}, {2, 1}}
	if len(got) != len(want) {
		t.Fatalf("inner join pairs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLeftJoinKeepsUnmatchedLeftRows(t *testing.T) {
	left := keysOf(t, []int64{1, 2, 3})
	right := keysOf(t, []int64{2})

	l, r, err := HashJoin(left, right, Left)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 3 {
		t.Fatalf("left join should emit one row per left input row, got %d", len(l))
	}
	nullCount := 0
	for _, idx := range r {
		if idx == NullIndex {
			nullCount++
		}
	}
	if nullCount != 2 {
		t.Fatalf("2 of 3 left rows have no match, want 2 NullIndex entries, got %d", nullCount)
	}
}

func TestJoinWithDuplicateKeysProducesCrossProduct(t *testing.T) {
	left := keysOf(t, []int64{1, 1})
	right := keysOf(t, []int64{1, 1})

	l, _, err := HashJoin(left, right, Inner)
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 4 {
		t.Fatalf("2x2 duplicate keys should produce 4 matched pairs, got %d", len(l))
	}
}

func TestJoinRejectsMismatchedKeyColumnCount(t *testing.T) {
	left := keysOf(t, []int64{1, 2})
	rightCol1 := column.NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, nil, 0)
	rightCol2 := column.NewFixedWidthColumn(dtype.Fixed(dtype.Int64), 2, []int64{1, 2}, nil, 0)
	rightTbl, err := column.NewTable([]string{"a", "b"}, []*column.Column{rightCol1, rightCol2})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := HashJoin(left, rightTbl.View(), Inner); err == nil {
		t.Fatal("join should reject mismatched key column counts")
	}
}
