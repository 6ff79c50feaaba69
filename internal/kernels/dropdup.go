package kernels

import (
	"sort"

	"dfkernel/internal/column"
	"dfkernel/internal/rhash"
	"dfkernel/internal/rowcmp"
)

// KeepPolicy selects which row of a duplicate group survives drop-duplicates.
type KeepPolicy int

const (
	KeepFirst KeepPolicy = iota
	KeepLast
	KeepNone // drop every row that has any duplicate, including itself
)

// DropDuplicates removes rows that compare equal on the projected key
// columns, per the given keep policy and nullsAreEqual (whether two nulls
// in a key column count as equal for grouping purposes). Row order of
// survivors is preserved.
func DropDuplicates(tv *column.TableView, keyCols []int, keep KeepPolicy, nullsAreEqual bool) (*column.Table, error) {
	n := tv.NumRows()
	keys, err := tv.Project(keyCols)
	if err != nil {
		return nil, err
	}
	localKeys := make([]rowcmp.Key, len(keyCols))
	for i := range localKeys {
		localKeys[i] = rowcmp.Key{Col: i}
	}

	buckets := make(map[uint32][]int, n)
	for i := 0; i < n; i++ {
		h, err := rhash.RowHash(rhash.MethodMurmur3, keys, allCols(len(keyCols)), i)
		if err != nil {
			return nil, err
		}
		buckets[h] = append(buckets[h], i)
	}

	groupOf := make([]int, n)
	for i := range groupOf {
		groupOf[i] = -1
	}
	groups := make([][]int, 0, n)
	for _, rows := range buckets {
		for _, i := range rows {
			if groupOf[i] != -1 {
				continue
			}
			group := []int{i}
			groupOf[i] = len(groups)
			for _, j := range rows {
				if j <= i || groupOf[j] != -1 {
					continue
				}
				eq, err := rowcmp.Equal(keys, keys, i, j, localKeys, nullsAreEqual)
				if err != nil {
					return nil, err
				}
				if eq {
					group = append(group, j)
					groupOf[j] = len(groups)
				}
			}
			groups = append(groups, group)
		}
	}

	var indices []int32
	for _, g := range groups {
		switch keep {
		case KeepFirst:
			indices = append(indices, int32(minOf(g)))
		case KeepLast:
			indices = append(indices, int32(maxOf(g)))
		case KeepNone:
			if len(g) == 1 {
				indices = append(indices, int32(g[0]))
			}
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	if len(indices) == 0 {
		return emptyLikeTable(tv)
	}
	return Gather(tv, indices, Ignore)
}

func allCols(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func minOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
