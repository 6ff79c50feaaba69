// Package groupby implements group-by aggregation (C9): grouping rows by
// a projected key table via hash buckets (a map from row hash to
// candidate groups, confirmed with row equality) and reducing each requested
// value column with the accumulator dispatch table from internal/dispatch.
package groupby

import (
	"sort"

	"dfkernel/internal/column"
	"dfkernel/internal/dispatch"
	"dfkernel/internal/errs"
	"dfkernel/internal/kernels"
	"dfkernel/internal/rhash"
	"dfkernel/internal/rowcmp"
	"dfkernel/internal/workerpool"
)

type NullHandling int

const (
	Include NullHandling = iota
	Exclude
)

type NullEquality int

const (
	Equal NullEquality = iota
	Unequal
)

// Options configures a group-by's result ordering and null semantics.
// Grouping is always hash-based; there is no sort-based strategy, and
// KeysAreSorted does not change how rows are grouped.
type Options struct {
	KeysAreSorted bool
	SortResult    bool
	NullHandling  NullHandling
	NullEquality  NullEquality
}

// Request names one value column and the aggregation specs to compute
// over it, one output column per spec (QUANTILE specs carrying several
// quantiles expand into one output column per quantile, per
// dispatch.Expand).
type Request struct {
	ColumnIndex int
	Specs       []dispatch.AggSpec
}

// Result describes one output column of Aggregate: the source column it
// was computed from and the label (e.g. "SUM", "QUANTILE_0.9_Linear")
// frame.Grouped.Aggregate uses to name it.
type Result struct {
	ColumnIndex int
	Label       string
}

// Aggregate runs group-by on keys/values per requests and opts, returning
// the unique-keys table, one result column per expanded (request, spec)
// pair in request order, and the matching per-column Result metadata.
func Aggregate(keys, values *column.TableView, requests []Request, opts Options) (*column.Table, []*column.Column, []Result, error) {
	n := keys.NumRows()
	if values.NumRows() != n {
		return nil, nil, nil, errs.New(errs.InvalidArgument, "group-by keys/values row-count mismatch: %d vs %d", n, values.NumRows())
	}

	groups, err := groupRows(keys, n, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	if opts.SortResult {
		cmpKeys := identityKeys(keys.NumColumns())
		sort.Slice(groups, func(i, j int) bool {
			less, _ := rowcmp.Less(representatives(keys, groups, i, j), 0, 1, cmpKeys)
			return less
		})
	}

	repIdx := make([]int32, len(groups))
	for i, g := range groups {
		repIdx[i] = int32(g[0])
	}
	uniqueKeys, err := kernels.Gather(keys, repIdx, kernels.Ignore)
	if err != nil {
		return nil, nil, nil, err
	}

	results := make([]*column.Column, 0)
	meta := make([]Result, 0)
	for _, req := range requests {
		v := values.Columns[req.ColumnIndex]
		for _, spec := range req.Specs {
			for _, ex := range dispatch.Expand(spec) {
				accType, err := dispatch.AccumulatorType(v.Type(), ex.Spec.Kind)
				if err != nil {
					return nil, nil, nil, err
				}
				col, err := aggregateColumn(v, groups, ex.Spec, accType, opts)
				if err != nil {
					return nil, nil, nil, err
				}
				results = append(results, col)
				meta = append(meta, Result{ColumnIndex: req.ColumnIndex, Label: ex.Label})
			}
		}
	}
	return uniqueKeys, results, meta, nil
}

// representatives builds a throwaway two-row view comparing group i's and
// group j's representative rows, so the existing row comparator can order
// whole groups without a bespoke group-level comparator.
func representatives(keys *column.TableView, groups [][]int, i, j int) *column.TableView {
	idx := []int32{int32(groups[i][0]), int32(groups[j][0])}
	tv, _ := kernels.Gather(keys, idx, kernels.Ignore)
	return tv.View()
}

func identityKeys(numCols int) []rowcmp.Key {
	keys := make([]rowcmp.Key, numCols)
	for i := range keys {
		keys[i] = rowcmp.Key{Col: i}
	}
	return keys
}

// groupRows partitions [0,n) into equal-key groups using the row hash of
// the key columns to bucket candidates, then a full row comparison (C5)
// to resolve hash collisions — the same grounding join.buildMultimap uses
// for its build phase, but materialized directly into index groups since
// group-by needs every member, not just presence.
func groupRows(keys *column.TableView, n int, opts Options) ([][]int, error) {
	keyCols := make([]int, keys.NumColumns())
	for i := range keyCols {
		keyCols[i] = i
	}
	cmpKeys := identityKeys(keys.NumColumns())
	nullsEqual := opts.NullEquality == Equal

	// Row hashing has no cross-row dependency, so it shards cleanly: each
	// worker fills its own slice range, and the bucket map (which does need
	// single-threaded access) is only built afterward from the plain array.
	hashes := make([]uint32, n)
	pool := workerpool.New(0)
	err := pool.Shard(n, func(begin, end int) error {
		for i := begin; i < end; i++ {
			h, err := rhash.RowHash(rhash.MethodMurmur3, keys, keyCols, i)
			if err != nil {
				return err
			}
			hashes[i] = h
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make(map[uint32][]int, n)
	for i := 0; i < n; i++ {
		buckets[hashes[i]] = append(buckets[hashes[i]], i)
	}

	groupOf := make([]int, n)
	for i := range groupOf {
		groupOf[i] = -1
	}
	var groups [][]int
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
				eq, err := rowcmp.Equal(keys, keys, i, j, cmpKeys, nullsEqual)
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
	return groups, nil
}

