// Package join implements hash-join (C8): building one side into a
// multimap concurrently, then probing it with the other side to produce
// matched row-index pairs, with Inner/Left semantics.
package join

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dfkernel/internal/column"
	"dfkernel/internal/errs"
	"dfkernel/internal/multimap"
	"dfkernel/internal/rhash"
	"dfkernel/internal/rowcmp"
)

// Kind selects join semantics.
type Kind int

const (
	Inner Kind = iota
	Left
)

// NullIndex marks an unmatched probe row's missing counterpart in a
// left-join's output index vector.
const NullIndex = -1

const loadFactorCapacityMultiplier = 2 // table sized ~2x rows for a ~50% load factor

// HashJoin computes hash_join(left_keys, right_keys, kind): for an Inner
// join the smaller side is built into the multimap and the larger side
// probes it; a Left join always builds the right side and probes with the
// left, so every left row appears in the output. (left_indices,
// right_indices) is returned in original left/right orientation
// regardless of which side was actually built.
func HashJoin(leftKeys, rightKeys *column.TableView, kind Kind) (leftIdx, rightIdx []int32, err error) {
	if leftKeys.NumColumns() != rightKeys.NumColumns() {
		return nil, nil, errs.New(errs.InvalidArgument, "join key column counts differ: %d vs %d", leftKeys.NumColumns(), rightKeys.NumColumns())
	}
	for i := range leftKeys.Columns {
		if !leftKeys.Columns[i].Type().Equal(rightKeys.Columns[i].Type()) {
			return nil, nil, errs.New(errs.TypeMismatch, "join key %d type mismatch: %s vs %s", i, leftKeys.Columns[i].Type(), rightKeys.Columns[i].Type())
		}
	}

	keyCols := make([]int, leftKeys.NumColumns())
	for i := range keyCols {
		keyCols[i] = i
	}
	cmpKeys := make([]rowcmp.Key, len(keyCols))
	for i := range cmpKeys {
		cmpKeys[i] = rowcmp.Key{Col: i}
	}

	buildIsLeft := kind != Left && leftKeys.NumRows() <= rightKeys.NumRows()
	buildSide, probeSide := rightKeys, leftKeys
	if buildIsLeft {
		buildSide, probeSide = leftKeys, rightKeys
	}

	table, err := buildMultimap(buildSide, keyCols)
	if err != nil {
		return nil, nil, err
	}

	var buildOut, probeOut []int32
	nProbe := probeSide.NumRows()
	for p := 0; p < nProbe; p++ {
		hash, err := rhash.RowHash(rhash.MethodMurmur3, probeSide, keyCols, p)
		if err != nil {
			return nil, nil, err
		}
		it := table.Find(hash)
		matched := false
		for {
			b, ok := it.Next()
			if !ok {
				break
			}
			eq, err := rowcmp.Equal(probeSide, buildSide, p, int(b), cmpKeys, true)
			if err != nil {
				return nil, nil, err
			}
			if !eq {
				continue
			}
			matched = true
			buildOut = append(buildOut, b)
			probeOut = append(probeOut, int32(p))
		}
		if !matched && kind == Left {
			buildOut = append(buildOut, NullIndex)
			probeOut = append(probeOut, int32(p))
		}
	}

	if len(buildOut) > (1<<31 - 1) {
		return nil, nil, errs.New(errs.OutputTooLarge, "join produced %d pairs, exceeding int32 index capacity", len(buildOut))
	}

	if buildIsLeft {
		return buildOut, probeOut, nil
	}
	return probeOut, buildOut, nil
}

// buildMultimap inserts every row of side into a fresh table, keyed by
// the row hash of its projected key columns. Inserts are safe to run
// concurrently per the multimap's build-phase contract, so the rows are
// sharded across GOMAXPROCS workers via an errgroup.
func buildMultimap(side *column.TableView, keyCols []int) (*multimap.Table, error) {
	n := side.NumRows()
	table := multimap.New(n * loadFactorCapacityMultiplier)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		begin := w * chunk
		end := begin + chunk
		if end > n {
			end = n
		}
		if begin >= end {
			continue
		}
		g.Go(func() error {
			for i := begin; i < end; i++ {
				hash, err := rhash.RowHash(rhash.MethodMurmur3, side, keyCols, i)
				if err != nil {
					return err
				}
				if err := table.Insert(hash, int32(i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}
