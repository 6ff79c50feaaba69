package regex

import "dfkernel/internal/errs"

// finalize collapses Nop successors out of every pointer in prog, then
// drops the now-unreferenced Nop instructions from prog.Insts entirely,
// computes StartInsts and rejects patterns whose leading alternation
// loops back on itself without ever consuming input.
func finalize(prog *Program, start int) error {
	resolved := make(map[int]int, len(prog.Insts))
	for i := range prog.Insts {
		resolveNop(prog, i, resolved)
	}
	start = resolveFrom(prog, start, resolved)

	for i := range prog.Insts {
		in := &prog.Insts[i]
		switch in.Kind {
		case Or:
			in.Left = resolveFrom(prog, in.Left, resolved)
			in.Right = resolveFrom(prog, in.Right, resolved)
		case End:
		default:
			in.Next = resolveFrom(prog, in.Next, resolved)
		}
	}

	prog.StartInsts = flattenOr(prog, start, nil)
	start = compactNops(prog, start)
	return checkForInfiniteLoop(prog, start)
}

// compactNops removes every Nop instruction from prog.Insts (by now every
// pointer has already been redirected past them) and renumbers the
// survivors, so no instruction of kind Nop remains in the finalized
// program. Returns start remapped to the compacted indices.
func compactNops(prog *Program, start int) int {
	remap := make([]int, len(prog.Insts))
	kept := make([]Inst, 0, len(prog.Insts))
	for i, in := range prog.Insts {
		if in.Kind == Nop {
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, in)
	}
	for i := range kept {
		in := &kept[i]
		switch in.Kind {
		case Or:
			in.Left = remapIdx(remap, in.Left)
			in.Right = remapIdx(remap, in.Right)
		case End:
		default:
			in.Next = remapIdx(remap, in.Next)
		}
	}
	prog.Insts = kept
	for i, s := range prog.StartInsts {
		prog.StartInsts[i] = remapIdx(remap, s)
	}
	return remapIdx(remap, start)
}

func remapIdx(remap []int, idx int) int {
	if idx < 0 {
		return idx
	}
	return remap[idx]
}

// resolveNop follows a chain of Nop.Next pointers starting at idx and
// memoizes the first non-Nop instruction it lands on.
func resolveNop(prog *Program, idx int, memo map[int]int) int {
	if r, ok := memo[idx]; ok {
		return r
	}
	if prog.Insts[idx].Kind != Nop {
		memo[idx] = idx
		return idx
	}
	memo[idx] = idx // break cycles defensively; Nop chains never actually cycle
	next := prog.Insts[idx].Next
	if next < 0 {
		memo[idx] = idx
		return idx
	}
	r := resolveNop(prog, next, memo)
	memo[idx] = r
	return r
}

func resolveFrom(prog *Program, idx int, memo map[int]int) int {
	if idx < 0 {
		return idx
	}
	if r, ok := memo[idx]; ok {
		return r
	}
	return idx
}

// flattenOr expands the leading Or-tree rooted at idx into the list of
// its non-Or entry instructions, used to pre-dispatch a top-level
// alternation without repeating the epsilon-closure walk per match.
func flattenOr(prog *Program, idx int, seen map[int]bool) []int {
	if seen == nil {
		seen = map[int]bool{}
	}
	if idx < 0 || seen[idx] {
		return nil
	}
	seen[idx] = true
	in := prog.Insts[idx]
	if in.Kind != Or {
		return []int{idx}
	}
	out := flattenOr(prog, in.Left, seen)
	out = append(out, flattenOr(prog, in.Right, seen)...)
	return out
}

// checkForInfiniteLoop rejects any Or instruction both of whose branches
// reach back to it through nothing but epsilon edges (Or/LBra/RBra) —
// such a pattern (e.g. an empty-body star nested in another star) would
// spin the NFA's epsilon-closure forever at simulation time.
func checkForInfiniteLoop(prog *Program, start int) error {
	for i, in := range prog.Insts {
		if in.Kind != Or {
			continue
		}
		if reachesSelfWithoutConsuming(prog, in.Left, i, map[int]bool{}) &&
			reachesSelfWithoutConsuming(prog, in.Right, i, map[int]bool{}) {
			return errs.New(errs.InvalidArgument, "pattern contains a repetition that can match the empty string infinitely")
		}
	}
	return nil
}

func reachesSelfWithoutConsuming(prog *Program, idx, target int, seen map[int]bool) bool {
	if idx < 0 || seen[idx] {
		return false
	}
	if idx == target {
		return true
	}
	seen[idx] = true
	in := prog.Insts[idx]
	switch in.Kind {
	case Or:
		return reachesSelfWithoutConsuming(prog, in.Left, target, seen) ||
			reachesSelfWithoutConsuming(prog, in.Right, target, seen)
	case LBra, RBra:
		return reachesSelfWithoutConsuming(prog, in.Next, target, seen)
	default:
		return false
	}
}
