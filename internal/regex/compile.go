package regex

import "dfkernel/internal/errs"

const maxExpandedRepeat = 1000

// Compile parses pattern and emits a finalized Program: NOP-collapsed,
// wrapped in an implicit whole-match group 0, with StartInsts precomputed
// for the common leading-alternation case.
func Compile(pattern string) (*Program, error) {
	return CompileWithFlags(pattern, Flags{})
}

// CompileWithFlags is Compile with explicit multiline/dotall behavior.
func CompileWithFlags(pattern string, flags Flags) (*Program, error) {
	items, numGroups, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	expanded, err := expandAll(items)
	if err != nil {
		return nil, err
	}

	c := &compiler{dotAll: flags.DotAll}
	whole := item{kind: itemGroup, sub: expanded, groupID: 0, wholeMatch: true}
	start, tails, err := c.compileItem(whole)
	if err != nil {
		return nil, err
	}
	end := c.emit(Inst{Kind: End})
	c.patchAll(tails, end)

	prog := &Program{Insts: c.insts, Classes: c.classes, NumGroups: numGroups + 1, Flags: flags}
	if err := finalize(prog, start); err != nil {
		return nil, err
	}
	return prog, nil
}

// expandAll unrolls every counted/starred repetition into an explicit
// concatenation of `?`/`*`-wrapped copies, so the compiler only ever has
// to emit the two primitive repetition shapes.
func expandAll(items []item) ([]item, error) {
	out := make([]item, 0, len(items))
	for _, it := range items {
		ex, err := expandItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, ex...)
	}
	return out, nil
}

func expandItem(it item) ([]item, error) {
	switch it.kind {
	case itemAlt:
		left, err := expandAll(it.alt[0])
		if err != nil {
			return nil, err
		}
		right, err := expandAll(it.alt[1])
		if err != nil {
			return nil, err
		}
		return []item{{kind: itemAlt, alt: [2][]item{left, right}}}, nil
	case itemGroup:
		sub, err := expandAll(it.sub)
		if err != nil {
			return nil, err
		}
		if !it.hasRep {
			return []item{{kind: itemGroup, sub: sub, groupID: it.groupID}}, nil
		}
		return expandRepetition(sub, it.repMin, it.repMax)
	default:
		return []item{it}, nil
	}
}

// expandRepetition realizes {min,max} as min mandatory copies followed by
// either an optional tail (bounded max) or a star tail (unbounded max).
func expandRepetition(atom []item, min, max int) ([]item, error) {
	if min > maxExpandedRepeat || (max != -1 && max > maxExpandedRepeat) {
		return nil, errs.New(errs.InvalidArgument, "repetition count exceeds expansion limit %d", maxExpandedRepeat)
	}
	if max != -1 && max < min {
		return nil, errs.New(errs.InvalidArgument, "repetition upper bound %d less than lower bound %d", max, min)
	}

	var out []item
	for i := 0; i < min; i++ {
		out = append(out, item{kind: itemGroup, sub: atom})
	}
	switch {
	case max == -1:
		out = append(out, item{kind: itemGroup, sub: atom, hasRep: true, repMin: 0, repMax: -1})
	case max > min:
		for i := 0; i < max-min; i++ {
			out = append(out, item{kind: itemGroup, sub: atom, hasRep: true, repMin: 0, repMax: 1})
		}
	}
	return out, nil
}

// dangling identifies one not-yet-patched successor pointer: Next for
// every instruction kind except Or, whose Left/Right fan out instead.
type dangling struct {
	inst int
	slot int // 0 = Next, 1 = Left, 2 = Right
}

type compiler struct {
	insts   []Inst
	classes []Class
	dotAll  bool
}

func (c *compiler) emit(i Inst) int {
	i.Next, i.Left, i.Right = -1, -1, -1
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *compiler) patchAll(tails []dangling, target int) {
	for _, t := range tails {
		switch t.slot {
		case 1:
			c.insts[t.inst].Left = target
		case 2:
			c.insts[t.inst].Right = target
		default:
			c.insts[t.inst].Next = target
		}
	}
}

func (c *compiler) registerClass(cls Class) int {
	c.classes = append(c.classes, cls)
	return len(c.classes) - 1
}

// compileSeq compiles a concatenation of items and returns its entry
// point plus the dangling successor pointers of its last element.
func (c *compiler) compileSeq(items []item) (int, []dangling, error) {
	if len(items) == 0 {
		nop := c.emit(Inst{Kind: Nop})
		return nop, []dangling{{nop, 0}}, nil
	}
	start, tails, err := c.compileItem(items[0])
	if err != nil {
		return -1, nil, err
	}
	for _, it := range items[1:] {
		nextStart, nextTails, err := c.compileItem(it)
		if err != nil {
			return -1, nil, err
		}
		c.patchAll(tails, nextStart)
		tails = nextTails
	}
	return start, tails, nil
}

func (c *compiler) compileItem(it item) (int, []dangling, error) {
	switch it.kind {
	case itemChar:
		idx := c.emit(Inst{Kind: Char, Char: it.ch})
		return idx, []dangling{{idx, 0}}, nil
	case itemAny:
		k := Any
		if c.dotAll {
			k = AnyNL
		}
		idx := c.emit(Inst{Kind: k})
		return idx, []dangling{{idx, 0}}, nil
	case itemClass:
		kind := CClass
		if it.negate {
			kind = NCClass
		}
		idx := c.emit(Inst{Kind: kind, ClassID: c.registerClass(it.class)})
		return idx, []dangling{{idx, 0}}, nil
	case itemBOL, itemEOL, itemBOW, itemNBOW, itemBOT, itemEOT:
		k := map[itemKind]Kind{
			itemBOL: BOL, itemEOL: EOL, itemBOW: BOW, itemNBOW: NBOW,
			itemBOT: BOT, itemEOT: EOT,
		}[it.kind]
		idx := c.emit(Inst{Kind: k})
		return idx, []dangling{{idx, 0}}, nil
	case itemAlt:
		return c.compileAlt(it)
	case itemGroup:
		return c.compileGroup(it)
	default:
		return -1, nil, errs.New(errs.InvalidArgument, "unhandled item kind %d", it.kind)
	}
}

func (c *compiler) compileAlt(it item) (int, []dangling, error) {
	orIdx := c.emit(Inst{Kind: Or})
	leftStart, leftTails, err := c.compileSeq(it.alt[0])
	if err != nil {
		return -1, nil, err
	}
	rightStart, rightTails, err := c.compileSeq(it.alt[1])
	if err != nil {
		return -1, nil, err
	}
	c.insts[orIdx].Left = leftStart
	c.insts[orIdx].Right = rightStart
	tails := append(append([]dangling{}, leftTails...), rightTails...)
	return orIdx, tails, nil
}

func (c *compiler) compileGroup(it item) (int, []dangling, error) {
	if it.hasRep {
		switch {
		case it.repMin == 0 && it.repMax == 1: // `?`
			orIdx := c.emit(Inst{Kind: Or})
			subStart, subTails, err := c.compileSeq(it.sub)
			if err != nil {
				return -1, nil, err
			}
			c.insts[orIdx].Left = subStart
			tails := append(subTails, dangling{orIdx, 2})
			return orIdx, tails, nil
		case it.repMin == 0 && it.repMax == -1: // `*`
			orIdx := c.emit(Inst{Kind: Or})
			subStart, subTails, err := c.compileSeq(it.sub)
			if err != nil {
				return -1, nil, err
			}
			c.insts[orIdx].Left = subStart
			c.patchAll(subTails, orIdx)
			return orIdx, []dangling{{orIdx, 2}}, nil
		default:
			return -1, nil, errs.New(errs.InvalidArgument, "unexpected repetition shape {%d,%d} after expansion", it.repMin, it.repMax)
		}
	}
	if it.groupID > 0 || (it.groupID == 0 && isWholeMatchGroup(it)) {
		lbra := c.emit(Inst{Kind: LBra, SubID: it.groupID})
		subStart, subTails, err := c.compileSeq(it.sub)
		if err != nil {
			return -1, nil, err
		}
		c.insts[lbra].Next = subStart
		rbra := c.emit(Inst{Kind: RBra, SubID: it.groupID})
		c.patchAll(subTails, rbra)
		return lbra, []dangling{{rbra, 0}}, nil
	}
	// plain non-capturing grouping wrapper introduced by expansion
	return c.compileSeq(it.sub)
}

// isWholeMatchGroup distinguishes the synthetic group-0 wrapper Compile
// constructs (always capturing) from ordinary non-capturing wrappers
// produced by expandRepetition, which also carry groupID == 0 (the zero
// value) but must not emit LBra/RBra.
func isWholeMatchGroup(it item) bool {
	return it.groupID == 0 && it.wholeMatch
}
