package regex

import "unicode"

// thread is one active Thompson-NFA path: an instruction pointer plus the
// capture-group boundaries gathered along the epsilon edges that led to it.
type thread struct {
	pc   int
	caps []int
}

// threadList is a sparse set of threads for one simulation step, deduped
// by instruction pointer via a generation stamp so the same pc is never
// queued twice in a single step (the standard Pike-VM trick).
type threadList struct {
	threads []thread
	added   []int
	gen     int
}

func newThreadList(numInsts int) *threadList {
	return &threadList{added: make([]int, numInsts)}
}

func (tl *threadList) reset() {
	tl.gen++
	tl.threads = tl.threads[:0]
}

type executor struct {
	prog  *Program
	input []rune
}

// addThread follows epsilon edges (Or, LBra, RBra, Nop, and the
// zero-width assertions) from pc, queuing every consuming instruction
// (Char/Any/*Class) and End it reaches at pos into tl. Capture bounds are
// threaded through by value so sibling branches don't clobber each other.
func (e *executor) addThread(tl *threadList, pc int, caps []int, pos int) {
	if pc < 0 || tl.added[pc] == tl.gen {
		return
	}
	tl.added[pc] = tl.gen
	in := e.prog.Insts[pc]
	switch in.Kind {
	case Or:
		e.addThread(tl, in.Left, caps, pos)
		e.addThread(tl, in.Right, caps, pos)
	case LBra:
		nc := withCapture(caps, 2*in.SubID, pos)
		e.addThread(tl, in.Next, nc, pos)
	case RBra:
		nc := withCapture(caps, 2*in.SubID+1, pos)
		e.addThread(tl, in.Next, nc, pos)
	case Nop:
		e.addThread(tl, in.Next, caps, pos)
	case BOL:
		if pos == 0 || (e.prog.Flags.Multiline && pos > 0 && e.input[pos-1] == '\n') {
			e.addThread(tl, in.Next, caps, pos)
		}
	case EOL:
		if pos == len(e.input) || (e.prog.Flags.Multiline && pos < len(e.input) && e.input[pos] == '\n') {
			e.addThread(tl, in.Next, caps, pos)
		}
	case BOT:
		if pos == 0 {
			e.addThread(tl, in.Next, caps, pos)
		}
	case EOT:
		if pos == len(e.input) {
			e.addThread(tl, in.Next, caps, pos)
		}
	case BOW:
		if e.atWordBoundary(pos) {
			e.addThread(tl, in.Next, caps, pos)
		}
	case NBOW:
		if !e.atWordBoundary(pos) {
			e.addThread(tl, in.Next, caps, pos)
		}
	default: // Char, Any, AnyNL, CClass, NCClass, End
		tl.threads = append(tl.threads, thread{pc: pc, caps: caps})
	}
}

func withCapture(caps []int, slot, pos int) []int {
	nc := make([]int, len(caps))
	copy(nc, caps)
	nc[slot] = pos
	return nc
}

func (e *executor) atWordBoundary(pos int) bool {
	before := pos > 0 && isWordChar(e.input[pos-1])
	after := pos < len(e.input) && isWordChar(e.input[pos])
	return before != after
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func classMatches(cls Class, r rune) bool {
	if cls.Builtin&ClassWord != 0 && isWordChar(r) {
		return true
	}
	if cls.Builtin&ClassNotWord != 0 && !isWordChar(r) {
		return true
	}
	if cls.Builtin&ClassSpace != 0 && unicode.IsSpace(r) {
		return true
	}
	if cls.Builtin&ClassNotSpace != 0 && !unicode.IsSpace(r) {
		return true
	}
	if cls.Builtin&ClassDigit != 0 && unicode.IsDigit(r) {
		return true
	}
	if cls.Builtin&ClassNotDigit != 0 && !unicode.IsDigit(r) {
		return true
	}
	for _, rg := range cls.Ranges {
		if r >= rg.Lo && r <= rg.Hi {
			return true
		}
	}
	return false
}

// run simulates prog over input starting the search no earlier than
// startPos, returning the capture array of the first (leftmost,
// then greedy-first) completed match, or nil if none is found.
func run(prog *Program, input []rune, startPos int) []int {
	e := &executor{prog: prog, input: input}
	clist := newThreadList(len(prog.Insts))
	nlist := newThreadList(len(prog.Insts))
	clist.reset()

	var matched []int
	for pos := startPos; ; pos++ {
		if matched == nil {
			init := make([]int, 2*prog.NumGroups)
			for i := range init {
				init[i] = -1
			}
			for _, s := range prog.StartInsts {
				e.addThread(clist, s, init, pos)
			}
		}

		nlist.reset()
		for i := 0; i < len(clist.threads); i++ {
			th := clist.threads[i]
			in := prog.Insts[th.pc]
			switch in.Kind {
			case Char:
				if pos < len(input) && input[pos] == in.Char {
					e.addThread(nlist, in.Next, th.caps, pos+1)
				}
			case Any:
				if pos < len(input) && input[pos] != '\n' {
					e.addThread(nlist, in.Next, th.caps, pos+1)
				}
			case AnyNL:
				if pos < len(input) {
					e.addThread(nlist, in.Next, th.caps, pos+1)
				}
			case CClass:
				if pos < len(input) && classMatches(prog.Classes[in.ClassID], input[pos]) {
					e.addThread(nlist, in.Next, th.caps, pos+1)
				}
			case NCClass:
				if pos < len(input) && !classMatches(prog.Classes[in.ClassID], input[pos]) {
					e.addThread(nlist, in.Next, th.caps, pos+1)
				}
			case End:
				matched = th.caps
				i = len(clist.threads) // stop considering lower-priority threads this step
			}
		}

		clist, nlist = nlist, clist
		if pos >= len(input) {
			break
		}
	}
	return matched
}

// Find returns the [begin,end) rune-index span of the first match of
// prog in input at or after startPos.
func Find(prog *Program, input []rune, startPos int) (begin, end int, ok bool) {
	caps := run(prog, input, startPos)
	if caps == nil {
		return 0, 0, false
	}
	return caps[0], caps[1], true
}

// Extract returns the [begin,end) rune-index span of capture group
// `group` (0 is the whole match) within the first match of prog in
// input at or after startPos. ok is false if the overall pattern didn't
// match, or if group didn't participate in the match that did.
func Extract(prog *Program, input []rune, startPos int, group int) (begin, end int, ok bool) {
	caps := run(prog, input, startPos)
	if caps == nil || group < 0 || group >= prog.NumGroups {
		return 0, 0, false
	}
	b, e := caps[2*group], caps[2*group+1]
	if b < 0 || e < 0 {
		return 0, 0, false
	}
	return b, e, true
}
