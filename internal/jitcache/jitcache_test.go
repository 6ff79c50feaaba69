package jitcache

import (
	"testing"

	"dfkernel/internal/regex"
)

func newCacheIn(t *testing.T, dir string) *Cache {
	t.Helper()
	t.Setenv("TMPDIR", dir)
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCompileReturnsWorkingProgramBeforePromotion(t *testing.T) {
	c := newCacheIn(t, t.TempDir())
	prog, err := c.Compile("a+b", regex.Flags{})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := regex.Find(prog, []rune("xxaaabxx"), 0); !ok {
		t.Fatal("compiled program should match its own pattern")
	}
}

func TestCompilePromotesAfterThreshold(t *testing.T) {
	c := newCacheIn(t, t.TempDir())
	k := key("abc", regex.Flags{})

	for i := 0; i < promoteAfter; i++ {
		if _, err := c.Compile("abc", regex.Flags{}); err != nil {
			t.Fatal(err)
		}
	}
	c.mu.Lock()
	_, cached := c.paths[k]
	c.mu.Unlock()
	if !cached {
		t.Fatalf("pattern should be promoted to disk after %d calls", promoteAfter)
	}
}

func TestCompileServesFromDiskOnceCached(t *testing.T) {
	c := newCacheIn(t, t.TempDir())
	for i := 0; i < promoteAfter; i++ {
		if _, err := c.Compile("x?y", regex.Flags{}); err != nil {
			t.Fatal(err)
		}
	}
	prog, err := c.Compile("x?y", regex.Flags{})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := regex.Find(prog, []rune("zzy"), 0); !ok {
		t.Fatal("program reloaded from disk should still match correctly")
	}
}

func TestDistinctFlagsAreDistinctCacheKeys(t *testing.T) {
	if key("abc", regex.Flags{}) == key("abc", regex.Flags{Multiline: true}) {
		t.Fatal("same pattern with different flags must hash to different cache keys")
	}
}
