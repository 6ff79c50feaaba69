// Package jitcache is the on-disk cache for compiled regex programs
// (internal/regex.Program), the JIT cache external collaborator: it
// writes a serialized program to a scratch directory once a pattern has
// been compiled often enough to be worth persisting, and serves future
// Compile calls for the same pattern straight from disk.
package jitcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"dfkernel/internal/regex"
)

// promoteAfter mirrors the call-count-gated JIT promotion idea: a pattern
// only earns a disk entry once it has been requested this many times in
// the process, so one-shot patterns never pay a filesystem round trip.
const promoteAfter = 3

// Cache is safe for concurrent use. A zero Cache is not valid; use New.
type Cache struct {
	dir string

	mu     sync.Mutex
	counts map[string]int
	paths  map[string]string
}

// New creates a cache rooted at a scratch directory resolved the way the
// process JIT would: TMPDIR, then TMP/TEMP/TEMPDIR, then os.TempDir().
func New() (*Cache, error) {
	dir := firstNonEmpty(os.Getenv("TMPDIR"), os.Getenv("TMP"), os.Getenv("TEMP"), os.Getenv("TEMPDIR"))
	if dir == "" {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "dfkernel-regex-cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, counts: make(map[string]int), paths: make(map[string]string)}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// key identifies a compiled program by its pattern and flags.
func key(pattern string, flags regex.Flags) string {
	b, _ := json.Marshal(struct {
		P string
		F regex.Flags
	}{pattern, flags})
	return string(b)
}

// Compile returns a compiled Program for pattern/flags, serving it from
// the on-disk cache once the pattern has crossed promoteAfter hits,
// compiling fresh (and counting towards promotion) otherwise.
func (c *Cache) Compile(pattern string, flags regex.Flags) (*regex.Program, error) {
	k := key(pattern, flags)

	c.mu.Lock()
	if path, ok := c.paths[k]; ok {
		c.mu.Unlock()
		return c.load(path)
	}
	c.counts[k]++
	count := c.counts[k]
	c.mu.Unlock()

	prog, err := regex.CompileWithFlags(pattern, flags)
	if err != nil {
		return nil, err
	}
	if count >= promoteAfter {
		if path, err := c.store(k, prog); err == nil {
			c.mu.Lock()
			c.paths[k] = path
			c.mu.Unlock()
		}
	}
	return prog, nil
}

func (c *Cache) store(k string, prog *regex.Program) (string, error) {
	name := uuid.NewString() + ".json"
	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(prog); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (c *Cache) load(path string) (*regex.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var prog regex.Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return nil, err
	}
	return &prog, nil
}
