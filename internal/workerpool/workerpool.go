// Package workerpool provides a small fixed-size goroutine pool for
// sharding embarrassingly-parallel row-range work (hashing, per-row
// transforms) across kernels that want more concurrency than a single
// errgroup.Go per shard would bother to set up.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Job is one unit of sharded work: compute the result for rows
// [begin, end) and report it (or an error) back to the pool.
type Job struct {
	Begin, End int
	Run        func(begin, end int) error
}

// Pool runs a fixed number of worker goroutines pulling Jobs off a shared
// channel until the channel closes or the first error cancels ctx.
type Pool struct {
	size int
}

// New returns a Pool sized to size workers, or runtime.GOMAXPROCS(0) if
// size <= 0.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{size: size}
}

// Shard splits [0, n) into up to p.size contiguous row ranges and runs fn
// over each range concurrently, returning the first error encountered (if
// any) once every worker has stopped. Shards not yet started when an error
// occurs are skipped.
func (p *Pool) Shard(n int, fn func(begin, end int) error) error {
	if n == 0 {
		return nil
	}
	shards := p.size
	if shards > n {
		shards = n
	}
	chunk := (n + shards - 1) / shards

	jobs := make(chan Job, shards)
	for s := 0; s < shards; s++ {
		begin := s * chunk
		end := begin + chunk
		if end > n {
			end = n
		}
		if begin >= end {
			continue
		}
		jobs <- Job{Begin: begin, End: end, Run: fn}
	}
	close(jobs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	errOnce := sync.Once{}
	var firstErr error

	for w := 0; w < shards; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := job.Run(job.Begin, job.End); err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
