package fetch

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Job names one file to prefetch.
type Job struct {
	Remote string
	Target string
	SHA256 string
}

// FetchAll fetches every job on a bounded worker pool. Per-file semantics
// are identical to Fetch; the first error is returned after all workers
// drain. Lesson runs themselves stay single-threaded; this only serves the
// explicit prefetch command.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	size := f.concurrency
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, job := range jobs {
		job := job
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := f.Fetch(ctx, job.Remote, job.Target, job.SHA256); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	return firstErr
}
