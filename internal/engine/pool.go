package engine

import (
	"context"
	"sync"
)

// forEachPath applies fn to every path, bounded by parallel workers. The
// first error wins and cancellation stops new work; in-flight calls drain
// before return. Parallel below two runs sequentially in slice order.
func forEachPath(ctx context.Context, paths []string, parallel int, fn func(rel string) error) error {
	if parallel < 2 {
		for _, rel := range paths {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(rel); err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(rel string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(rel); err != nil {
				fail(err)
			}
		}(rel)
	}

	wg.Wait()
	return firstErr
}
