package dataflow

import (
	"context"
	"sync"
)

// FanIn merges streams into one. Order across inputs is not preserved. The
// result closes once every input is drained or ctx is done.
func FanIn[T any](ctx context.Context, streams ...Stream[T]) Stream[T] {
	out := make(chan T)
	var wg sync.WaitGroup

	forward := func(s Stream[T]) {
		defer wg.Done()
		for v := range s {
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}

	for _, s := range streams {
		wg.Add(1)
		go forward(s)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
