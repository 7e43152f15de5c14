// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Range divides [0, items) into one contiguous chunk per CPU core and calls
// fn for every chunk concurrently. It returns once all chunks are done.
//
// A panic inside fn does not crash the process from a worker goroutine: it is
// recovered there and raised again on the calling goroutine after every chunk
// has finished. With several panicking chunks the one with the lowest start
// index wins.
func Range(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}
	chunk := (items + workers - 1) / workers

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		panicStart = items
		panicValue any
	)
	for start := 0; start < items; start += chunk {
		end := min(start+chunk, items)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if s < panicStart {
						panicStart, panicValue = s, r
					}
					mu.Unlock()
				}
			}()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
	if panicStart < items {
		panic(panicValue)
	}
}

// RangeWithThreshold runs fn(0, items) on the calling goroutine when items
// does not exceed threshold, and behaves like Range otherwise.
func RangeWithThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Range(items, fn)
}

// Map applies fn to every item and returns the results in input order.
// Above threshold items the work is spread with Range. The returned error is
// the one of the lowest failing index, as a sequential loop would report. A
// panic in fn is returned as an *errors.PanicError for its item.
func Map[T, R any](items []T, threshold int, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	var (
		mu       sync.Mutex
		firstIdx = len(items)
		firstErr error
	)
	RangeWithThreshold(len(items), threshold, func(start, end int) {
		for i := start; i < end; i++ {
			r, err := apply(fn, items[i])
			if err != nil {
				mu.Lock()
				if i < firstIdx {
					firstIdx, firstErr = i, err
				}
				mu.Unlock()
				return
			}
			out[i] = r
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func apply[T, R any](fn func(T) (R, error), item T) (r R, err error) {
	defer errors.Recover(&err, "parallel.Map")
	return fn(item)
}
