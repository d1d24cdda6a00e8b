package engine

import "sync"

// serialCutoff is the batch size below which fanning out goroutines
// costs more than iterating inline.
const serialCutoff = 64

// task runs fn over every element of data, split into contiguous
// chunks across at most workers goroutines. Single-worker worlds and
// small batches run inline on the calling goroutine.
func task[T any](workers int, data []T, fn func(T)) {
	if workers > len(data) {
		workers = len(data)
	}
	if workers <= 1 || len(data) < serialCutoff {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (len(data) + workers - 1) / workers
	for start := 0; start < len(data); start += chunk {
		end := min(start+chunk, len(data))
		wg.Add(1)
		go func(part []T) {
			defer wg.Done()
			for _, d := range part {
				fn(d)
			}
		}(data[start:end])
	}
	wg.Wait()
}
