package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const DefaultBatchSize = 50

// batcher shares batch splitting and worker-pool concurrency across
// providers. Each batch becomes one API request issued through run; result
// order follows input order because batches are reassembled by index.
type batcher struct {
	batchSize int
	run       func(ctx context.Context, items []Item) ([]Result, error)
}

func newBatcher(
	batchSize int,
	run func(ctx context.Context, items []Item) ([]Result, error),
) batcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return batcher{batchSize: batchSize, run: run}
}

func (b batcher) split(items []Item) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += b.batchSize {
		end := i + b.batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

func (b batcher) translate(ctx context.Context, items []Item) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	var allResults []Result
	for i, batch := range b.split(items) {
		results, err := b.run(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// translateConcurrent fans batches out to up to concurrency workers
// pulling from a shared queue. The first failure cancels the rest.
func (b batcher) translateConcurrent(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	batches := b.split(items)
	if len(batches) == 1 {
		return b.run(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []Result
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := b.run(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	done := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			done = append(done, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(done, func(i, j int) bool {
		return done[i].Index < done[j].Index
	})

	var allResults []Result
	for _, r := range done {
		allResults = append(allResults, r.Results...)
	}
	return allResults, nil
}
