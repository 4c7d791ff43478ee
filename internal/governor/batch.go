package governor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one batch item. Exactly one of Value/Err is meaningful.
type BatchResult[I, T any] struct {
	Index int
	Item  I
	Value T
	Err   error
}

// RunBatch calls fn for every item with at most maxConcurrency calls in flight.
//
// Results come back in input order. A failing or panicking item is recorded in
// its own result and never stops its siblings. maxConcurrency <= 0 or an empty
// item list yields an empty result.
func RunBatch[I, T any](ctx context.Context, items []I, maxConcurrency int, fn func(context.Context, I) (T, error)) []BatchResult[I, T] {
	if maxConcurrency <= 0 || len(items) == 0 {
		return []BatchResult[I, T]{}
	}

	results := make([]BatchResult[I, T], len(items))
	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for i, item := range items {
		results[i] = BatchResult[I, T]{Index: i, Item: item}
		g.Go(func() error {
			results[i].Value, results[i].Err = runItem(ctx, item, fn)
			return nil
		})
	}
	_ = g.Wait() // item errors live in results

	return results
}

func runItem[I, T any](ctx context.Context, item I, fn func(context.Context, I) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("batch: item panicked", slog.Any("panic", r))
			err = fmt.Errorf("batch item panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return v, Cancelled(err)
	}
	return fn(ctx, item)
}

// Succeeded counts results without an error.
func Succeeded[I, T any](results []BatchResult[I, T]) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
