package stream

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies fn to every value with at most n calls in flight and
// yields the results in input order. The source is drained before the first
// result is produced. The first error cancels the remaining calls and is
// returned from Next.
func ParallelMap[I, O any](s *Stream[I], n int, fn func(context.Context, I) (O, error)) *Stream[O] {
	return &Stream[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &parallelIter[I, O]{source: s.create(ctx), n: n, fn: fn}
		},
	}
}

type parallelIter[I, O any] struct {
	source Iterator[I]
	n      int
	fn     func(context.Context, I) (O, error)

	started bool
	results []O
	err     error
	index   int
}

func (it *parallelIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	if !it.started {
		it.started = true
		it.results, it.err = it.run(ctx)
	}
	if it.err != nil {
		return zero, false, it.err
	}
	if it.index >= len(it.results) {
		return zero, false, nil
	}
	val := it.results[it.index]
	it.index++
	return val, true, nil
}

func (it *parallelIter[I, O]) run(ctx context.Context) ([]O, error) {
	var inputs []I
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		inputs = append(inputs, val)
	}

	results := make([]O, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if it.n > 0 {
		g.SetLimit(it.n)
	}
	for i, in := range inputs {
		g.Go(func() error {
			out, err := it.fn(gctx, in)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (it *parallelIter[I, O]) Close() error { return it.source.Close() }
