package paging

import (
	"context"
	"errors"
	"iter"
)

// ErrIteratorConsumed is yielded when Seq is ranged over a second time.
var ErrIteratorConsumed = errors.New("paging: iterator already consumed")

// Iterator yields items lazily, requesting a page only when the previous
// one is exhausted. It is forward-only and cannot be restarted.
//
//	it := paging.Iterate(ctx, f, req)
//	for it.Next() {
//		use(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	p    *pager[T]
	buf  []T
	idx  int
	cur  T
	err  error
	used bool
}

// Iterate returns a lazy iterator over req. No request is made until Next.
func Iterate[T any](ctx context.Context, f *Fetcher, req PageRequest[T]) *Iterator[T] {
	return &Iterator[T]{p: newPager(ctx, f, req)}
}

// Next advances to the next item, fetching a page when needed.
func (it *Iterator[T]) Next() bool {
	for it.idx >= len(it.buf) {
		if it.err != nil || it.p.done {
			return false
		}
		items, err := it.p.nextPage()
		if err != nil {
			it.err = err
			return false
		}
		it.buf, it.idx = items, 0
	}
	it.cur = it.buf[it.idx]
	it.idx++
	return true
}

// Item returns the current item.
func (it *Iterator[T]) Item() T {
	return it.cur
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Pages returns how many pages have been fetched.
func (it *Iterator[T]) Pages() int {
	return it.p.pages
}

// Seq adapts the iterator for range-over-func. A terminal error is yielded
// once, with the zero item. Seq can be ranged over only once.
func (it *Iterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if it.used {
			yield(zero, ErrIteratorConsumed)
			return
		}
		it.used = true
		for it.Next() {
			if !yield(it.Item(), nil) {
				return
			}
		}
		if it.err != nil {
			yield(zero, it.err)
		}
	}
}

// Collect takes up to limit items (all when limit <= 0) without fetching
// pages beyond the one holding the last taken item.
func Collect[T any](it *Iterator[T], limit int) ([]T, error) {
	var out []T
	for (limit <= 0 || len(out) < limit) && it.Next() {
		out = append(out, it.Item())
	}
	return out, it.Err()
}
