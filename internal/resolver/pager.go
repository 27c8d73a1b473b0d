package resolver

import "context"

// Page is one response of a paged endpoint. Next is the continuation cursor;
// an empty Next or Done means the remote has no further pages.
type Page[T any] struct {
	Items []T
	Next  string
	Done  bool
}

// PageFunc fetches the page at cursor. The first call receives "".
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// StopFunc is consulted after every page. Returning true ends the iteration
// after the current batch has been delivered.
type StopFunc[T any] func(accumulated, batch []T) bool

// Pager iterates a cursor-paged remote list one page at a time. It is lazy,
// finite and non-restartable:
//
//	p := NewPager(fetch, nil)
//	for p.Next(ctx) {
//		use(p.Batch())
//	}
//	if err := p.Err(); err != nil { ... }
//
// Pages are requested strictly in sequence and never reordered. Errors from
// fetch end the iteration and are returned as-is from Err.
type Pager[T any] struct {
	fetch    PageFunc[T]
	stop     StopFunc[T]
	maxPages int

	cursor      string
	batch       []T
	accumulated []T
	pages       int
	done        bool
	stopped     bool
	limited     bool
	err         error
}

// NewPager returns a Pager over fetch. stop may be nil.
func NewPager[T any](fetch PageFunc[T], stop StopFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, stop: stop}
}

// LimitPages caps the number of pages requested. Zero means no cap.
func (p *Pager[T]) LimitPages(n int) *Pager[T] {
	p.maxPages = n
	return p
}

// Next fetches the next page and reports whether a batch is available.
func (p *Pager[T]) Next(ctx context.Context) bool {
	if p.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		p.fail(err)
		return false
	}

	page, err := p.fetch(ctx, p.cursor)
	if err != nil {
		p.fail(err)
		return false
	}

	p.pages++
	p.batch = page.Items
	p.accumulated = append(p.accumulated, page.Items...)

	if page.Done || page.Next == "" {
		p.done = true
	} else {
		p.cursor = page.Next
	}
	if p.stop != nil && p.stop(p.accumulated, p.batch) {
		p.done = true
		p.stopped = true
	}
	if !p.done && p.maxPages > 0 && p.pages >= p.maxPages {
		p.done = true
		p.limited = true
	}
	return true
}

func (p *Pager[T]) fail(err error) {
	p.err = err
	p.batch = nil
	p.done = true
}

// Batch returns the items of the page fetched by the last call to Next
func (p *Pager[T]) Batch() []T {
	return p.batch
}

// Accumulated returns every item received so far, in page order
func (p *Pager[T]) Accumulated() []T {
	return p.accumulated
}

// Err returns the error that ended the iteration, if any
func (p *Pager[T]) Err() error {
	return p.err
}

// Pages returns how many pages were fetched
func (p *Pager[T]) Pages() int {
	return p.pages
}

// Stopped reports whether the stop predicate ended the iteration
func (p *Pager[T]) Stopped() bool {
	return p.stopped
}

// Limited reports whether LimitPages ended the iteration while more pages remained
func (p *Pager[T]) Limited() bool {
	return p.limited
}
