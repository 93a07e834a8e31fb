package bdispatch

import (
	"strings"
	"sync/atomic"

	"github.com/samber/lo"
)

// Continuation resumes request processing: the next matching filter or, when none remain, the
// route's handler.
type Continuation interface {
	Proceed() error
}

// ContinuationFunc allows casting a function to implement [Continuation].
type ContinuationFunc func() error

// Proceed implements the [Continuation] interface.
func (f ContinuationFunc) Proceed() error { return f() }

// Filter intercepts requests below a path prefix. A filter that returns without proceeding
// short-circuits the request; whatever it wrote to w becomes the response.
type Filter interface {
	Filter(rc *RequestContext, w ResponseWriter, next Continuation) error
}

// FilterFunc allows casting a function to implement [Filter].
type FilterFunc func(rc *RequestContext, w ResponseWriter, next Continuation) error

// Filter implements the [Filter] interface.
func (f FilterFunc) Filter(rc *RequestContext, w ResponseWriter, next Continuation) error {
	return f(rc, w, next)
}

// FilterBinding scopes a filter to a path prefix.
type FilterBinding struct {
	Prefix string
	Filter Filter
}

// Matches reports whether the binding applies to uri: uri must be strictly longer than the
// prefix and start with it.
func (b FilterBinding) Matches(uri string) bool {
	return len(uri) > len(b.Prefix) && strings.HasPrefix(uri, b.Prefix)
}

// FilterChain is an ordered list of filter bindings. Matching bindings run in registration
// order; the first match runs first regardless of prefix length.
type FilterChain struct {
	bindings []FilterBinding
	frozen   atomic.Bool
}

// NewFilterChain inits an empty chain.
func NewFilterChain() *FilterChain { return &FilterChain{} }

// Use appends a binding. It panics once the chain is frozen.
func (c *FilterChain) Use(prefix string, f Filter) {
	if c.frozen.Load() {
		panic("bdispatch: cannot register after serving started")
	}

	c.bindings = append(c.bindings, FilterBinding{Prefix: prefix, Filter: f})
}

// Bindings returns a copy of the bindings in registration order.
func (c *FilterChain) Bindings() []FilterBinding {
	return append([]FilterBinding(nil), c.bindings...)
}

// Matching returns the bindings that apply to uri, in registration order.
func (c *FilterChain) Matching(uri string) []FilterBinding {
	return lo.Filter(c.bindings, func(b FilterBinding, _ int) bool { return b.Matches(uri) })
}

// Freeze makes any further Use panic.
func (c *FilterChain) Freeze() { c.frozen.Store(true) }

// Execute runs the first matching filter with a continuation over the remaining matches. The
// terminal continuation runs directly when nothing matches, and at most once in any case.
func (c *FilterChain) Execute(rc *RequestContext, w ResponseWriter, terminal Continuation) error {
	matched := c.Matching(rc.URI)
	if len(matched) < 1 {
		return terminal.Proceed()
	}

	return (&cursor{matched: matched, rc: rc, w: w, terminal: terminal}).run()
}

// cursor is the continuation handed to the filter at position pos.
type cursor struct {
	matched  []FilterBinding
	pos      int
	rc       *RequestContext
	w        ResponseWriter
	terminal Continuation

	proceeded bool
}

func (c *cursor) run() error {
	return c.matched[c.pos].Filter.Filter(c.rc, c.w, c)
}

func (c *cursor) Proceed() error {
	if c.proceeded {
		return ErrAlreadyProceeded
	}

	c.proceeded = true

	if c.pos+1 >= len(c.matched) {
		return c.terminal.Proceed()
	}

	next := &cursor{matched: c.matched, pos: c.pos + 1, rc: c.rc, w: c.w, terminal: c.terminal}

	return next.run()
}
