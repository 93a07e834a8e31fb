package bdispatch_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// recording returns a filter that appends its name to the trace and then proceeds.
func recording(name string, trace *[]string) bdispatch.FilterFunc {
	return func(_ *bdispatch.RequestContext, _ bdispatch.ResponseWriter, next bdispatch.Continuation) error {
		*trace = append(*trace, name)
		return next.Proceed()
	}
}

func execute(t *testing.T, chain *bdispatch.FilterChain, uri string, trace *[]string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	rc, err := bdispatch.NewRequestContext(httptest.NewRequest(http.MethodGet, uri, nil), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	w := bdispatch.NewResponseWriter(rec, -1)

	err = chain.Execute(rc, w, bdispatch.ContinuationFunc(func() error {
		*trace = append(*trace, "terminal")
		return nil
	}))

	require.NoError(t, w.FlushBuffer())
	w.Free()

	return rec, err
}

func TestFilterFirstMatchWins(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	chain.Use("/admin", recording("A", &trace))
	chain.Use("/", recording("B", &trace))

	_, err := execute(t, chain, "/admin/users", &trace)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "terminal"}, trace)
}

func TestFilterRegistrationOrderOverSpecificity(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	chain.Use("/", recording("B", &trace))
	chain.Use("/admin", recording("A", &trace))

	_, err := execute(t, chain, "/admin/users", &trace)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A", "terminal"}, trace)
}

func TestFilterTerminalOnce(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	for i := range 5 {
		chain.Use(fmt.Sprintf("/nope%d", i), recording("x", &trace))
	}

	_, err := execute(t, chain, "/api/hello", &trace)
	require.NoError(t, err)
	require.Equal(t, []string{"terminal"}, trace)
}

func TestFilterPrefixMustBeShorter(t *testing.T) {
	b := bdispatch.FilterBinding{Prefix: "/admin"}
	require.False(t, b.Matches("/admin"))
	require.True(t, b.Matches("/admin/"))
	require.True(t, b.Matches("/administrator"))
	require.False(t, b.Matches("/adm"))
}

func TestFilterShortCircuit(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	chain.Use("/", bdispatch.FilterFunc(func(_ *bdispatch.RequestContext, w bdispatch.ResponseWriter, _ bdispatch.Continuation) error {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "nope")

		return nil
	}))
	chain.Use("/", recording("after", &trace))

	rec, err := execute(t, chain, "/secret", &trace)
	require.NoError(t, err)
	require.Empty(t, trace)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "nope", rec.Body.String())
}

func TestFilterError(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	chain.Use("/", bdispatch.FilterFunc(func(*bdispatch.RequestContext, bdispatch.ResponseWriter, bdispatch.Continuation) error {
		return errors.New("denied")
	}))

	_, err := execute(t, chain, "/x", &trace)
	require.EqualError(t, err, "denied")
	require.Empty(t, trace)
}

func TestFilterProceedTwice(t *testing.T) {
	var trace []string

	chain := bdispatch.NewFilterChain()
	chain.Use("/", bdispatch.FilterFunc(func(_ *bdispatch.RequestContext, _ bdispatch.ResponseWriter, next bdispatch.Continuation) error {
		require.NoError(t, next.Proceed())
		return next.Proceed()
	}))

	_, err := execute(t, chain, "/x", &trace)
	require.ErrorIs(t, err, bdispatch.ErrAlreadyProceeded)
	require.Equal(t, []string{"terminal"}, trace)
}

func TestFilterChainFreeze(t *testing.T) {
	chain := bdispatch.NewFilterChain()
	chain.Use("/a", recording("a", new([]string)))
	chain.Freeze()

	require.Len(t, chain.Bindings(), 1)
	require.Panics(t, func() { chain.Use("/b", recording("b", new([]string))) })
}
