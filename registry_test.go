package bdispatch_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func constant(s string) bdispatch.HandlerFunc {
	return func(context.Context, bdispatch.Args) (any, error) { return s, nil }
}

func TestRouteKey(t *testing.T) {
	key := bdispatch.NewRouteKey("GET", "/api/hello")
	require.Equal(t, bdispatch.RouteKey("get:/api/hello"), key)
	require.Equal(t, "get", key.Verb())
	require.Equal(t, "/api/hello", key.Path())

	require.Equal(t, "/a:b", bdispatch.NewRouteKey("PUT", "/a:b").Path())
}

func TestRegistryResolve(t *testing.T) {
	reg := bdispatch.NewRegistry()
	reg.Register(http.MethodGet, "/api/hello", bdispatch.Describe("hello", constant("hello")))

	route, ok := reg.Resolve("GET", "/api/hello?x=1")
	require.True(t, ok)
	require.Equal(t, "hello", route.Handler.Method)

	_, ok = reg.Resolve("get", "/api/hello")
	require.True(t, ok, "verbs are case-insensitive")

	for _, uri := range []string{"/api/hello/", "/api/hell", "/API/hello", "/api/hello/x"} {
		_, ok = reg.Resolve("GET", uri)
		require.False(t, ok, uri)
	}

	_, ok = reg.Resolve("POST", "/api/hello")
	require.False(t, ok)
}

func TestRegistryLiteralBraces(t *testing.T) {
	reg := bdispatch.NewRegistry()
	reg.Register("GET", "/api/hello/{id}/{name}", bdispatch.Describe("tpl", constant("x")))

	_, ok := reg.Resolve("GET", "/api/hello/{id}/{name}")
	require.True(t, ok)

	_, ok = reg.Resolve("GET", "/api/hello/1/bob")
	require.False(t, ok)
}

func TestRegistryLookupIsExact(t *testing.T) {
	reg := bdispatch.NewRegistry()
	reg.Register("GET", "/api/a", bdispatch.Describe("a", constant("A")))

	_, ok := reg.Lookup("get", "/api/a")
	require.True(t, ok)

	_, ok = reg.Lookup("GET", "/api/a?junk")
	require.False(t, ok)

	_, ok = reg.Resolve("GET", "/api/a?junk")
	require.True(t, ok)
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := bdispatch.NewRegistry()
	require.False(t, reg.Register("GET", "/a", bdispatch.Describe("first", constant("1"))))
	require.True(t, reg.Register("get", "/a", bdispatch.Describe("second", constant("2"))))
	require.Equal(t, 1, reg.Len())

	route, ok := reg.Resolve("GET", "/a")
	require.True(t, ok)
	require.Equal(t, "second", route.Handler.Method)
}

func TestRegistryRoutesSorted(t *testing.T) {
	reg := bdispatch.NewRegistry()
	reg.Register("POST", "/b", bdispatch.Describe("b", constant("")))
	reg.Register("GET", "/z", bdispatch.Describe("z", constant("")))
	reg.Register("GET", "/a", bdispatch.Describe("a", constant("")))

	var keys []bdispatch.RouteKey
	for _, r := range reg.Routes() {
		keys = append(keys, r.Key)
	}

	require.Equal(t, []bdispatch.RouteKey{"get:/a", "get:/z", "post:/b"}, keys)
}

func TestRegistryFreeze(t *testing.T) {
	reg := bdispatch.NewRegistry()
	reg.Freeze()

	require.PanicsWithValue(t, "bdispatch: cannot register after serving started", func() {
		reg.Register("GET", "/", bdispatch.Describe("x", constant("")))
	})
}

func TestRegistryNilHandler(t *testing.T) {
	require.Panics(t, func() {
		bdispatch.NewRegistry().Register("GET", "/", bdispatch.HandlerDescriptor{Method: "x"})
	})
}

func TestRegistryProperties(t *testing.T) {
	path := rapid.StringMatching(`(/[a-z0-9]{1,6}){1,4}`)
	verb := rapid.SampledFrom([]string{"GET", "POST", "PUT", "DELETE", "get", "post"})

	rapid.Check(t, func(t *rapid.T) {
		reg := bdispatch.NewRegistry()
		p, v := path.Draw(t, "path"), verb.Draw(t, "verb")
		query := rapid.StringMatching(`[a-z=&]{0,12}`).Draw(t, "query")

		n := rapid.IntRange(1, 5).Draw(t, "registrations")
		for i := range n {
			reg.Register(v, p, bdispatch.Describe("m"+string(rune('a'+i)), constant("")))
		}

		plain, ok := reg.Resolve(v, p)
		if !ok {
			t.Fatalf("registered route %s %s did not resolve", v, p)
		}

		withQuery, ok := reg.Resolve(v, p+"?"+query)
		if !ok || withQuery.Handler.Method != plain.Handler.Method {
			t.Fatalf("query string changed resolution of %s", p)
		}

		if want := "m" + string(rune('a'+n-1)); plain.Handler.Method != want {
			t.Fatalf("expected last registration %s, got %s", want, plain.Handler.Method)
		}

		other := path.Draw(t, "other")
		if _, ok := reg.Resolve(v, other); ok != (other == p) {
			t.Fatalf("unexpected resolution of %s", other)
		}
	})
}
