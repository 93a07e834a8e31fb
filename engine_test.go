package bdispatch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestEngineReplacementIsLogged(t *testing.T) {
	logs := bdispatch.NewTestLogger(t)
	engine := bdispatch.NewEngineWith(logs, nil)

	engine.HandleFunc("GET", "/a", constant("first"))
	engine.HandleFunc("GET", "/a", constant("second"))
	engine.HandleFunc("POST", "/a", constant("post"))

	require.EqualValues(t, 1, logs.NumLogRouteReplaced)
	require.Len(t, engine.Routes(), 2)

	rec := serve(t, engine.Adapter(), httptest.NewRequest(http.MethodGet, "/a", nil))
	require.Equal(t, "second", rec.Body.String())
}

func TestEngineMountOwner(t *testing.T) {
	engine := bdispatch.NewEngine()
	engine.Mount(helloController{})

	routes := engine.Routes()
	keys := lo.Map(routes, func(r bdispatch.Route, _ int) bdispatch.RouteKey { return r.Key })
	require.Contains(t, keys, bdispatch.RouteKey("get:/api/hello"))
	require.Contains(t, keys, bdispatch.RouteKey("post:/api/hello"))

	for _, r := range routes {
		require.Equal(t, "bdispatch_test.helloController", r.Handler.Owner)
	}

	hello, ok := lo.Find(routes, func(r bdispatch.Route) bool { return r.Key == "get:/api/hello" })
	require.True(t, ok)
	require.Equal(t, "bdispatch_test.helloController.Hello", hello.Handler.Identity())
	require.Equal(t, []bdispatch.Param{bdispatch.Cookie("user")}, hello.Handler.Params)
}

func TestControllerPrefixes(t *testing.T) {
	engine := bdispatch.NewEngine()

	var owner string

	engine.Mount(bdispatch.ControllerFunc(func(rs *bdispatch.Routes) {
		owner = rs.Owner()

		v1 := rs.Prefix("/api/").Prefix("v1")
		v1.Put("/items", "Put", constant(""))
		v1.Delete("items/", "Delete", constant(""))
		v1.Handle("PATCH", "", "Patch", constant(""))
		rs.Get("/", "Root", constant(""))
		v1.Use("/items", bdispatch.FilterFunc(func(_ *bdispatch.RequestContext, _ bdispatch.ResponseWriter, next bdispatch.Continuation) error {
			return next.Proceed()
		}))
	}))

	require.Equal(t, "bdispatch.ControllerFunc", owner)
	require.Equal(t, []bdispatch.RouteKey{"delete:/api/v1/items/", "get:/", "patch:/api/v1", "put:/api/v1/items"},
		lo.Map(engine.Routes(), func(r bdispatch.Route, _ int) bdispatch.RouteKey { return r.Key }))

	require.Len(t, engine.Filters(), 1)
	require.Equal(t, "/api/v1/items", engine.Filters()[0].Prefix)
}

func TestEngineDispatcher(t *testing.T) {
	engine := bdispatch.NewEngine()
	engine.HandleFunc("GET", "/ctx", func(ctx context.Context, _ bdispatch.Args) (any, error) {
		return "ok", ctx.Err()
	})

	rec, err := dispatch(t, engine.Dispatcher(), httptest.NewRequest(http.MethodGet, "/ctx", nil), nil)
	require.NoError(t, err)
	require.Equal(t, "ok", rec.Body.String())

	engine.Freeze()
	require.Panics(t, func() { engine.HandleFunc("GET", "/x", constant("")) })
}
