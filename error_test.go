package bdispatch_test

import (
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestHandlerError(t *testing.T) {
	cause := &bdispatch.BindingError{Param: bdispatch.Query("n"), Err: bdispatch.ErrAbsent}
	err := errors.Wrap(&bdispatch.HandlerError{Route: bdispatch.NewRouteKey("GET", "/a"), Err: cause}, "serve")

	require.Equal(t, `serve: handle get:/a: bind query("n"): bdispatch: parameter is absent`, err.Error())
	require.ErrorIs(t, err, bdispatch.ErrAbsent)

	route, ok := bdispatch.RouteOf(err)
	require.True(t, ok)
	require.Equal(t, bdispatch.RouteKey("get:/a"), route)

	_, ok = bdispatch.RouteOf(bdispatch.ErrRouteNotFound)
	require.False(t, ok)
}
