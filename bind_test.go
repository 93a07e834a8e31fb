package bdispatch_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bdispatch"
	"github.com/stretchr/testify/require"
)

func TestBindOrder(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/hello?q=zzz", nil)
	req.AddCookie(&http.Cookie{Name: "user", Value: "alice"})

	rc, err := bdispatch.NewRequestContext(req, nil)
	require.NoError(t, err)

	rc.Path = map[string]string{"id": "42"}

	args := bdispatch.NewBinder(nil).Bind([]bdispatch.Param{
		bdispatch.Cookie("user"),
		bdispatch.Path("id"),
		bdispatch.Query("q"),
	}, rc, nil)

	require.Equal(t, []any{"alice", "42", "zzz"}, args.Values())
}

func TestBindAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/a/b", nil)
	rc, err := bdispatch.NewRequestContext(req, nil)
	require.NoError(t, err)

	args := bdispatch.NewBinder(nil).Bind([]bdispatch.Param{
		bdispatch.Header("X-Missing"),
		bdispatch.Cookie("user"),
		bdispatch.Form("f"),
		bdispatch.File("upload"),
		bdispatch.Body(),
		bdispatch.Unbound(),
		bdispatch.Path("1"),
	}, rc, nil)

	require.Len(t, args, 7)
	for _, a := range args[:6] {
		require.True(t, a.Absent(), a.Param().String())
		require.Nil(t, a.Value())
	}

	require.False(t, args[6].Absent())
	require.Equal(t, "b", args[6].String())

	require.True(t, args.At(42).Absent())
	require.Equal(t, bdispatch.KindUnbound, args.At(-1).Param().Kind)
}

func TestBindRaw(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace", "t1")

	rc, err := bdispatch.NewRequestContext(req, nil)
	require.NoError(t, err)

	w := bdispatch.NewResponseWriter(httptest.NewRecorder(), -1)
	defer w.Free()

	args := bdispatch.NewBinder(nil).Bind([]bdispatch.Param{
		bdispatch.RawRequest(),
		bdispatch.RawResponse(),
		bdispatch.RawHeaders(),
		bdispatch.Header("x-trace"),
	}, rc, w)

	require.Same(t, req, args[0].Request())
	require.Equal(t, bdispatch.ResponseWriter(w), args[1].Response())
	require.Equal(t, "t1", args[2].Headers().Get("X-Trace"))
	require.Equal(t, "t1", args[3].String())
}

func TestArgCoercion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?n=7&big=9000000000&f=1.5&b=true&bad=seven", nil)
	rc, err := bdispatch.NewRequestContext(req, nil)
	require.NoError(t, err)

	args := bdispatch.NewBinder(nil).Bind([]bdispatch.Param{
		bdispatch.Query("n"),
		bdispatch.Query("big"),
		bdispatch.Query("f"),
		bdispatch.Query("b"),
		bdispatch.Query("bad"),
		bdispatch.Query("missing"),
	}, rc, nil)

	n, err := args[0].Int()
	require.NoError(t, err)
	require.Equal(t, 7, n)

	big, err := args[1].Int64()
	require.NoError(t, err)
	require.Equal(t, int64(9000000000), big)

	f, err := args[2].Float64()
	require.NoError(t, err)
	require.InDelta(t, 1.5, f, 0.0001)

	b, err := args[3].Bool()
	require.NoError(t, err)
	require.True(t, b)

	_, err = args[4].Int()

	var berr *bdispatch.BindingError
	require.ErrorAs(t, err, &berr)
	require.Equal(t, bdispatch.Query("bad"), berr.Param)
	require.ErrorContains(t, err, `bind query("bad")`)

	_, err = args[5].Int()
	require.ErrorIs(t, err, bdispatch.ErrAbsent)
}

func TestArgDecode(t *testing.T) {
	body := []byte(`{"user":{"name":"alice","age":31}}`)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))

	rc, err := bdispatch.NewRequestContext(req, body)
	require.NoError(t, err)

	args := bdispatch.NewBinder(nil).Bind([]bdispatch.Param{
		bdispatch.Body(),
		bdispatch.JSON("user"),
		bdispatch.JSON("user.age"),
		bdispatch.JSON("user.missing"),
	}, rc, nil)

	var whole struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	require.NoError(t, args[0].Decode(&whole))
	require.Equal(t, "alice", whole.User.Name)
	require.Equal(t, body, args[0].Bytes())
	require.JSONEq(t, `{"name":"alice","age":31}`, string(args[1].Bytes()))
	require.Nil(t, args[3].Bytes())

	var user struct {
		Age int `json:"age"`
	}
	require.NoError(t, args[1].Decode(&user))
	require.Equal(t, 31, user.Age)

	age, err := args[2].Int()
	require.NoError(t, err)
	require.Equal(t, 31, age)

	require.ErrorIs(t, args[3].Decode(&user), bdispatch.ErrAbsent)

	var wrong []string
	require.ErrorAs(t, args[1].Decode(&wrong), new(*bdispatch.BindingError))
}
