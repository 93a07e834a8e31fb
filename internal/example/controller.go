// Package example implements an example controller and filter in an outside package.
package example

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Greeting is the JSON result of the greeting route.
type Greeting struct {
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	At        time.Time `json:"at"`
}

// Upload describes a received file.
type Upload struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// HelloController serves the hello routes.
type HelloController struct {
	now func() time.Time
}

// NewHelloController creates the controller.
func NewHelloController() *HelloController {
	return &HelloController{now: time.Now}
}

// Routes implements [bdispatch.Controller].
func (c *HelloController) Routes(rs *bdispatch.Routes) {
	api := rs.Prefix("/api")

	api.Get("/hello", "Hello", c.hello, bdispatch.Cookie("user"))
	api.Post("/hello", "Hello2", c.hello2, bdispatch.Form("liu"))
	api.Get("/hello/segments/demo", "Segments", c.segments, bdispatch.Path("2"), bdispatch.Path("3"))
	api.Post("/greetings", "Greet", c.greet, bdispatch.JSON("name"), bdispatch.Body())
	api.Post("/uploads", "Upload", c.upload, bdispatch.File("file"))
}

func (c *HelloController) hello(ctx context.Context, args bdispatch.Args) (any, error) {
	bdapp.Log(ctx).Debug("hello", zap.Bool("anonymous", args.At(0).Absent()))
	return "hello", nil
}

func (c *HelloController) hello2(_ context.Context, args bdispatch.Args) (any, error) {
	if _, err := args.At(0).Int(); err != nil {
		return nil, err
	}

	return "hello2", nil
}

// segments echoes the third and fourth path segment, positions 2 and 3 counted from zero.
func (c *HelloController) segments(_ context.Context, args bdispatch.Args) (any, error) {
	return args.At(0).String() + " " + args.At(1).String(), nil
}

func (c *HelloController) greet(ctx context.Context, args bdispatch.Args) (any, error) {
	var req struct {
		Name  string `json:"name"`
		Shout bool   `json:"shout"`
	}

	if err := args.At(1).Decode(&req); err != nil {
		return nil, err
	}

	if args.At(0).Absent() {
		return nil, errors.New("name is required")
	}

	msg := "hello " + args.At(0).String()
	if req.Shout {
		msg += "!"
	}

	return Greeting{Message: msg, RequestID: bdapp.RequestID(ctx), At: c.now().UTC()}, nil
}

func (c *HelloController) upload(_ context.Context, args bdispatch.Args) (any, error) {
	fh := args.At(0).File()
	if fh == nil {
		return nil, errors.New("file is required")
	}

	return Upload{Name: fh.Filename, Size: fh.Size}, nil
}

var _ bdispatch.Controller = &HelloController{}

// AccessLog logs every request below its prefix once the handler returned.
func AccessLog() bdispatch.Filter {
	return bdispatch.FilterFunc(func(rc *bdispatch.RequestContext, w bdispatch.ResponseWriter, next bdispatch.Continuation) error {
		start := time.Now()
		err := next.Proceed()

		bdapp.Log(rc.Request.Context()).Info("request",
			zap.String("method", rc.Request.Method),
			zap.String("uri", rc.URI),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))

		return err
	})
}

// RequireCookie short-circuits requests without the named cookie with a 401.
func RequireCookie(name string) bdispatch.Filter {
	return bdispatch.FilterFunc(func(rc *bdispatch.RequestContext, w bdispatch.ResponseWriter, next bdispatch.Continuation) error {
		if _, ok := rc.Cookies[name]; !ok {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, "missing cookie %q", name)

			return nil
		}

		return next.Proceed()
	})
}
