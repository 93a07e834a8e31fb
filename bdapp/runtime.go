package bdapp

import "github.com/advdv/bdispatch"

// Runtime provides access to app-scoped dependencies.
// Inject this into controller constructors via fx instead of pulling from context.
//
// Example:
//
//	type ItemController struct {
//	    rt *bdapp.Runtime[Env]
//	}
//
//	func NewItemController(rt *bdapp.Runtime[Env]) *ItemController {
//	    return &ItemController{rt: rt}
//	}
//
//	func (c *ItemController) list(ctx context.Context, args bdispatch.Args) (any, error) {
//	    table := c.rt.Env().TableName
//	    // ...
//	}
type Runtime[E Environment] struct {
	env    E
	engine *bdispatch.Engine
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, engine *bdispatch.Engine) *Runtime[E] {
	return &Runtime[E]{env: env, engine: engine}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Routes returns the registered routes ordered by key.
func (r *Runtime[E]) Routes() []bdispatch.Route {
	return r.engine.Routes()
}
