package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
)

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`).MatchString

// Router dispatches a transaction to the handler registered for the path of
// its message.
type Router struct {
	routes map[string]ida.Handler
}

var _ ida.Registry = (*Router)(nil)
var _ ida.Handler = (*Router)(nil)

// NewRouter returns a router without any routes.
func NewRouter() *Router {
	return &Router{routes: make(map[string]ida.Handler)}
}

// Handle registers a handler for given message path. It panics on an
// invalid path or when the path is already taken.
func (r *Router) Handle(path string, h ida.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for given path. When none is
// registered, the returned handler fails every call with ErrNotFound.
func (r *Router) Handler(path string) ida.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Paths returns all registered message paths.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	return paths
}

func (r *Router) Check(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load message")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return r.Handler(msg.Path()).Check(ctx, db, tx)
}

func (r *Router) Deliver(ctx ida.Context, db ida.KVStore, tx ida.Tx) (*ida.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load message")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return r.Handler(msg.Path()).Deliver(ctx, db, tx)
}

type notFoundHandler string

func (path notFoundHandler) Check(ida.Context, ida.KVStore, ida.Tx) (*ida.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(ida.Context, ida.KVStore, ida.Tx) (*ida.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
