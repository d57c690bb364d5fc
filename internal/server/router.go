package server

import (
	"net/http"
	"strings"
)

// BasicRouter is a small [Router] over [http.ServeMux].
//
// Routes are registered as method patterns ("GET /api/songs/{id}") so the mux answers
// unsupported methods with 405 and handlers read path values via [http.Request.PathValue].
type BasicRouter struct {
	mux   *http.ServeMux
	stack []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Only routes registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.stack = append(r.stack, middleware...)
}

// Handle registers handler for method and path behind the current middleware stack.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(pattern(method, path), r.Apply(handler))
}

// HandleFunc is [BasicRouter.Handle] for plain functions.
func (r *BasicRouter) HandleFunc(method, path string, handler http.HandlerFunc) {
	r.Handle(method, path, handler)
}

// Handler registers h under every pattern it reports from [Handler.Routes].
func (r *BasicRouter) Handler(h Handler) {
	wrapped := r.Apply(h)
	for _, route := range h.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// Group registers the routes added by fn under a shared path prefix.
func (r *BasicRouter) Group(prefix string, fn func(g *RouteGroup)) {
	fn(&RouteGroup{router: r, prefix: strings.TrimSuffix(prefix, "/")})
}

// ServeHTTP dispatches to the underlying mux.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler with the middleware stack; the first middleware added runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.stack) - 1; i >= 0; i-- {
		handler = r.stack[i](handler)
	}
	return handler
}

// RouteGroup registers routes on a [BasicRouter] relative to a prefix.
type RouteGroup struct {
	router *BasicRouter
	prefix string
}

func (g *RouteGroup) Get(path string, h http.HandlerFunc)    { g.handle(http.MethodGet, path, h) }
func (g *RouteGroup) Post(path string, h http.HandlerFunc)   { g.handle(http.MethodPost, path, h) }
func (g *RouteGroup) Patch(path string, h http.HandlerFunc)  { g.handle(http.MethodPatch, path, h) }
func (g *RouteGroup) Delete(path string, h http.HandlerFunc) { g.handle(http.MethodDelete, path, h) }

func (g *RouteGroup) handle(method, path string, h http.HandlerFunc) {
	g.router.HandleFunc(method, g.prefix+path, h)
}

func pattern(method, path string) string {
	if method == "" {
		return path
	}
	return method + " " + path
}
