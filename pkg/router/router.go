// Package router wraps chi with named routes and Laravel-style groups.
package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered named route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux    chi.Router
	mu     sync.RWMutex
	routes []RouteInfo
	byName map[string]string
}

// Group carries a path prefix and middleware stack shared by its routes.
type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	return &Router{
		mux:    chi.NewRouter(),
		byName: make(map[string]string),
	}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

// Param returns the named URL parameter from a chi-routed request.
func Param(req *http.Request, name string) string {
	return chi.URLParam(req, name)
}

func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// HandleFunc mounts a handler for all methods on path (used for /metrics).
func (r *Router) HandleFunc(path string, handler http.HandlerFunc) {
	r.mux.HandleFunc(normalizePath(path), handler)
}

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.mount(http.MethodGet, path, name, h, mw...)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.mount(http.MethodPost, path, name, h, mw...)
}

func (r *Router) Put(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.mount(http.MethodPut, path, name, h, mw...)
}

func (r *Router) Patch(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.mount(http.MethodPatch, path, name, h, mw...)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	r.mount(http.MethodDelete, path, name, h, mw...)
}

// Routes returns every named route registered so far.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...)
}

// Path resolves a route name to its path pattern.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.byName[name]
	return path, ok
}

// URL builds a concrete URL for a named route, substituting {param} segments.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}

	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}

	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}

	return path, nil
}

func (r *Router) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := normalizePath(path)
	r.mux.Method(method, fullPath, chain(handler, middlewares...))
	r.record(method, fullPath, name)
}

func (r *Router) record(method, path, name string) {
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, RouteInfo{Method: method, Path: path, Name: name})
	r.byName[name] = path
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)

	return &Group{
		router:      g.router,
		prefix:      joinPath(g.prefix, prefix),
		middlewares: combined,
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodGet, path, name, h, mw...)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPost, path, name, h, mw...)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPut, path, name, h, mw...)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodPatch, path, name, h, mw...)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mw ...Middleware) {
	g.mount(http.MethodDelete, path, name, h, mw...)
}

func (g *Group) mount(method, path, name string, handler http.HandlerFunc, middlewares ...Middleware) {
	fullPath := joinPath(g.prefix, path)
	combined := append(append([]Middleware(nil), g.middlewares...), middlewares...)

	g.router.mux.Method(method, fullPath, chain(handler, combined...))
	g.router.record(method, fullPath, name)
}

func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func joinPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	return joinPath(path)
}
