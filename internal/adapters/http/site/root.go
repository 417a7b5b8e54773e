// Package site serves the embedded interactive dashboard.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("dashboard site serve failed")
)

// Prefix is the path the dashboard is mounted under.
const Prefix = "/dashboard/"

// Register attaches the dashboard routes to mux. The bare root redirects
// to the dashboard.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle(Prefix, http.StripPrefix(Prefix, http.FileServer(FS())))
	mux.Handle("/{$}", NewRootHandler())
}

// RootHandler redirects the site root to the dashboard.
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, Prefix, http.StatusFound)
}
