// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// dashboardHandler handles dashboard requests
type dashboardHandler struct{}

// newDashboardHandler creates a new dashboard handler
func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
// Returns an HTML page with JavaScript polling /stats for cache and
// monitor health.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	// Serve embedded dashboard page
	// http.ServeFileFS requires Go 1.22; serve the same file via
	// http.FileServer over the embedded FS on Go 1.21.
	r2 := new(http.Request)
	*r2 = *r
	u := *r.URL
	u.Path = "/dashboard.html"
	r2.URL = &u
	http.FileServer(http.FS(dashboardFS)).ServeHTTP(w, r2)
}
