// Package site serves the embedded join page and share-code redirects.
package site

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// Error constants
var (
	ErrServe = errors.New("site serve failed")
)

// shareCodePattern matches the 6-character alphanumeric codes printed
// on session invites. Matching is case-insensitive; codes are
// canonicalized to upper case on redirect.
var shareCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// Register attaches the static site and the share-code redirect to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Serve the embedded site at root /
	files := http.FileServer(FS())
	mux.Handle("/", files)

	mux.HandleFunc("/join/", HandleJoinRedirect)
}

// HandleJoinRedirect handles GET /join/{share_code} requests from
// invite links and QR codes, bouncing them to the join page.
func HandleJoinRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	code := strings.TrimPrefix(r.URL.Path, "/join/")
	if !shareCodePattern.MatchString(code) {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/join.html?code="+strings.ToUpper(code), http.StatusFound)
}
