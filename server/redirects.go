package server

import (
	"net/http"
	"net/url"
)

// redirectSuccess sends the visitor to path with an optional info message.
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError sends the visitor back to path with a user-facing error
// message in the query string.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, withQueryParam(path, "error", errorMsg), http.StatusSeeOther)
}

// redirectWithInfo is redirectWithError's counterpart for transient
// non-error notifications.
func redirectWithInfo(w http.ResponseWriter, r *http.Request, path, infoMsg string) {
	http.Redirect(w, r, withQueryParam(path, "info", infoMsg), http.StatusSeeOther)
}

// redirectToReauth performs the navigation half of authorization-failure
// handling: a silent redirect to the re-authentication entry point. The lost
// session is itself the visible signal, so no error message is attached.
func (s *Server) redirectToReauth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, RouteRegister, http.StatusSeeOther)
}

func withQueryParam(path, key, value string) string {
	separator := "?"
	if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
		separator = "&"
	}
	return path + separator + key + "=" + url.QueryEscape(value)
}
