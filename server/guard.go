package server

import (
	"net/http"
	"net/url"
	"strings"
)

// RequireSession gates rendering of a protected route. It is a pure function
// of the session snapshot, evaluated on every request:
//   - session still resolving: render the neutral loading page, no redirect
//   - identity present: render the protected content unchanged
//   - otherwise: redirect to the login entry point, preserving the attempted
//     path so a successful sign-in can return the visitor there.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	loadingTmpl, err := ParseTemplate("loading.html")
	if err != nil {
		panic("Failed to parse loading template: " + err.Error())
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, resolving := s.session.Current()

			if resolving {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_ = loadingTmpl.Execute(w, nil)
				return
			}

			if id != nil {
				next(w, r)
				return
			}

			intent := r.URL.Path
			if r.URL.RawQuery != "" {
				intent += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, RouteLogin+"?"+redirectParam+"="+url.QueryEscape(intent), http.StatusSeeOther)
		}
	}
}

// sanitizeIntent accepts only local absolute paths as a navigation intent, so
// the login redirect can never send the visitor off-site.
func sanitizeIntent(intent string) string {
	if intent == "" || !strings.HasPrefix(intent, "/") || strings.HasPrefix(intent, "//") {
		return ""
	}
	return intent
}

// consumeIntent resolves the post-authentication destination: the preserved
// intent when one was recorded, else the default landing path.
func (s *Server) consumeIntent(intent string) string {
	if path := sanitizeIntent(intent); path != "" {
		return path
	}
	if path := s.config.GetDefaultLandingPath(); path != "" {
		return path
	}
	return RouteHome
}
