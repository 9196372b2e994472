package server

import (
	"net/http"

	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jrsteele09/go-billdesk/server/prefs"
)

// UIPageData is the template model shared by all pages
type UIPageData struct {
	AppName  string
	Theme    prefs.Theme
	Identity *identity.Identity
	Error    string
	Info     string
	Redirect string

	Bills            []billing.Bill
	Bill             *billing.Bill
	Payments         []billing.Payment
	Categories       []billing.CategoryType
	SelectedCategory billing.CategoryType
	Payable          bool
	Today            string
}

// pageData assembles the fields every page shares: app identity, display
// theme, the current session snapshot, and any flash messages carried in the
// query string.
func (s *Server) pageData(r *http.Request) UIPageData {
	id, _ := s.session.Current()
	theme, _ := s.prefs.Get()

	return UIPageData{
		AppName:  s.config.GetAppName(),
		Theme:    theme,
		Identity: id,
		Error:    r.URL.Query().Get("error"),
		Info:     r.URL.Query().Get("info"),
	}
}

// HomeHandler renders the home page
func (s *Server) HomeHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("home.html")
	if err != nil {
		panic("Failed to parse home template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Categories = billing.AllCategories

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// ThemeToggleHandler flips the persisted display-theme flag and mirrors it in
// a cookie for rendering. Not security relevant.
func (s *Server) ThemeToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme, _ := s.prefs.Get()
		toggled := theme.Toggle()
		if err := s.prefs.Set(toggled); err != nil {
			logError(r.Method, r.URL.Path, err.Error())
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "theme",
			Value:    string(toggled),
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int((365 * 24 * 60 * 60)),
		})

		returnTo := sanitizeIntent(r.FormValue(redirectParam))
		if returnTo == "" {
			returnTo = RouteHome
		}
		redirectSuccess(w, r, returnTo)
	}
}
