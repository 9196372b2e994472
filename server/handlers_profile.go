package server

import (
	"net/http"

	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jrsteele09/go-billdesk/internal/utils"
	"github.com/rs/zerolog/log"
)

// ProfilePageHandler renders the current user's profile.
func (s *Server) ProfilePageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("profile.html")
	if err != nil {
		panic("Failed to parse profile template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// ProfileUpdateHandler applies display-name/photo edits through the session.
func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		update := identity.ProfileUpdate{
			DisplayName: utils.Ptr(r.FormValue("name")),
		}
		if photoURL := r.FormValue("photoURL"); photoURL != "" {
			update.PhotoURL = utils.Ptr(photoURL)
		}

		if err := s.session.UpdateProfile(r.Context(), update); err != nil {
			log.Warn().Err(err).Msg("profile update failed")
			redirectWithError(w, r, RouteProfile, "Failed to update profile. Please try again.")
			return
		}

		redirectWithInfo(w, r, RouteProfile, "Profile updated successfully!")
	}
}
