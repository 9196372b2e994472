package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jrsteele09/go-billdesk/internal/utils"
	"github.com/rs/zerolog/log"
)

// LoginPageHandler renders the login page
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Redirect = sanitizeIntent(r.URL.Query().Get(redirectParam))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// LoginSubmitHandler signs the user in with email/password and returns them
// to the preserved navigation intent, or the default landing page.
func (s *Server) LoginSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		intent := sanitizeIntent(r.FormValue(redirectParam))

		if _, err := s.session.SignIn(r.Context(), email, password); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("login failed")
			redirectWithError(w, r, loginPath(intent), "Login failed. Check your email or password.")
			return
		}

		redirectSuccess(w, r, s.consumeIntent(intent))
	}
}

// RegisterPageHandler renders the registration page
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	tmpl, err := ParseTemplate("register.html")
	if err != nil {
		panic("Failed to parse register template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Redirect = sanitizeIntent(r.URL.Query().Get(redirectParam))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	}
}

// RegisterSubmitHandler creates an account with the provided profile and
// signs it in.
func (s *Server) RegisterSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		intent := sanitizeIntent(r.FormValue(redirectParam))
		profile := identity.ProfileUpdate{
			DisplayName: utils.Ptr(r.FormValue("name")),
			PhotoURL:    utils.Ptr(r.FormValue("photoURL")),
		}

		if _, err := s.session.SignUp(r.Context(), email, password, profile); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("registration failed")
			redirectWithError(w, r, registerPath(intent), authErrorMessage(err))
			return
		}

		redirectSuccess(w, r, s.consumeIntent(intent))
	}
}

// ForgotPasswordHandler requests a password-reset email for the address
// entered on the login form.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		if email == "" {
			redirectWithError(w, r, RouteLogin, "Please enter your email address first.")
			return
		}

		if err := s.session.RequestPasswordReset(r.Context(), email); err != nil {
			redirectWithError(w, r, RouteLogin, authErrorMessage(err))
			return
		}

		redirectWithInfo(w, r, RouteLogin, "Password reset link sent! Check your email.")
	}
}

// LogoutHandler ends the session and returns to the home page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.SignOut(r.Context()); err != nil {
			log.Error().Err(err).Msg("sign-out failed")
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// FederatedStartHandler redirects the visitor to the upstream provider,
// carrying the navigation intent through the sign-in flow.
func (s *Server) FederatedStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent := sanitizeIntent(r.URL.Query().Get(redirectParam))

		authURL, err := s.session.FederatedAuthURL(r.Context(), intent)
		if err != nil {
			log.Warn().Err(err).Msg("federated sign-in unavailable")
			redirectWithError(w, r, loginPath(intent), "Sign-in with your provider is unavailable right now.")
			return
		}

		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// FederatedCallbackHandler finishes the federated sign-in and returns the
// visitor to the intent recorded when the flow started.
func (s *Server) FederatedCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		if errorParam := r.FormValue("error"); errorParam != "" {
			redirectWithError(w, r, RouteLogin, "Sign-in was cancelled or rejected.")
			return
		}

		_, intent, err := s.session.CompleteFederated(r.Context(), state, code)
		if err != nil {
			log.Warn().Err(err).Msg("federated sign-in failed")
			redirectWithError(w, r, RouteLogin, authErrorMessage(err))
			return
		}

		redirectSuccess(w, r, s.consumeIntent(intent))
	}
}

func loginPath(intent string) string {
	return authEntryPath(RouteLogin, intent)
}

func registerPath(intent string) string {
	return authEntryPath(RouteRegister, intent)
}

func authEntryPath(base, intent string) string {
	if intent == "" {
		return base
	}
	return base + "?" + redirectParam + "=" + url.QueryEscape(intent)
}

// authErrorMessage maps an identity failure onto a user-facing message.
func authErrorMessage(err error) string {
	authErr := identity.AsAuthError(err, identity.ReasonProviderRejected)
	switch authErr.Reason {
	case identity.ReasonBadCredential:
		return "Login failed. Check your email or password."
	case identity.ReasonDuplicateAccount:
		return "An account already exists for this email."
	case identity.ReasonUnknownAccount:
		return "No account found for this email."
	case identity.ReasonInvalidInput:
		return authErr.Message
	case identity.ReasonFlowCancelled:
		return "Sign-in was cancelled."
	case identity.ReasonUnreachable:
		return "The sign-in service is unreachable. Try again shortly."
	default:
		return "Something went wrong. Please try again."
	}
}
