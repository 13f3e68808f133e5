package http

import (
	"net/http"

	"cashflow/internal/log"
)

type usernameInput struct {
	Username string `json:"username"`
}

type passwordChangeInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Users.Profile(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, log.ComponentAuth, log.OpRead)
		return
	}
	NewJSONResponse().Field("userData", profile).Write(w)
}

func (s *Server) handleUpdateUsername(w http.ResponseWriter, r *http.Request) {
	var in usernameInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "update_username")
		return
	}
	username, err := s.svc.Users.UpdateUsername(r.Context(), userID(r), sanitizeInput(in.Username))
	if err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "update_username")
		return
	}
	NewJSONResponse().
		Message("username updated successfully").
		Field("username", username).
		Write(w)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordChangeInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "update_password")
		return
	}
	err := s.svc.Users.UpdatePassword(r.Context(), userID(r), in.CurrentPassword, in.NewPassword, in.ConfirmPassword)
	if err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "update_password")
		return
	}
	NewJSONResponse().Message("password updated successfully").Write(w)
}

// handleLogout revokes the current token. The cookie is cleared even when
// revocation fails so the browser forgets the session either way.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	s.clearSessionCookie(w)
	if err := s.svc.Auth.Logout(r.Context(), claims); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "logout")
		return
	}
	NewJSONResponse().Message("logged out successfully").Write(w)
}
