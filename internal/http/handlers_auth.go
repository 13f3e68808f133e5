package http

import (
	"net/http"

	"cashflow/internal/log"
	"cashflow/internal/services"
)

type credentialsInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordInput struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"cPassword"`
}

// writeSession sets the session cookie and echoes the token for clients
// that send it as a bearer header.
func (s *Server) writeSession(w http.ResponseWriter, sess services.Session, status int, message string) {
	s.setSessionCookie(w, sess)
	NewJSONResponse().
		Status(status).
		Message(message).
		Field("token", sess.Token).
		Field("expiresAt", sess.ExpiresAt).
		Write(w)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "sign_up")
		return
	}
	sess, err := s.svc.Auth.SignUp(r.Context(), sanitizeInput(in.Username), in.Email, in.Password)
	if err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "sign_up")
		return
	}
	s.writeSession(w, sess, http.StatusCreated, "user created successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, log.OpLogin)
		return
	}
	sess, err := s.svc.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.logger.InfoContext(r.Context(), "Login failed",
			log.FieldComponent, log.ComponentAuth,
			log.FieldClientIP, s.detector.ExtractClientIP(r))
		s.writeError(w, r, err, log.ComponentAuth, log.OpLogin)
		return
	}
	s.writeSession(w, sess, http.StatusOK, "logged in successfully")
}

func (s *Server) handleSendVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.SendVerifyOTP(r.Context(), userID(r)); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "send_verify_otp")
		return
	}
	NewJSONResponse().Message("verification OTP sent successfully").Write(w)
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in otpInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "verify_otp")
		return
	}
	if err := s.svc.Auth.VerifyAccount(r.Context(), userID(r), sanitizeInput(in.OTP)); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "verify_otp")
		return
	}
	NewJSONResponse().Message("Account is verified").Write(w)
}

// handleIsAuth only answers once the session middleware accepted the token.
func (s *Server) handleIsAuth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Write(w)
}

func (s *Server) handleSendResetOTP(w http.ResponseWriter, r *http.Request) {
	var in otpInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "send_reset_otp")
		return
	}
	if err := s.svc.Auth.SendResetOTP(r.Context(), in.Email); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "send_reset_otp")
		return
	}
	NewJSONResponse().Message("password reset OTP sent successfully").Write(w)
}

func (s *Server) handleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var in otpInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "verify_reset_otp")
		return
	}
	sess, err := s.svc.Auth.VerifyResetOTP(r.Context(), in.Email, sanitizeInput(in.OTP))
	if err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "verify_reset_otp")
		return
	}
	s.writeSession(w, sess, http.StatusOK, "OTP is verified")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetPasswordInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "reset_password")
		return
	}
	if err := s.svc.Auth.ResetPassword(r.Context(), userID(r), in.NewPassword, in.ConfirmPassword); err != nil {
		s.writeError(w, r, err, log.ComponentAuth, "reset_password")
		return
	}
	NewJSONResponse().Message("password reset successfully").Write(w)
}
