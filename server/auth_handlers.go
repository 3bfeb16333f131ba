package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/dright-spec/RightNFT123-sub006/internal/errors"
	"github.com/dright-spec/RightNFT123-sub006/users"
	"github.com/dright-spec/RightNFT123-sub006/wallet"
)

type loginRequest struct {
	Identifier string `json:"identifier"` // email or username
	Password   string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// LoginHandler authenticates a password account and mints a session. Both
// unknown identifiers and wrong passwords produce the same generic error.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		user, err := s.creds.LoginWithPassword(req.Identifier, req.Password)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			log.Err(err).Msg("login failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		s.mintSession(w, r, user)
	}
}

// WalletConnectHandler accepts a verified wallet connection tuple and mints
// a session for the linked (or freshly provisioned) account.
func (s *Server) WalletConnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var conn wallet.Connection
		if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if conn.WalletAddress == "" {
			writeError(w, http.StatusBadRequest, "wallet_address is required")
			return
		}

		user, err := s.resolver.Resolve(conn)
		if err != nil {
			log.Err(err).Msg("wallet connect failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		s.mintSession(w, r, user)
	}
}

// mintSession creates a session for an authenticated user and hands the
// token back as both a cookie and a JSON field, so browser and API clients
// can each pick their transport.
func (s *Server) mintSession(w http.ResponseWriter, r *http.Request, user *users.User) {
	token, err := s.store.CreateSession(user.ID, user.WalletAddress, user.HederaAccountID, user.WalletType, requestContext(r))
	if err != nil {
		log.Err(err).Int64("user_id", user.ID).Msg("session creation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.SetSessionCookie(w, r, token, int(s.config.GetSessionMaxDuration().Seconds()))
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// LogoutHandler destroys the presented session. Logging out an already-dead
// token is not an error.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessionTokenFromRequest(r); token != "" {
			s.store.DestroySession(token)
		}
		s.ClearSessionCookie(w, r)
		writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
	}
}

// LogoutAllHandler removes every session belonging to the authenticated user.
func (s *Server) LogoutAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		removed := s.store.DestroyUserSessions(user.ID)
		s.ClearSessionCookie(w, r)
		writeJSON(w, http.StatusOK, map[string]int{"sessions_removed": removed})
	}
}

// MeHandler returns the acting user resolved from the session token.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFromContext(r.Context()))
	}
}

// VerifyEmailHandler consumes an email verification token.
func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		user, err := s.creds.VerifyEmailToken(token)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, user)
		case errors.Is(err, apperrors.ErrTokenExpired):
			writeError(w, http.StatusGone, "verification token expired, please request a new verification email")
		case errors.Is(err, apperrors.ErrTokenInvalid):
			writeError(w, http.StatusBadRequest, "verification token invalid, please request a new verification email")
		default:
			log.Err(err).Msg("email verification failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// ResendVerificationHandler issues and dispatches a fresh verification token.
func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}

		sent := s.creds.ResendEmailVerification(req.Email)
		writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
	}
}

// SessionStatsHandler exposes read-only store introspection.
func (s *Server) SessionStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.store.Stats())
	}
}
