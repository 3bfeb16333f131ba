package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dright-spec/RightNFT123-sub006/sessions"
)

const (
	// sessionCookieName is the cookie carrying the opaque session token.
	sessionCookieName = "session_token"
)

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetSessionCookie(w, r, "", -1)
}

// requestContext extracts the provenance metadata recorded on new sessions.
func requestContext(r *http.Request) sessions.RequestContext {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop is the client
		ip = strings.TrimSpace(strings.SplitN(ip, ",", 2)[0])
	} else {
		ip = r.RemoteAddr
		if idx := strings.LastIndex(ip, ":"); idx > 0 {
			ip = ip[:idx]
		}
	}
	return sessions.RequestContext{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
