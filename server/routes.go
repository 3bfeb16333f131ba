package server

import "net/http"

func (s *Server) initRoutes() {
	// LOGIN / CONNECT
	s.RegisterRouteHandler("POST "+RouteAuthLogin, s.api(s.LoginHandler()))
	s.RegisterRouteHandler("POST "+RouteWalletConnect, s.api(s.WalletConnectHandler()))

	// SESSION
	s.RegisterRouteHandler("POST "+RouteAuthLogout, s.api(s.LogoutHandler()))
	s.RegisterRouteHandler("POST "+RouteAuthLogoutAll, s.api(s.LogoutAllHandler(), s.RequireSessionAuth()))
	s.RegisterRouteHandler("GET "+RouteAuthMe, s.api(s.MeHandler(), s.RequireSessionAuth()))
	s.RegisterRouteHandler("GET "+RouteSessionStats, s.api(s.SessionStatsHandler(), s.RequireSessionAuth()))

	// EMAIL VERIFICATION
	s.RegisterRouteHandler("GET "+RouteVerifyEmail, s.api(s.VerifyEmailHandler()))
	s.RegisterRouteHandler("POST "+RouteResendVerification, s.api(s.ResendVerificationHandler()))
}

// api wraps a handler in the standard API middleware chain plus any
// route-specific middleware.
func (s *Server) api(handler http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chain := s.APIMiddleware()
	chain = append(chain, mw...)
	return ChainMiddleware(handler, chain...)
}
