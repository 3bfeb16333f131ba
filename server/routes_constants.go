package server

const (
	RouteAuthLogin          = "/auth/login"
	RouteAuthLogout         = "/auth/logout"
	RouteAuthLogoutAll      = "/auth/logout-all"
	RouteWalletConnect      = "/auth/wallet/connect"
	RouteAuthMe             = "/auth/me"
	RouteVerifyEmail        = "/auth/verify-email"
	RouteResendVerification = "/auth/resend-verification"
	RouteSessionStats       = "/auth/stats"
)
