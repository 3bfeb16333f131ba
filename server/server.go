package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dright-spec/RightNFT123-sub006/credentials"
	"github.com/dright-spec/RightNFT123-sub006/internal/config"
	"github.com/dright-spec/RightNFT123-sub006/sessions"
	"github.com/dright-spec/RightNFT123-sub006/wallet"
)

// Server is the auth gateway: it accepts login and wallet-connect requests,
// resolves them to an identity through the credential service or wallet
// resolver, and mints sessions in the session store. The store is injected
// and explicitly owned by the caller, never a package-level singleton.
type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config

	creds    *credentials.Service
	store    *sessions.Store
	resolver *wallet.Resolver
}

func New(cfg config.Config, creds *credentials.Service, store *sessions.Store, resolver *wallet.Resolver) (*Server, error) {
	if creds == nil {
		return nil, fmt.Errorf("[Server New] credential service is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[Server New] session store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("[Server New] wallet resolver is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		creds:    creds,
		store:    store,
		resolver: resolver,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
