package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/perimetra/ztcore/pkg/audit"
	"github.com/perimetra/ztcore/pkg/config"
	"github.com/perimetra/ztcore/pkg/engine"
	"github.com/perimetra/ztcore/pkg/policy"
	"github.com/perimetra/ztcore/pkg/segment"
	"github.com/perimetra/ztcore/pkg/server/middleware"
	"github.com/perimetra/ztcore/pkg/trust"
	"github.com/perimetra/ztcore/pkg/verify"
)

type Server struct {
	Coordinator *engine.Coordinator
	Trust       *trust.Engine
	Verifier    *verify.Verifier
	Segments    *segment.Manager
	Policies    *policy.Store
	Decisions   *engine.DecisionStore
	Config      *config.Config
	Session     *middleware.SessionAuthenticator
	Emitter     *audit.Emitter
	Router      *mux.Router
	srv         *http.Server
}

func NewServer(
	coordinator *engine.Coordinator,
	trustEngine *trust.Engine,
	verifier *verify.Verifier,
	segments *segment.Manager,
	policies *policy.Store,
	decisions *engine.DecisionStore,
	cfg *config.Config,
	session *middleware.SessionAuthenticator,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Coordinator: coordinator,
		Trust:       trustEngine,
		Verifier:    verifier,
		Segments:    segments,
		Policies:    policies,
		Decisions:   decisions,
		Config:      cfg,
		Session:     session,
		Router:      router,
		srv:         srv,
	}
}

// Protect wraps a handler with session verification when a session key is
// configured. Without a key the handler is served as-is.
func (s *Server) Protect(next http.Handler) http.Handler {
	if s.Session == nil {
		return next
	}
	return s.Session.Middleware(next)
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
