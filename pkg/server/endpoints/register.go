package endpoints

import (
	"github.com/perimetra/ztcore/pkg/obs"
	"github.com/perimetra/ztcore/pkg/server"
)

// RegisterAll registers all API endpoints on the server.
func RegisterAll(srv *server.Server) {
	srv.Router.Use(obs.Instrument)

	RegisterAccessEndpoints(srv)
	RegisterTrustEndpoints(srv)
	RegisterVerifyEndpoints(srv)
	RegisterSegmentsEndpoints(srv)
	RegisterPoliciesEndpoints(srv)
	RegisterDecisionsEndpoints(srv)
	RegisterStatusEndpoints(srv)

	// Prometheus scrape endpoint
	srv.Router.Handle("/metrics", obs.Handler()).Methods("GET")
}
