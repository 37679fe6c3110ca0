package endpoints

import (
	"net/http"

	"github.com/perimetra/ztcore/pkg/policy"
	"github.com/perimetra/ztcore/pkg/server"
)

// RegisterPoliciesEndpoints registers the policy listing endpoint.
func RegisterPoliciesEndpoints(s *server.Server) {
	s.Router.Handle("/policies", s.Protect(handleListPolicies(s.Policies))).Methods("GET")
}

func handleListPolicies(store *policy.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"policies": store.List(),
		})
	}
}
