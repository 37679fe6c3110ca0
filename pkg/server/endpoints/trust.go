package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/perimetra/ztcore/pkg/server"
	"github.com/perimetra/ztcore/pkg/trust"
)

// RegisterTrustEndpoints registers the trust score lookup endpoint.
func RegisterTrustEndpoints(s *server.Server) {
	s.Router.Handle(
		"/trust/{entity_id}",
		s.Protect(handleGetTrustScore(s.Trust)),
	).Methods("GET")
}

func handleGetTrustScore(trustEngine *trust.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		entityID := vars["entity_id"]

		ts, err := trustEngine.Get(entityID)
		if err != nil {
			if errors.Is(err, trust.ErrEntityNotFound) {
				respondWithError(w, http.StatusNotFound, "Entity not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to look up trust score")
			return
		}

		respondWithJSON(w, http.StatusOK, ts)
	}
}
