package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/server"
	"github.com/perimetra/ztcore/pkg/trust"
	"github.com/perimetra/ztcore/pkg/verify"
)

// RegisterVerifyEndpoints registers the on-demand verification endpoint.
func RegisterVerifyEndpoints(s *server.Server) {
	s.Router.Handle(
		"/verify/{entity_type}/{entity_id}",
		s.Protect(handlePerformVerification(s.Verifier)),
	).Methods("POST")
}

func handlePerformVerification(verifier *verify.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		entityID := vars["entity_id"]

		entityType, err := model.EntityTypeString(vars["entity_type"])
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "Unknown entity type")
			return
		}

		result, err := verifier.Verify(r.Context(), entityID, entityType)
		if err != nil {
			if errors.Is(err, trust.ErrEntityNotFound) {
				respondWithError(w, http.StatusNotFound, "Entity not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to verify entity")
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}
