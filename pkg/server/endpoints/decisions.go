package endpoints

import (
	"net/http"
	"strconv"

	"github.com/perimetra/ztcore/pkg/engine"
	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/server"
)

// RegisterDecisionsEndpoints registers the decision history endpoint.
func RegisterDecisionsEndpoints(s *server.Server) {
	s.Router.Handle("/decisions", s.Protect(handleListDecisions(s.Decisions))).Methods("GET")
}

func handleListDecisions(store *engine.DecisionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var decisions []model.AccessDecision
		if entityID := r.URL.Query().Get("entity_id"); entityID != "" {
			decisions = store.ListEntity(entityID)
		} else {
			decisions = store.List()
		}

		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 0 {
				respondWithError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			if limit < len(decisions) {
				// Newest records win when truncating.
				decisions = decisions[len(decisions)-limit:]
			}
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"decisions": decisions,
		})
	}
}
