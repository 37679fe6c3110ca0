package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/perimetra/ztcore/pkg/engine"
	"github.com/perimetra/ztcore/pkg/identity"
	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/server"
	"github.com/perimetra/ztcore/pkg/server/middleware"
	"github.com/perimetra/ztcore/pkg/trust"
)

// RegisterAccessEndpoints registers the access evaluation endpoint.
func RegisterAccessEndpoints(s *server.Server) {
	limiter := middleware.NewRateLimiter(s.Config.RateLimit, s.Config.RateBurst)

	s.Router.Handle(
		"/access/evaluate",
		limiter.Middleware(s.Protect(handleEvaluateAccess(s.Coordinator))),
	).Methods("POST")
}

func handleEvaluateAccess(coordinator *engine.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.AccessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		// The verified session identity wins over whatever the body claims.
		if id, ok := identity.Get(r.Context()); ok {
			req.EntityID = id.EntityID
			req.EntityType = id.EntityType
			if len(req.Groups) == 0 {
				req.Groups = id.Groups
			}
		}

		if req.EntityID == "" || req.ResourceID == "" || req.Operation == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "entity_id, resource_id and operation are required")
			return
		}

		decision, err := coordinator.EvaluateAccess(r.Context(), req)
		if err != nil {
			if errors.Is(err, trust.ErrInvalidEntityType) {
				respondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to evaluate access")
			return
		}

		respondWithJSON(w, http.StatusOK, decision)
	}
}
