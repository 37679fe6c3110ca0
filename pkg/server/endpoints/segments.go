package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/perimetra/ztcore/pkg/audit"
	"github.com/perimetra/ztcore/pkg/identity"
	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/segment"
	"github.com/perimetra/ztcore/pkg/server"
)

// RegisterSegmentsEndpoints registers segment administration endpoints.
func RegisterSegmentsEndpoints(s *server.Server) {
	s.Router.Handle("/segments", s.Protect(handleCreateSegment(s))).Methods("POST")
	s.Router.Handle("/segments", s.Protect(handleListSegments(s.Segments))).Methods("GET")
	s.Router.Handle("/segments/{segment_id}", s.Protect(handleGetSegment(s.Segments))).Methods("GET")
}

func handleCreateSegment(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var seg model.MicroSegment
		if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		created, err := s.Segments.Create(r.Context(), seg)
		if err != nil {
			if errors.Is(err, segment.ErrInvalidSegmentConfig) {
				respondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to create segment")
			return
		}

		if s.Emitter != nil {
			actor := ""
			if id, ok := identity.Get(r.Context()); ok {
				actor = id.EntityID
			}
			s.Emitter.Emit(audit.SegmentEvent{Segment: created, Actor: actor})
		}

		respondWithJSON(w, http.StatusCreated, created)
	}
}

func handleListSegments(manager *segment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"segments": manager.List(),
		})
	}
}

func handleGetSegment(manager *segment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		seg, err := manager.Get(vars["segment_id"])
		if err != nil {
			respondWithError(w, http.StatusNotFound, "Segment not found")
			return
		}

		respondWithJSON(w, http.StatusOK, seg)
	}
}
