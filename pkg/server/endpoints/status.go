package endpoints

import (
	"net/http"
	"os"

	"github.com/perimetra/ztcore/pkg/server"
)

// HealthResponse represents the response from /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Counts  map[string]int    `json:"counts"`
	Config  map[string]string `json:"config"`
}

// RegisterStatusEndpoints registers the health endpoint. Health is public:
// probes have no session.
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("ZTCORE_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: version,
			Counts: map[string]int{
				"entities":  s.Trust.Store().Len(),
				"policies":  s.Policies.Len(),
				"segments":  s.Segments.Len(),
				"decisions": s.Decisions.Len(),
			},
			Config: map[string]string{
				"trust_ttl":             s.Config.TrustTTLDuration().String(),
				"verification_interval": s.Config.VerificationIntervalDuration().String(),
				"decision_retention":    s.Config.DecisionRetentionDuration().String(),
			},
		})
	}
}
