package fleettracking

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

// assetView joins a position record with its catalog entry for API output.
type assetView struct {
	ID          string         `json:"id"`
	Kind        catalog.Kind   `json:"kind"`
	DisplayName string         `json:"displayName"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Status      catalog.Status `json:"status,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorPayload{Error: msg})
}

func (s *Server) viewOf(id string, rec tracking.PositionRecord) assetView {
	a, _ := s.tracker.Catalog().Get(id)
	return assetView{
		ID:          id,
		Kind:        a.Kind,
		DisplayName: a.DisplayName,
		Latitude:    rec.Position.Latitude,
		Longitude:   rec.Position.Longitude,
		UpdatedAt:   rec.UpdatedAt,
		Status:      rec.Status,
	}
}

// viewsOf renders a snapshot in roster order so output is stable across
// requests.
func (s *Server) viewsOf(snap map[string]tracking.PositionRecord) []assetView {
	out := make([]assetView, 0, len(snap))
	for _, a := range s.tracker.Catalog().All() {
		if rec, ok := snap[a.ID]; ok {
			out = append(out, s.viewOf(a.ID, rec))
		}
	}
	return out
}
