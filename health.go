package fleettracking

import (
	"net/http"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
)

type healthResponse struct {
	Status      string `json:"status"`
	Vehicles    int    `json:"vehicles"`
	Stops       int    `json:"stops"`
	Positioned  int    `json:"positioned"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cat := s.tracker.Catalog()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Vehicles:    len(cat.OfKind(catalog.KindVehicle)),
		Stops:       len(cat.OfKind(catalog.KindStop)),
		Positioned:  len(s.tracker.Snapshot()),
		Subscribers: s.tracker.Publisher().SubscriberCount(),
	})
}
