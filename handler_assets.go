package fleettracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/theoremus-urban-solutions/fleet-tracking/catalog"
	"github.com/theoremus-urban-solutions/fleet-tracking/geo"
	"github.com/theoremus-urban-solutions/fleet-tracking/tracking"
)

type positionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type statusRequest struct {
	Status catalog.Status `json:"status"`
}

type nearestResponse struct {
	Stop       assetView `json:"stop"`
	DistanceKM float64   `json:"distanceKm"`
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewsOf(s.tracker.Snapshot()))
}

func (s *Server) handleReadPosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.tracker.Catalog().Has(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown asset %q", id))
		return
	}
	rec, ok := s.tracker.ReadRecord(id)
	if !ok {
		// known asset, never positioned
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(id, rec))
}

// handleWritePosition is the operator write path. Rejections carry the
// specific reason so the operator can correct the input.
func (s *Server) handleWritePosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	pos := geo.Position{Latitude: req.Latitude, Longitude: req.Longitude}
	stored, err := s.tracker.Write(id, pos)
	switch {
	case errors.Is(err, tracking.ErrUnknownAsset):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, tracking.ErrOutOfBounds):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// stored may differ from the request when a newer write already won
	writeJSON(w, http.StatusOK, positionRequest{Latitude: stored.Latitude, Longitude: stored.Longitude})
}

func (s *Server) handleWriteStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	switch req.Status {
	case catalog.StatusOnTime, catalog.StatusDelayed, catalog.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", req.Status))
		return
	}
	if err := s.tracker.SetStatus(id, req.Status); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNearestStop(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}
	stop, distKM, ok := s.tracker.NearestStop(geo.Position{Latitude: lat, Longitude: lon})
	if !ok {
		writeError(w, http.StatusNotFound, "no positioned stops")
		return
	}
	rec, _ := s.tracker.ReadRecord(stop.ID)
	writeJSON(w, http.StatusOK, nearestResponse{Stop: s.viewOf(stop.ID, rec), DistanceKM: distKM})
}
