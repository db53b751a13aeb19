package api

import (
	"net/http"
	"strconv"
	"time"

	"smartpark/internal/entities"
	"smartpark/internal/service"
)

type RecommendationHandler struct {
	Service *service.RecommendService
}

func NewRecommendationHandler(svc *service.RecommendService) *RecommendationHandler {
	return &RecommendationHandler{Service: svc}
}

// GetRecommendation handles GET /api/zones/{zoneID}/recommendation. user_id
// is required; reservation_type_id, start_time and end_time (RFC 3339)
// narrow the search to spots free in that window.
func (h *RecommendationHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	zoneID, err := pathID(r, "zoneID")
	if err != nil {
		http.Error(w, "Invalid zone ID", http.StatusBadRequest)
		return
	}
	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	query := entities.RecommendationQuery{
		UserID:        userID,
		ParkingZoneID: zoneID,
	}
	if v := r.URL.Query().Get("reservation_type_id"); v != "" {
		typeID, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid reservation_type_id", http.StatusBadRequest)
			return
		}
		query.ReservationTypeID = typeID
	}
	query.StartTime, err = queryTime(r, "start_time")
	if err != nil {
		http.Error(w, "Invalid start_time", http.StatusBadRequest)
		return
	}
	query.EndTime, err = queryTime(r, "end_time")
	if err != nil {
		http.Error(w, "Invalid end_time", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.Recommend(query)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no parking spot available"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
