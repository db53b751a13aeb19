package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"smartpark/internal/entities"
	"smartpark/internal/service"
)

type AdminHandler struct {
	Reservations *service.ReservationService
	Spots        *service.SpotService
}

func NewAdminHandler(reservations *service.ReservationService, spots *service.SpotService) *AdminHandler {
	return &AdminHandler{Reservations: reservations, Spots: spots}
}

// ListReservations handles GET /admin/reservations with optional filters:
// car_id, parking_spot_id, reservation_type_id, user_id, status,
// start_from, start_to (RFC 3339), limit, offset, include_total.
func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	search := entities.ReservationSearch{
		CarID:             queryInt(r, "car_id"),
		ParkingSpotID:     queryInt(r, "parking_spot_id"),
		ReservationTypeID: queryInt(r, "reservation_type_id"),
		UserID:            queryInt(r, "user_id"),
		Status:            r.URL.Query().Get("status"),
		Limit:             queryInt(r, "limit"),
		Offset:            queryInt(r, "offset"),
		IncludeTotalCount: r.URL.Query().Get("include_total") == "true",
	}
	var err error
	search.StartFrom, err = queryTime(r, "start_from")
	if err != nil {
		http.Error(w, "Invalid start_from", http.StatusBadRequest)
		return
	}
	search.StartTo, err = queryTime(r, "start_to")
	if err != nil {
		http.Error(w, "Invalid start_to", http.StatusBadRequest)
		return
	}
	if search.Limit <= 0 || search.Limit > 100 {
		search.Limit = 50
	}

	list, err := h.Reservations.List(search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) SetSpotActive(w http.ResponseWriter, r *http.Request) {
	spotID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.Spots.SetActive(spotID, *req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"parking_spot_id": spotID, "active": *req.Active})
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
