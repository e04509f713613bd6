package handlers

import (
	"net/http"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

type HouseHandler struct {
	houseService services.HouseService
}

func NewHouseHandler(houseService services.HouseService) *HouseHandler {
	return &HouseHandler{houseService: houseService}
}

func (h *HouseHandler) CreateHouse(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateHouseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	house, err := h.houseService.CreateHouse(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"house": house}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HouseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	houses, err := h.houseService.ListMine(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"houses": houses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HouseHandler) GetHouse(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	house, err := h.houseService.GetHouse(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"house": house}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HouseHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	members, err := h.houseService.ListMembers(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
