package handlers

import (
	"net/http"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

type StayHandler struct {
	stayService services.StayService
}

func NewStayHandler(stayService services.StayService) *StayHandler {
	return &StayHandler{stayService: stayService}
}

func (h *StayHandler) BookStay(w http.ResponseWriter, r *http.Request) {
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

	var input services.BookStayInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stay, err := h.stayService.BookStay(r.Context(), houseID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stay": stay}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StayHandler) ListStays(w http.ResponseWriter, r *http.Request) {
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

	stays, err := h.stayService.ListStays(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stays": stays}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StayHandler) CancelStay(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stayID, err := getIDFromURL(r, "stayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.stayService.CancelStay(r.Context(), houseID, stayID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
