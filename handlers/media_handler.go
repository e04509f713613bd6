package handlers

import (
	"errors"
	"net/http"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

type MediaHandler struct {
	mediaService services.MediaService
}

func NewMediaHandler(mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
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

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxMediaSizeBytes+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("form field 'file' is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	input := services.UploadMediaInput{
		Filename:    header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		Reader:      file,
	}

	item, err := h.mediaService.Upload(r.Context(), houseID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"media": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.mediaService.List(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"media": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	mediaID, err := getIDFromURL(r, "mediaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.mediaService.Delete(r.Context(), houseID, mediaID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
