package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

// InviteMailer sends the invitation email; nil disables outbound mail.
type InviteMailer interface {
	SendHouseInviteEmail(userEmail, houseName, inviteLink string) error
}

type InviteHandler struct {
	inviteService services.InviteService
	houseService  services.HouseService
	mailer        InviteMailer
	publicURL     string
	logger        *slog.Logger
}

func NewInviteHandler(
	inviteService services.InviteService,
	houseService services.HouseService,
	mailer InviteMailer,
	publicURL string,
	logger *slog.Logger,
) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		houseService:  houseService,
		mailer:        mailer,
		publicURL:     publicURL,
		logger:        logger,
	}
}

func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
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

	var input struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	invitation, err := h.inviteService.CreateInvite(r.Context(), houseID, input.Email, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if h.mailer != nil {
		houseName := "a shared house"
		if house, houseErr := h.houseService.GetHouse(r.Context(), houseID, currentUserID); houseErr == nil {
			houseName = house.Name
		}
		inviteLink := fmt.Sprintf("%s/signup?house=%d", h.publicURL, houseID)
		if mailErr := h.mailer.SendHouseInviteEmail(invitation.InvitedEmail, houseName, inviteLink); mailErr != nil {
			h.logger.Error("failed to send invite email",
				slog.String("email", invitation.InvitedEmail), slog.Any("error", mailErr))
		}
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"invitation": invitation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) ListHouseInvites(w http.ResponseWriter, r *http.Request) {
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

	invitations, err := h.inviteService.ListHouseInvites(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invitations": invitations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	inviteID, err := getIDFromURL(r, "inviteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.inviteService.RevokeInvite(r.Context(), houseID, inviteID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
