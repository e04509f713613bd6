package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	authService      services.AuthService
	inviteService    services.InviteService
	logger           *slog.Logger
}

func NewDashboardHandler(
	dashboardService services.DashboardService,
	authService services.AuthService,
	inviteService services.InviteService,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		authService:      authService,
		inviteService:    inviteService,
		logger:           logger,
	}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	h.recoverPendingInvite(w, r, currentUserID)

	overview, err := h.dashboardService.Overview(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": overview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// recoverPendingInvite replays a stored invite intent once a session
// exists. The cookie is consumed delete-then-act so a replay happens at
// most once; a stored email that doesn't match the signed-in account is
// discarded without touching the invitation. Reconciliation failures are
// logged and swallowed so the dashboard always renders.
func (h *DashboardHandler) recoverPendingInvite(w http.ResponseWriter, r *http.Request, currentUserID int) {
	intent, ok := readPendingInvite(r)
	if !ok {
		return
	}
	clearPendingInvite(w)

	user, err := h.authService.CurrentUser(r.Context(), currentUserID)
	if err != nil {
		h.logger.Warn("pending invite recovery: user lookup failed",
			slog.Int("user_id", currentUserID), slog.Any("error", err))
		return
	}

	if services.NormalizeEmail(user.Email) != services.NormalizeEmail(intent.Email) {
		// A different account is signed in now; the intent is stale.
		return
	}

	if _, err := h.inviteService.Reconcile(r.Context(), intent.HouseID, user.Email, user.ID); err != nil {
		h.logger.Warn("pending invite recovery failed",
			slog.Int("house_id", intent.HouseID),
			slog.Int("user_id", user.ID),
			slog.Any("error", err))
	}
}
