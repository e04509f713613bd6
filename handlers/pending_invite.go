package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// pendingInviteCookie carries invite context across the sign-up redirect
// boundary, where query parameters can be lost (email link opened in a new
// tab or on another device). It is a short-lived, single-reader message: the
// sign-up flow writes it, the dashboard consumes it delete-then-act.
const pendingInviteCookie = "pending_house_invite"

const pendingInviteMaxAge = 7 * 24 * 60 * 60 // seconds

type pendingInvite struct {
	HouseID int    `json:"house_id"`
	Email   string `json:"email"`
}

func setPendingInvite(w http.ResponseWriter, intent pendingInvite) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     pendingInviteCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   pendingInviteMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// readPendingInvite returns the stored intent, if any. An absent or
// malformed cookie is the common case and reads as "no intent".
func readPendingInvite(r *http.Request) (pendingInvite, bool) {
	cookie, err := r.Cookie(pendingInviteCookie)
	if err != nil || cookie.Value == "" {
		return pendingInvite{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return pendingInvite{}, false
	}
	var intent pendingInvite
	if err := json.Unmarshal(payload, &intent); err != nil {
		return pendingInvite{}, false
	}
	if intent.HouseID <= 0 || intent.Email == "" {
		return pendingInvite{}, false
	}
	return intent, true
}

func clearPendingInvite(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     pendingInviteCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
