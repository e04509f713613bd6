package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/services"
)

const defaultNextPath = "/dashboard"

// AuthMailer is the slice of the email service the auth handler needs; nil
// disables outbound mail (useful locally and in tests).
type AuthMailer interface {
	SendConfirmationEmail(userEmail, tokenHash string, houseID int) error
	SendMagicLinkEmail(userEmail, code string) error
}

type AuthHandler struct {
	authService   services.AuthService
	inviteService services.InviteService
	mailer        AuthMailer
	jwtSecret     []byte
	logger        *slog.Logger
}

func NewAuthHandler(
	authService services.AuthService,
	inviteService services.InviteService,
	mailer AuthMailer,
	jwtSecret string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		inviteService: inviteService,
		mailer:        mailer,
		jwtSecret:     []byte(jwtSecret),
		logger:        logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		services.RegisterInput
		HouseID int `json:"house_id"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		badRequestResponse(w, r, errors.New("first name, email, and password are required"))
		return
	}

	// An invite link lands here with ?house=; body wins when both are set.
	houseID := input.HouseID
	if houseID == 0 {
		if v := r.URL.Query().Get("house"); v != "" {
			houseID, _ = strconv.Atoi(v)
		}
	}

	result, err := h.authService.Register(r.Context(), input.RegisterInput)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Stash the invite intent so the dashboard can replay it even when the
	// confirmation link loses the house parameter.
	if houseID > 0 {
		setPendingInvite(w, pendingInvite{HouseID: houseID, Email: result.User.Email})
	}

	if h.mailer != nil {
		if mailErr := h.mailer.SendConfirmationEmail(result.User.Email, result.ConfirmTokenHash, houseID); mailErr != nil {
			h.logger.Error("failed to send confirmation email",
				slog.String("email", result.User.Email), slog.Any("error", mailErr))
		}
	}

	response := jsonResponse{"user": result.User}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tokenString, err := h.issueSession(w, user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{"token": tokenString, "user": user}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MagicLink emails a passwordless sign-in link. The response is the same
// whether or not an account exists, so the endpoint cannot be used to
// enumerate registered addresses.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.authService.RequestMagicLink(r.Context(), input.Email)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if result != nil && h.mailer != nil {
		if mailErr := h.mailer.SendMagicLinkEmail(result.User.Email, result.AuthCode); mailErr != nil {
			h.logger.Error("failed to send magic link email",
				slog.String("email", result.User.Email), slog.Any("error", mailErr))
		}
	}

	response := jsonResponse{"message": "if an account exists for that address, a sign-in link is on its way"}
	if err := writeJSON(w, http.StatusAccepted, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm completes whichever authentication handshake the incoming
// redirect represents, reconciles a pending invitation when the link
// carries a house, and redirects. Ordered, first success wins:
//
//  1. authorization code exchange,
//  2. one-time token-hash verification,
//  3. an already-established session.
//
// Invite reconciliation is best-effort: failures are logged, never
// surfaced, and never block the redirect.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	tokenHash := query.Get("token_hash")
	tokenType := query.Get("type")
	houseID, _ := strconv.Atoi(query.Get("house"))

	next := sanitizeNextPath(query.Get("next"))

	var user *models.User
	var err error

	switch {
	case code != "":
		user, err = h.authService.ExchangeAuthCode(r.Context(), code)
	case tokenHash != "" && tokenType != "":
		user, err = h.authService.VerifyToken(r.Context(), tokenHash, tokenType)
	default:
		user = h.sessionUser(r)
	}

	if err != nil {
		h.redirectError(w, r, err.Error())
		return
	}
	if user == nil {
		h.redirectError(w, r, "unable to verify authentication request")
		return
	}

	if _, err := h.issueSession(w, user); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if houseID > 0 && user.Email != "" {
		if _, recErr := h.inviteService.Reconcile(r.Context(), houseID, user.Email, user.ID); recErr != nil {
			h.logger.Warn("invite reconciliation failed",
				slog.Int("house_id", houseID),
				slog.Int("user_id", user.ID),
				slog.Any("error", recErr))
		}
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

// sanitizeNextPath keeps redirect targets inside this origin. Only plain
// relative paths pass; anything a browser could read as scheme-relative
// ("//host" or "/\host") falls back to the dashboard.
func sanitizeNextPath(next string) string {
	if !strings.HasPrefix(next, "/") {
		return defaultNextPath
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return defaultNextPath
	}
	return next
}

// AuthError is the landing endpoint for failed confirmation redirects.
func (h *AuthHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("error")
	if message == "" {
		message = "authentication failed"
	}
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/auth/error?error="+url.QueryEscape(message), http.StatusSeeOther)
}

// sessionUser resolves the user behind an already-established session, for
// providers that complete authentication before this handler runs. Returns
// nil when no valid session is present.
func (h *AuthHandler) sessionUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := middleware.ParseSessionToken(cookie.Value, h.jwtSecret)
	if err != nil {
		return nil
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return nil
	}
	user, err := h.authService.CurrentUser(r.Context(), int(userIDFloat))
	if err != nil {
		return nil
	}
	return user
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return tokenString, nil
}
