package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/services"
)

func signedSessionToken(t *testing.T, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func authenticated(h http.HandlerFunc) http.Handler {
	return middleware.Authenticate([]byte(testJWTSecret))(h)
}

func emptyOverview() *fakeDashboardService {
	return &fakeDashboardService{
		OverviewFn: func(ctx context.Context, userID int) (*services.DashboardOverview, error) {
			return &services.DashboardOverview{}, nil
		},
	}
}

func TestOverviewReplaysPendingInviteOnce(t *testing.T) {
	var reconciled int
	auth := &fakeAuthService{
		CurrentUserFn: func(ctx context.Context, userID int) (*models.User, error) {
			return &models.User{ID: userID, Email: "anna@example.com"}, nil
		},
	}
	invites := &fakeInviteService{
		ReconcileFn: func(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error) {
			reconciled++
			assert.Equal(t, 3, houseID)
			assert.Equal(t, 42, userID)
			return &models.Invitation{ID: 7, HouseID: houseID}, nil
		},
	}
	h := NewDashboardHandler(emptyOverview(), auth, invites, testLogger())

	seed := httptest.NewRecorder()
	setPendingInvite(seed, pendingInvite{HouseID: 3, Email: "Anna@Example.com"})
	stored := seed.Result().Cookies()[0]

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(stored)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: signedSessionToken(t, 42)})
	w := httptest.NewRecorder()
	authenticated(h.Overview).ServeHTTP(w, r)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, reconciled)

	// The cookie is consumed regardless of the outcome.
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == pendingInviteCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestOverviewDiscardsMismatchedPendingInvite(t *testing.T) {
	auth := &fakeAuthService{
		CurrentUserFn: func(ctx context.Context, userID int) (*models.User, error) {
			return &models.User{ID: userID, Email: "other@example.com"}, nil
		},
	}
	invites := &fakeInviteService{
		ReconcileFn: func(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error) {
			t.Fatal("reconcile should not run for a mismatched email")
			return nil, nil
		},
	}
	h := NewDashboardHandler(emptyOverview(), auth, invites, testLogger())

	seed := httptest.NewRecorder()
	setPendingInvite(seed, pendingInvite{HouseID: 3, Email: "anna@example.com"})

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(seed.Result().Cookies()[0])
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: signedSessionToken(t, 42)})
	w := httptest.NewRecorder()
	authenticated(h.Overview).ServeHTTP(w, r)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == pendingInviteCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestOverviewWithoutPendingInvite(t *testing.T) {
	h := NewDashboardHandler(emptyOverview(), &fakeAuthService{}, noReconcile(t), testLogger())

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: signedSessionToken(t, 42)})
	w := httptest.NewRecorder()
	authenticated(h.Overview).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestOverviewRendersWhenReconcileFails(t *testing.T) {
	auth := &fakeAuthService{
		CurrentUserFn: func(ctx context.Context, userID int) (*models.User, error) {
			return &models.User{ID: userID, Email: "anna@example.com"}, nil
		},
	}
	invites := &fakeInviteService{
		ReconcileFn: func(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error) {
			return nil, assert.AnError
		},
	}
	h := NewDashboardHandler(emptyOverview(), auth, invites, testLogger())

	seed := httptest.NewRecorder()
	setPendingInvite(seed, pendingInvite{HouseID: 3, Email: "anna@example.com"})

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(seed.Result().Cookies()[0])
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: signedSessionToken(t, 42)})
	w := httptest.NewRecorder()
	authenticated(h.Overview).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestReadPendingInviteMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: pendingInviteCookie, Value: "not-base64!!"})
	_, ok := readPendingInvite(r)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	_, ok = readPendingInvite(r)
	assert.False(t, ok)
}
