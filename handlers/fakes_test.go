package handlers

import (
	"context"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/services"
)

type fakeAuthService struct {
	RegisterFn         func(ctx context.Context, input services.RegisterInput) (*services.RegisterResult, error)
	LoginFn            func(ctx context.Context, input services.LoginInput) (*models.User, error)
	ExchangeAuthCodeFn func(ctx context.Context, code string) (*models.User, error)
	VerifyTokenFn      func(ctx context.Context, tokenHash, tokenType string) (*models.User, error)
	CurrentUserFn      func(ctx context.Context, userID int) (*models.User, error)
	RequestMagicLinkFn func(ctx context.Context, email string) (*services.MagicLinkResult, error)
	UpdateProfileFn    func(ctx context.Context, userID int, input services.UpdateProfileInput) (*models.User, error)
}

func (f *fakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.RegisterResult, error) {
	return f.RegisterFn(ctx, input)
}

func (f *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	return f.LoginFn(ctx, input)
}

func (f *fakeAuthService) ExchangeAuthCode(ctx context.Context, code string) (*models.User, error) {
	return f.ExchangeAuthCodeFn(ctx, code)
}

func (f *fakeAuthService) VerifyToken(ctx context.Context, tokenHash, tokenType string) (*models.User, error) {
	return f.VerifyTokenFn(ctx, tokenHash, tokenType)
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	return f.CurrentUserFn(ctx, userID)
}

func (f *fakeAuthService) RequestMagicLink(ctx context.Context, email string) (*services.MagicLinkResult, error) {
	return f.RequestMagicLinkFn(ctx, email)
}

func (f *fakeAuthService) UpdateProfile(ctx context.Context, userID int, input services.UpdateProfileInput) (*models.User, error) {
	return f.UpdateProfileFn(ctx, userID, input)
}

type fakeInviteService struct {
	CreateInviteFn     func(ctx context.Context, houseID int, email string, currentUserID int) (*models.Invitation, error)
	ReconcileFn        func(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error)
	ListHouseInvitesFn func(ctx context.Context, houseID, currentUserID int) ([]*models.Invitation, error)
	RevokeInviteFn     func(ctx context.Context, houseID, inviteID, currentUserID int) error
}

func (f *fakeInviteService) CreateInvite(ctx context.Context, houseID int, email string, currentUserID int) (*models.Invitation, error) {
	return f.CreateInviteFn(ctx, houseID, email, currentUserID)
}

func (f *fakeInviteService) Reconcile(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error) {
	return f.ReconcileFn(ctx, houseID, email, userID)
}

func (f *fakeInviteService) ListHouseInvites(ctx context.Context, houseID, currentUserID int) ([]*models.Invitation, error) {
	return f.ListHouseInvitesFn(ctx, houseID, currentUserID)
}

func (f *fakeInviteService) RevokeInvite(ctx context.Context, houseID, inviteID, currentUserID int) error {
	return f.RevokeInviteFn(ctx, houseID, inviteID, currentUserID)
}

type fakeDashboardService struct {
	OverviewFn func(ctx context.Context, userID int) (*services.DashboardOverview, error)
}

func (f *fakeDashboardService) Overview(ctx context.Context, userID int) (*services.DashboardOverview, error) {
	return f.OverviewFn(ctx, userID)
}

var _ services.AuthService = (*fakeAuthService)(nil)
var _ services.InviteService = (*fakeInviteService)(nil)
var _ services.DashboardService = (*fakeDashboardService)(nil)
