package services

import (
	"context"
	"sync"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
)

// Function-field fakes so each test overrides only what it needs.

type fakeInvitationRepo struct {
	CreateFn        func(ctx context.Context, invitation *models.Invitation) error
	GetByIDFn       func(ctx context.Context, id int) (*models.Invitation, error)
	FindPendingFn   func(ctx context.Context, houseID int, email string) (*models.Invitation, error)
	AcceptFn        func(ctx context.Context, id, userID int, joinedAt time.Time) error
	ListByHouseIDFn func(ctx context.Context, houseID int) ([]*models.Invitation, error)
	RevokeFn        func(ctx context.Context, id int) error
}

func (f *fakeInvitationRepo) Create(ctx context.Context, invitation *models.Invitation) error {
	return f.CreateFn(ctx, invitation)
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id int) (*models.Invitation, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeInvitationRepo) FindPending(ctx context.Context, houseID int, email string) (*models.Invitation, error) {
	return f.FindPendingFn(ctx, houseID, email)
}

func (f *fakeInvitationRepo) Accept(ctx context.Context, id, userID int, joinedAt time.Time) error {
	return f.AcceptFn(ctx, id, userID, joinedAt)
}

func (f *fakeInvitationRepo) ListByHouseID(ctx context.Context, houseID int) ([]*models.Invitation, error) {
	return f.ListByHouseIDFn(ctx, houseID)
}

func (f *fakeInvitationRepo) Revoke(ctx context.Context, id int) error {
	return f.RevokeFn(ctx, id)
}

type fakeHouseRepo struct {
	CreateFn       func(ctx context.Context, house *models.House) error
	GetByIDFn      func(ctx context.Context, id int) (*models.House, error)
	ListByUserIDFn func(ctx context.Context, userID int) ([]*models.House, error)
	AddMemberFn    func(ctx context.Context, houseID, userID int, role models.MemberRole) error
	IsMemberFn     func(ctx context.Context, houseID, userID int) (bool, error)
	MemberRoleFn   func(ctx context.Context, houseID, userID int) (models.MemberRole, error)
	ListMembersFn  func(ctx context.Context, houseID int) ([]*models.HouseMember, error)
}

func (f *fakeHouseRepo) Create(ctx context.Context, house *models.House) error {
	return f.CreateFn(ctx, house)
}

func (f *fakeHouseRepo) GetByID(ctx context.Context, id int) (*models.House, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeHouseRepo) ListByUserID(ctx context.Context, userID int) ([]*models.House, error) {
	return f.ListByUserIDFn(ctx, userID)
}

func (f *fakeHouseRepo) AddMember(ctx context.Context, houseID, userID int, role models.MemberRole) error {
	return f.AddMemberFn(ctx, houseID, userID, role)
}

func (f *fakeHouseRepo) IsMember(ctx context.Context, houseID, userID int) (bool, error) {
	return f.IsMemberFn(ctx, houseID, userID)
}

func (f *fakeHouseRepo) MemberRole(ctx context.Context, houseID, userID int) (models.MemberRole, error) {
	return f.MemberRoleFn(ctx, houseID, userID)
}

func (f *fakeHouseRepo) ListMembers(ctx context.Context, houseID int) ([]*models.HouseMember, error) {
	return f.ListMembersFn(ctx, houseID)
}

type fakeStayRepo struct {
	CreateFn               func(ctx context.Context, stay *models.Stay) error
	GetByIDFn              func(ctx context.Context, id int) (*models.Stay, error)
	ListByHouseIDFn        func(ctx context.Context, houseID int) ([]*models.Stay, error)
	ListUpcomingByUserIDFn func(ctx context.Context, userID int, from time.Time) ([]*models.Stay, error)
	CountOverlappingFn     func(ctx context.Context, houseID int, start, end time.Time, excludeID int) (int, error)
	UpdateStatusFn         func(ctx context.Context, id int, status models.StayStatus) error
	CompletePastFn         func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeStayRepo) Create(ctx context.Context, stay *models.Stay) error {
	return f.CreateFn(ctx, stay)
}

func (f *fakeStayRepo) GetByID(ctx context.Context, id int) (*models.Stay, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeStayRepo) ListByHouseID(ctx context.Context, houseID int) ([]*models.Stay, error) {
	return f.ListByHouseIDFn(ctx, houseID)
}

func (f *fakeStayRepo) ListUpcomingByUserID(ctx context.Context, userID int, from time.Time) ([]*models.Stay, error) {
	return f.ListUpcomingByUserIDFn(ctx, userID, from)
}

func (f *fakeStayRepo) CountOverlapping(ctx context.Context, houseID int, start, end time.Time, excludeID int) (int, error) {
	return f.CountOverlappingFn(ctx, houseID, start, end, excludeID)
}

func (f *fakeStayRepo) UpdateStatus(ctx context.Context, id int, status models.StayStatus) error {
	return f.UpdateStatusFn(ctx, id, status)
}

func (f *fakeStayRepo) CompletePast(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.CompletePastFn(ctx, cutoff)
}

type fakeExpenseRepo struct {
	CreateFn              func(ctx context.Context, expense *models.Expense) error
	GetByIDFn             func(ctx context.Context, id int) (*models.Expense, error)
	ListByHouseIDFn       func(ctx context.Context, houseID int, limit int) ([]*models.Expense, error)
	ListRecentByUserIDFn  func(ctx context.Context, userID int, limit int) ([]*models.Expense, error)
	ListSharesByHouseIDFn func(ctx context.Context, houseID int) ([]*models.ExpenseShare, error)
	TotalByHouseIDFn      func(ctx context.Context, houseID int) (float64, error)
}

func (f *fakeExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	return f.CreateFn(ctx, expense)
}

func (f *fakeExpenseRepo) GetByID(ctx context.Context, id int) (*models.Expense, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeExpenseRepo) ListByHouseID(ctx context.Context, houseID int, limit int) ([]*models.Expense, error) {
	return f.ListByHouseIDFn(ctx, houseID, limit)
}

func (f *fakeExpenseRepo) ListRecentByUserID(ctx context.Context, userID int, limit int) ([]*models.Expense, error) {
	return f.ListRecentByUserIDFn(ctx, userID, limit)
}

func (f *fakeExpenseRepo) ListSharesByHouseID(ctx context.Context, houseID int) ([]*models.ExpenseShare, error) {
	return f.ListSharesByHouseIDFn(ctx, houseID)
}

func (f *fakeExpenseRepo) TotalByHouseID(ctx context.Context, houseID int) (float64, error) {
	return f.TotalByHouseIDFn(ctx, houseID)
}

type fakeUserRepo struct {
	CreateFn                func(ctx context.Context, user *models.User) error
	GetByIDFn               func(ctx context.Context, id int) (*models.User, error)
	GetByEmailFn            func(ctx context.Context, email string) (*models.User, error)
	GetByAuthCodeFn         func(ctx context.Context, code string) (*models.User, error)
	GetByConfirmTokenHashFn func(ctx context.Context, tokenHash string) (*models.User, error)
	ClearAuthCodeFn         func(ctx context.Context, userID int) error
	MarkEmailVerifiedFn     func(ctx context.Context, userID int) error
	UpdateFn                func(ctx context.Context, user *models.User) error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	return f.CreateFn(ctx, user)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.GetByEmailFn(ctx, email)
}

func (f *fakeUserRepo) GetByAuthCode(ctx context.Context, code string) (*models.User, error) {
	return f.GetByAuthCodeFn(ctx, code)
}

func (f *fakeUserRepo) GetByConfirmTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	return f.GetByConfirmTokenHashFn(ctx, tokenHash)
}

func (f *fakeUserRepo) ClearAuthCode(ctx context.Context, userID int) error {
	return f.ClearAuthCodeFn(ctx, userID)
}

func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, userID int) error {
	return f.MarkEmailVerifiedFn(ctx, userID)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	return f.UpdateFn(ctx, user)
}

// recordingBroadcaster captures room events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	RoomID  string
	Message interface{}
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{RoomID: roomID, Message: message})
}

func (b *recordingBroadcaster) Events() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// memberHouseRepo is a fakeHouseRepo preset where everyone is a member and
// the given users are admins.
func memberHouseRepo(admins ...int) *fakeHouseRepo {
	adminSet := make(map[int]bool, len(admins))
	for _, id := range admins {
		adminSet[id] = true
	}
	return &fakeHouseRepo{
		IsMemberFn: func(ctx context.Context, houseID, userID int) (bool, error) {
			return true, nil
		},
		MemberRoleFn: func(ctx context.Context, houseID, userID int) (models.MemberRole, error) {
			if adminSet[userID] {
				return models.MemberRoleAdmin, nil
			}
			return models.MemberRoleMember, nil
		},
		AddMemberFn: func(ctx context.Context, houseID, userID int, role models.MemberRole) error {
			return nil
		},
	}
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)
var _ repositories.InvitationRepository = (*fakeInvitationRepo)(nil)
var _ repositories.HouseRepository = (*fakeHouseRepo)(nil)
var _ repositories.StayRepository = (*fakeStayRepo)(nil)
var _ repositories.ExpenseRepository = (*fakeExpenseRepo)(nil)
var _ EventBroadcaster = (*recordingBroadcaster)(nil)
