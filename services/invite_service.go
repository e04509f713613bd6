package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
)

// NormalizeEmail lower-cases and trims an address. Invitation matching is
// case- and whitespace-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type InviteService interface {
	// CreateInvite records a pending invitation for an email to join a
	// house. Only house admins may invite. Refuses a duplicate pending
	// invitation for the same (house, email) pair.
	CreateInvite(ctx context.Context, houseID int, email string, currentUserID int) (*models.Invitation, error)

	// Reconcile matches a pending invitation for (houseID, email) and, if
	// one exists, accepts it on behalf of userID and adds the user to the
	// house. It is the single shared routine behind both the auth redirect
	// handler and the pending-intent recovery.
	//
	// No match is an expected, silent outcome: the result is (nil, nil).
	// Losing the race against a concurrent acceptance of the same record is
	// also (nil, nil): the conditional update found no pending row.
	Reconcile(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error)

	ListHouseInvites(ctx context.Context, houseID, currentUserID int) ([]*models.Invitation, error)
	RevokeInvite(ctx context.Context, houseID, inviteID, currentUserID int) error
}

type inviteService struct {
	inviteRepo repositories.InvitationRepository
	houseRepo  repositories.HouseRepository
	hub        EventBroadcaster
}

func NewInviteService(
	inviteRepo repositories.InvitationRepository,
	houseRepo repositories.HouseRepository,
	hub EventBroadcaster,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		houseRepo:  houseRepo,
		hub:        hub,
	}
}

func (s *inviteService) CreateInvite(ctx context.Context, houseID int, email string, currentUserID int) (*models.Invitation, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrEmailRequired
	}

	if err := s.requireAdmin(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}

	existing, err := s.inviteRepo.FindPending(ctx, houseID, normalized)
	if err != nil && !errors.Is(err, repositories.ErrInvitationNotFound) {
		return nil, fmt.Errorf("pending invite lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrInvitePendingExists
	}

	invitation := &models.Invitation{
		HouseID:      houseID,
		InvitedEmail: normalized,
		InvitedBy:    currentUserID,
		Status:       models.InviteStatusPending,
	}
	if err := s.inviteRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	return invitation, nil
}

func (s *inviteService) Reconcile(ctx context.Context, houseID int, email string, userID int) (*models.Invitation, error) {
	normalized := NormalizeEmail(email)
	if houseID <= 0 || normalized == "" || userID <= 0 {
		return nil, nil
	}

	invitation, err := s.inviteRepo.FindPending(ctx, houseID, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("pending invite lookup: %w", err)
	}

	joinedAt := time.Now().UTC()
	if err := s.inviteRepo.Accept(ctx, invitation.ID, userID, joinedAt); err != nil {
		if errors.Is(err, repositories.ErrInvitationNotPending) {
			// Another acceptance path won the race; the record is no longer
			// discoverable, so there is nothing left to do.
			return nil, nil
		}
		return nil, fmt.Errorf("accept invitation %d: %w", invitation.ID, err)
	}

	if err := s.houseRepo.AddMember(ctx, invitation.HouseID, userID, models.MemberRoleMember); err != nil {
		return nil, fmt.Errorf("add member to house %d: %w", invitation.HouseID, err)
	}

	invitation.Status = models.InviteStatusAccepted
	invitation.UserID = &userID
	invitation.JoinedAt = &joinedAt

	broadcastHouseEvent(s.hub, invitation.HouseID, "MEMBER_JOINED", map[string]interface{}{
		"house_id": invitation.HouseID,
		"user_id":  userID,
	})

	return invitation, nil
}

func (s *inviteService) ListHouseInvites(ctx context.Context, houseID, currentUserID int) ([]*models.Invitation, error) {
	if err := s.requireAdmin(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}
	invitations, err := s.inviteRepo.ListByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list invitations for house %d: %w", houseID, err)
	}
	return invitations, nil
}

func (s *inviteService) RevokeInvite(ctx context.Context, houseID, inviteID, currentUserID int) error {
	if err := s.requireAdmin(ctx, houseID, currentUserID); err != nil {
		return err
	}

	invitation, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("get invitation %d: %w", inviteID, err)
	}
	if invitation.HouseID != houseID {
		return ErrInvitationNotFound
	}

	if err := s.inviteRepo.Revoke(ctx, inviteID); err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("revoke invitation %d: %w", inviteID, err)
	}
	return nil
}

func (s *inviteService) requireAdmin(ctx context.Context, houseID, userID int) error {
	role, err := s.houseRepo.MemberRole(ctx, houseID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrHouseNotFound) {
			return ErrNotHouseMember
		}
		return fmt.Errorf("member role lookup: %w", err)
	}
	if role != models.MemberRoleAdmin {
		return ErrAdminOnly
	}
	return nil
}
