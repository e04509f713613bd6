package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
)

type BookStayInput struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Note      string `json:"note"`
}

type StayService interface {
	BookStay(ctx context.Context, houseID int, input BookStayInput, currentUserID int) (*models.Stay, error)
	ListStays(ctx context.Context, houseID, currentUserID int) ([]*models.Stay, error)
	CancelStay(ctx context.Context, houseID, stayID, currentUserID int) error

	// AutoCompletePastStays is run by the background scheduler.
	AutoCompletePastStays(ctx context.Context) error
}

type stayService struct {
	stayRepo  repositories.StayRepository
	houseRepo repositories.HouseRepository
	hub       EventBroadcaster
	logger    *slog.Logger
}

func NewStayService(
	stayRepo repositories.StayRepository,
	houseRepo repositories.HouseRepository,
	hub EventBroadcaster,
	logger *slog.Logger,
) StayService {
	return &stayService{
		stayRepo:  stayRepo,
		houseRepo: houseRepo,
		hub:       hub,
		logger:    logger,
	}
}

const dateLayout = "2006-01-02"

func parseStayDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrValidationFailed)
	}
	return t, nil
}

func (s *stayService) BookStay(ctx context.Context, houseID int, input BookStayInput, currentUserID int) (*models.Stay, error) {
	if err := s.requireMember(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}

	start, err := parseStayDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseStayDate(input.EndDate)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, ErrInvalidStayRange
	}

	overlapping, err := s.stayRepo.CountOverlapping(ctx, houseID, start, end, 0)
	if err != nil {
		return nil, fmt.Errorf("overlap check: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrStayConflict
	}

	stay := &models.Stay{
		HouseID:   houseID,
		UserID:    currentUserID,
		StartDate: start,
		EndDate:   end,
		Note:      strings.TrimSpace(input.Note),
		Status:    models.StayStatusBooked,
	}
	if err := s.stayRepo.Create(ctx, stay); err != nil {
		return nil, fmt.Errorf("create stay: %w", err)
	}

	broadcastHouseEvent(s.hub, houseID, "STAY_BOOKED", stay)

	return stay, nil
}

func (s *stayService) ListStays(ctx context.Context, houseID, currentUserID int) ([]*models.Stay, error) {
	if err := s.requireMember(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}

	stays, err := s.stayRepo.ListByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list stays for house %d: %w", houseID, err)
	}
	return stays, nil
}

func (s *stayService) CancelStay(ctx context.Context, houseID, stayID, currentUserID int) error {
	stay, err := s.stayRepo.GetByID(ctx, stayID)
	if err != nil {
		if errors.Is(err, repositories.ErrStayNotFound) {
			return ErrStayNotFound
		}
		return fmt.Errorf("get stay %d: %w", stayID, err)
	}
	if stay.HouseID != houseID {
		return ErrStayNotFound
	}
	if stay.Status != models.StayStatusBooked {
		return ErrStayNotCancelable
	}

	// The booking owner or a house admin may cancel.
	if stay.UserID != currentUserID {
		role, roleErr := s.houseRepo.MemberRole(ctx, houseID, currentUserID)
		if roleErr != nil || role != models.MemberRoleAdmin {
			return ErrForbiddenOperation
		}
	}

	if err := s.stayRepo.UpdateStatus(ctx, stayID, models.StayStatusCancelled); err != nil {
		return fmt.Errorf("cancel stay %d: %w", stayID, err)
	}
	return nil
}

func (s *stayService) AutoCompletePastStays(ctx context.Context) error {
	n, err := s.stayRepo.CompletePast(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("complete past stays: %w", err)
	}
	if n > 0 {
		s.logger.Info("marked past stays completed", slog.Int64("count", n))
	}
	return nil
}

func (s *stayService) requireMember(ctx context.Context, houseID, userID int) error {
	ok, err := s.houseRepo.IsMember(ctx, houseID, userID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return ErrNotHouseMember
	}
	return nil
}
