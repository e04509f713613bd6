package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
)

type CreateHouseInput struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HouseService interface {
	CreateHouse(ctx context.Context, input CreateHouseInput, currentUserID int) (*models.House, error)
	GetHouse(ctx context.Context, houseID, currentUserID int) (*models.House, error)
	ListMine(ctx context.Context, currentUserID int) ([]*models.House, error)
	ListMembers(ctx context.Context, houseID, currentUserID int) ([]*models.HouseMember, error)

	// RequireMember guards house-scoped operations in other services.
	RequireMember(ctx context.Context, houseID, userID int) error
}

type houseService struct {
	houseRepo repositories.HouseRepository
}

func NewHouseService(houseRepo repositories.HouseRepository) HouseService {
	return &houseService{houseRepo: houseRepo}
}

func (s *houseService) CreateHouse(ctx context.Context, input CreateHouseInput, currentUserID int) (*models.House, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: house name is required", ErrValidationFailed)
	}

	house := &models.House{
		Name:      name,
		Address:   strings.TrimSpace(input.Address),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		CreatedBy: currentUserID,
	}
	if err := s.houseRepo.Create(ctx, house); err != nil {
		return nil, fmt.Errorf("create house: %w", err)
	}

	if err := s.houseRepo.AddMember(ctx, house.ID, currentUserID, models.MemberRoleAdmin); err != nil {
		return nil, fmt.Errorf("add creator as admin of house %d: %w", house.ID, err)
	}

	return house, nil
}

func (s *houseService) GetHouse(ctx context.Context, houseID, currentUserID int) (*models.House, error) {
	if err := s.RequireMember(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}

	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		if errors.Is(err, repositories.ErrHouseNotFound) {
			return nil, ErrHouseNotFound
		}
		return nil, fmt.Errorf("get house %d: %w", houseID, err)
	}
	return house, nil
}

func (s *houseService) ListMine(ctx context.Context, currentUserID int) ([]*models.House, error) {
	houses, err := s.houseRepo.ListByUserID(ctx, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("list houses for user %d: %w", currentUserID, err)
	}
	return houses, nil
}

func (s *houseService) ListMembers(ctx context.Context, houseID, currentUserID int) ([]*models.HouseMember, error) {
	if err := s.RequireMember(ctx, houseID, currentUserID); err != nil {
		return nil, err
	}

	members, err := s.houseRepo.ListMembers(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list members of house %d: %w", houseID, err)
	}
	return members, nil
}

func (s *houseService) RequireMember(ctx context.Context, houseID, userID int) error {
	ok, err := s.houseRepo.IsMember(ctx, houseID, userID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return ErrNotHouseMember
	}
	return nil
}
