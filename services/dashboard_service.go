package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
	"golang.org/x/sync/errgroup"
)

// DashboardOverview is what the dashboard page renders after login.
type DashboardOverview struct {
	Houses         []*models.House   `json:"houses"`
	UpcomingStays  []*models.Stay    `json:"upcoming_stays"`
	RecentExpenses []*models.Expense `json:"recent_expenses"`
}

type DashboardService interface {
	Overview(ctx context.Context, userID int) (*DashboardOverview, error)
}

type dashboardService struct {
	houseRepo   repositories.HouseRepository
	stayRepo    repositories.StayRepository
	expenseRepo repositories.ExpenseRepository
}

func NewDashboardService(
	houseRepo repositories.HouseRepository,
	stayRepo repositories.StayRepository,
	expenseRepo repositories.ExpenseRepository,
) DashboardService {
	return &dashboardService{
		houseRepo:   houseRepo,
		stayRepo:    stayRepo,
		expenseRepo: expenseRepo,
	}
}

func (s *dashboardService) Overview(ctx context.Context, userID int) (*DashboardOverview, error) {
	overview := &DashboardOverview{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		houses, err := s.houseRepo.ListByUserID(gCtx, userID)
		if err != nil {
			return fmt.Errorf("list houses: %w", err)
		}
		overview.Houses = houses
		return nil
	})

	g.Go(func() error {
		stays, err := s.stayRepo.ListUpcomingByUserID(gCtx, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("list upcoming stays: %w", err)
		}
		overview.UpcomingStays = stays
		return nil
	})

	g.Go(func() error {
		expenses, err := s.expenseRepo.ListRecentByUserID(gCtx, userID, 20)
		if err != nil {
			return fmt.Errorf("list recent expenses: %w", err)
		}
		overview.RecentExpenses = expenses
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
