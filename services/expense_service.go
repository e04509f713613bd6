package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
)

type AddExpenseInput struct {
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
	Category    string           `json:"category"`
	SplitType   models.SplitType `json:"split_type"`
	ExpenseDate string           `json:"expense_date"` // YYYY-MM-DD, defaults to today
	// Exact shares, required when split_type is "exact".
	Shares map[int]float64 `json:"shares"`
}

type ExpenseService interface {
	AddExpense(ctx context.Context, houseID int, input AddExpenseInput, currentUserID int) (*models.Expense, error)
	ListExpenses(ctx context.Context, houseID, currentUserID int, limit int) ([]*models.Expense, error)
	HouseBalances(ctx context.Context, houseID, currentUserID int) (*models.HouseBalanceSummary, error)
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	houseRepo   repositories.HouseRepository
	hub         EventBroadcaster
}

func NewExpenseService(
	expenseRepo repositories.ExpenseRepository,
	houseRepo repositories.HouseRepository,
	hub EventBroadcaster,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		houseRepo:   houseRepo,
		hub:         hub,
	}
}

func roundToTwo(val float64) float64 {
	return math.Round(val*100) / 100
}

func (s *expenseService) AddExpense(ctx context.Context, houseID int, input AddExpenseInput, currentUserID int) (*models.Expense, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	if input.Amount <= 0 {
		return nil, ErrExpenseInvalid
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidationFailed)
	}

	expenseDate := time.Now().UTC()
	if input.ExpenseDate != "" {
		if parsed, parseErr := time.Parse(dateLayout, input.ExpenseDate); parseErr == nil {
			expenseDate = parsed
		}
	}

	splitType := input.SplitType
	if splitType == "" {
		splitType = models.SplitTypeEqual
	}

	shares, err := s.buildShares(ctx, houseID, input.Amount, splitType, input.Shares)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		HouseID:     houseID,
		PaidBy:      currentUserID,
		Description: description,
		Amount:      roundToTwo(input.Amount),
		Category:    strings.TrimSpace(input.Category),
		SplitType:   splitType,
		ExpenseDate: expenseDate,
		Shares:      shares,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	broadcastHouseEvent(s.hub, houseID, "EXPENSE_ADDED", expense)

	return expense, nil
}

// buildShares distributes the amount across house members. Equal splits give
// every member the same rounded share with the remainder folded into the
// last one so the shares always sum back to the amount.
func (s *expenseService) buildShares(ctx context.Context, houseID int, amount float64, splitType models.SplitType, exact map[int]float64) ([]models.ExpenseShare, error) {
	switch splitType {
	case models.SplitTypeEqual:
		members, err := s.houseRepo.ListMembers(ctx, houseID)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: house has no members", ErrValidationFailed)
		}

		per := roundToTwo(amount / float64(len(members)))
		shares := make([]models.ExpenseShare, 0, len(members))
		allocated := 0.0
		for i, m := range members {
			shareAmount := per
			if i == len(members)-1 {
				shareAmount = roundToTwo(amount - allocated)
			}
			allocated = roundToTwo(allocated + shareAmount)
			shares = append(shares, models.ExpenseShare{UserID: m.UserID, Amount: shareAmount})
		}
		return shares, nil

	case models.SplitTypeExact:
		if len(exact) == 0 {
			return nil, fmt.Errorf("%w: exact splits require shares", ErrValidationFailed)
		}
		sum := 0.0
		userIDs := make([]int, 0, len(exact))
		for userID := range exact {
			userIDs = append(userIDs, userID)
		}
		sort.Ints(userIDs)

		shares := make([]models.ExpenseShare, 0, len(exact))
		for _, userID := range userIDs {
			shareAmount := roundToTwo(exact[userID])
			if shareAmount < 0 {
				return nil, fmt.Errorf("%w: share amounts must be non-negative", ErrValidationFailed)
			}
			sum = roundToTwo(sum + shareAmount)
			shares = append(shares, models.ExpenseShare{UserID: userID, Amount: shareAmount})
		}
		if math.Abs(sum-roundToTwo(amount)) > 0.01 {
			return nil, ErrSplitMismatch
		}
		return shares, nil

	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrValidationFailed, splitType)
	}
}

func (s *expenseService) ListExpenses(ctx context.Context, houseID, currentUserID int, limit int) ([]*models.Expense, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	expenses, err := s.expenseRepo.ListByHouseID(ctx, houseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list expenses for house %d: %w", houseID, err)
	}
	return expenses, nil
}

func (s *expenseService) HouseBalances(ctx context.Context, houseID, currentUserID int) (*models.HouseBalanceSummary, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	expenses, err := s.expenseRepo.ListByHouseID(ctx, houseID, 0)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	shares, err := s.expenseRepo.ListSharesByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	total, err := s.expenseRepo.TotalByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("house total: %w", err)
	}

	members, err := s.houseRepo.ListMembers(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	names := make(map[int]string, len(members))
	for _, m := range members {
		names[m.UserID] = strings.TrimSpace(m.FirstName + " " + m.LastName)
	}

	net := calculateNetBalances(expenses, shares)
	balances := simplifyDebts(net, names)

	return &models.HouseBalanceSummary{
		HouseID:    houseID,
		Balances:   balances,
		TotalSpent: roundToTwo(total),
	}, nil
}

// calculateNetBalances nets what each member paid against what they owe.
// Positive means the member is owed money.
func calculateNetBalances(expenses []*models.Expense, shares []*models.ExpenseShare) map[int]float64 {
	sharesByExpense := make(map[int][]*models.ExpenseShare)
	for _, sh := range shares {
		sharesByExpense[sh.ExpenseID] = append(sharesByExpense[sh.ExpenseID], sh)
	}

	net := make(map[int]float64)
	for _, exp := range expenses {
		net[exp.PaidBy] += exp.Amount
		for _, sh := range sharesByExpense[exp.ID] {
			net[sh.UserID] -= sh.Amount
		}
	}
	return net
}

// simplifyDebts reduces the net balances to a short list of who-pays-whom
// edges with a greedy matching of largest debtor to largest creditor.
func simplifyDebts(net map[int]float64, names map[int]string) []models.Balance {
	type userBalance struct {
		userID int
		amount float64
	}

	var creditors []userBalance
	var debtors []userBalance
	for userID, amount := range net {
		rounded := roundToTwo(amount)
		if rounded > 0.01 {
			creditors = append(creditors, userBalance{userID, rounded})
		} else if rounded < -0.01 {
			debtors = append(debtors, userBalance{userID, -rounded})
		}
	}

	sort.Slice(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })

	results := make([]models.Balance, 0)
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}
		amount = roundToTwo(amount)

		results = append(results, models.Balance{
			FromID:   debtors[i].userID,
			FromName: names[debtors[i].userID],
			ToID:     creditors[j].userID,
			ToName:   names[creditors[j].userID],
			Amount:   amount,
		})

		debtors[i].amount = roundToTwo(debtors[i].amount - amount)
		creditors[j].amount = roundToTwo(creditors[j].amount - amount)

		if debtors[i].amount < 0.01 {
			i++
		}
		if creditors[j].amount < 0.01 {
			j++
		}
	}

	return results
}
