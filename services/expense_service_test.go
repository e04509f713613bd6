package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokki-app/mokki/models"
)

func houseWithMembers(userIDs ...int) *fakeHouseRepo {
	repo := memberHouseRepo()
	repo.ListMembersFn = func(ctx context.Context, houseID int) ([]*models.HouseMember, error) {
		members := make([]*models.HouseMember, 0, len(userIDs))
		for _, id := range userIDs {
			members = append(members, &models.HouseMember{HouseID: houseID, UserID: id})
		}
		return members, nil
	}
	return repo
}

func TestAddExpenseEqualSplitSumsBack(t *testing.T) {
	var created *models.Expense
	expenseRepo := &fakeExpenseRepo{
		CreateFn: func(ctx context.Context, expense *models.Expense) error {
			expense.ID = 4
			created = expense
			return nil
		},
	}
	hub := &recordingBroadcaster{}
	svc := NewExpenseService(expenseRepo, houseWithMembers(1, 2, 3), hub)

	got, err := svc.AddExpense(context.Background(), 3, AddExpenseInput{
		Description: "firewood",
		Amount:      100,
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Len(t, got.Shares, 3)

	assert.Equal(t, 33.33, got.Shares[0].Amount)
	assert.Equal(t, 33.33, got.Shares[1].Amount)
	assert.Equal(t, 33.34, got.Shares[2].Amount)

	sum := 0.0
	for _, share := range got.Shares {
		sum += share.Amount
	}
	assert.InDelta(t, 100, sum, 0.001)

	events := hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "house_3", events[0].RoomID)
}

func TestAddExpenseExactSplit(t *testing.T) {
	expenseRepo := &fakeExpenseRepo{
		CreateFn: func(ctx context.Context, expense *models.Expense) error { return nil },
	}
	svc := NewExpenseService(expenseRepo, houseWithMembers(1, 2), nil)

	got, err := svc.AddExpense(context.Background(), 3, AddExpenseInput{
		Description: "lift passes",
		Amount:      90,
		SplitType:   models.SplitTypeExact,
		Shares:      map[int]float64{1: 60, 2: 30},
	}, 1)
	require.NoError(t, err)
	require.Len(t, got.Shares, 2)
	assert.Equal(t, 1, got.Shares[0].UserID)
	assert.Equal(t, 60.0, got.Shares[0].Amount)
}

func TestAddExpenseExactSplitMismatch(t *testing.T) {
	svc := NewExpenseService(&fakeExpenseRepo{}, houseWithMembers(1, 2), nil)

	_, err := svc.AddExpense(context.Background(), 3, AddExpenseInput{
		Description: "lift passes",
		Amount:      90,
		SplitType:   models.SplitTypeExact,
		Shares:      map[int]float64{1: 60, 2: 20},
	}, 1)
	assert.ErrorIs(t, err, ErrSplitMismatch)
}

func TestAddExpenseValidation(t *testing.T) {
	svc := NewExpenseService(&fakeExpenseRepo{}, houseWithMembers(1), nil)

	_, err := svc.AddExpense(context.Background(), 3, AddExpenseInput{Description: "x", Amount: 0}, 1)
	assert.ErrorIs(t, err, ErrExpenseInvalid)

	_, err = svc.AddExpense(context.Background(), 3, AddExpenseInput{Description: "  ", Amount: 10}, 1)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestHouseBalancesSimplifiesDebts(t *testing.T) {
	// User 1 paid 90, split equally three ways. Users 2 and 3 each owe 30.
	expenses := []*models.Expense{
		{ID: 4, HouseID: 3, PaidBy: 1, Amount: 90},
	}
	shares := []*models.ExpenseShare{
		{ExpenseID: 4, UserID: 1, Amount: 30},
		{ExpenseID: 4, UserID: 2, Amount: 30},
		{ExpenseID: 4, UserID: 3, Amount: 30},
	}

	expenseRepo := &fakeExpenseRepo{
		ListByHouseIDFn: func(ctx context.Context, houseID int, limit int) ([]*models.Expense, error) {
			return expenses, nil
		},
		ListSharesByHouseIDFn: func(ctx context.Context, houseID int) ([]*models.ExpenseShare, error) {
			return shares, nil
		},
		TotalByHouseIDFn: func(ctx context.Context, houseID int) (float64, error) {
			return 90, nil
		},
	}
	houseRepo := memberHouseRepo()
	houseRepo.ListMembersFn = func(ctx context.Context, houseID int) ([]*models.HouseMember, error) {
		return []*models.HouseMember{
			{UserID: 1, FirstName: "Anna", LastName: "Aho"},
			{UserID: 2, FirstName: "Bob", LastName: "Berg"},
			{UserID: 3, FirstName: "Cleo", LastName: "Coste"},
		}, nil
	}

	svc := NewExpenseService(expenseRepo, houseRepo, nil)

	summary, err := svc.HouseBalances(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 90.0, summary.TotalSpent)
	require.Len(t, summary.Balances, 2)

	for _, balance := range summary.Balances {
		assert.Equal(t, 1, balance.ToID)
		assert.Equal(t, "Anna Aho", balance.ToName)
		assert.Equal(t, 30.0, balance.Amount)
	}
}

func TestSimplifyDebtsGreedyMatching(t *testing.T) {
	net := map[int]float64{
		1: 70,
		2: -50,
		3: -20,
	}
	balances := simplifyDebts(net, map[int]string{1: "A", 2: "B", 3: "C"})
	require.Len(t, balances, 2)

	// Largest debtor settles first.
	assert.Equal(t, 2, balances[0].FromID)
	assert.Equal(t, 50.0, balances[0].Amount)
	assert.Equal(t, 3, balances[1].FromID)
	assert.Equal(t, 20.0, balances[1].Amount)
}

func TestCalculateNetBalances(t *testing.T) {
	expenses := []*models.Expense{
		{ID: 1, PaidBy: 1, Amount: 60},
		{ID: 2, PaidBy: 2, Amount: 40},
	}
	shares := []*models.ExpenseShare{
		{ExpenseID: 1, UserID: 1, Amount: 30},
		{ExpenseID: 1, UserID: 2, Amount: 30},
		{ExpenseID: 2, UserID: 1, Amount: 20},
		{ExpenseID: 2, UserID: 2, Amount: 20},
	}

	net := calculateNetBalances(expenses, shares)
	assert.InDelta(t, 10, net[1], 0.001)
	assert.InDelta(t, -10, net[2], 0.001)
}
