package models

import "time"

type SplitType string

const (
	SplitTypeEqual SplitType = "equal"
	SplitTypeExact SplitType = "exact"
)

type Expense struct {
	ID          int       `json:"id"`
	HouseID     int       `json:"house_id"`
	PaidBy      int       `json:"paid_by"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category,omitempty"`
	SplitType   SplitType `json:"split_type"`
	ExpenseDate time.Time `json:"expense_date"`
	CreatedAt   time.Time `json:"created_at"`

	Shares []ExpenseShare `json:"shares,omitempty"`
}

type ExpenseShare struct {
	ID        int     `json:"id"`
	ExpenseID int     `json:"expense_id"`
	UserID    int     `json:"user_id"`
	Amount    float64 `json:"amount"`
}

// Balance is one simplified debt edge: From owes To.
type Balance struct {
	FromID   int     `json:"from_id"`
	FromName string  `json:"from_name,omitempty"`
	ToID     int     `json:"to_id"`
	ToName   string  `json:"to_name,omitempty"`
	Amount   float64 `json:"amount"`
}

type HouseBalanceSummary struct {
	HouseID    int       `json:"house_id"`
	Balances   []Balance `json:"balances"`
	TotalSpent float64   `json:"total_spent"`
}
