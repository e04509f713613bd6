package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mokki-app/mokki/models"
)

var ErrExpenseNotFound = errors.New("expense not found")

type ExpenseRepository interface {
	// Create inserts the expense and its shares in one transaction.
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id int) (*models.Expense, error)
	ListByHouseID(ctx context.Context, houseID int, limit int) ([]*models.Expense, error)
	ListRecentByUserID(ctx context.Context, userID int, limit int) ([]*models.Expense, error)
	ListSharesByHouseID(ctx context.Context, houseID int) ([]*models.ExpenseShare, error)
	TotalByHouseID(ctx context.Context, houseID int) (float64, error)
}

type postgresExpenseRepository struct {
	db *sql.DB
}

func NewPostgresExpenseRepository(db *sql.DB) ExpenseRepository {
	return &postgresExpenseRepository{db: db}
}

func (r *postgresExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin expense transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (house_id, paid_by, description, amount, category, split_type, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		expense.HouseID,
		expense.PaidBy,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.SplitType,
		expense.ExpenseDate,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return err
	}

	shareQuery := `
		INSERT INTO expense_shares (expense_id, user_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id`

	for i := range expense.Shares {
		expense.Shares[i].ExpenseID = expense.ID
		if err := tx.QueryRowContext(ctx, shareQuery,
			expense.Shares[i].ExpenseID,
			expense.Shares[i].UserID,
			expense.Shares[i].Amount,
		).Scan(&expense.Shares[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const expenseColumns = `id, house_id, paid_by, description, amount, category, split_type, expense_date, created_at`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(
		&e.ID,
		&e.HouseID,
		&e.PaidBy,
		&e.Description,
		&e.Amount,
		&e.Category,
		&e.SplitType,
		&e.ExpenseDate,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresExpenseRepository) GetByID(ctx context.Context, id int) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	return scanExpense(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresExpenseRepository) ListByHouseID(ctx context.Context, houseID int, limit int) ([]*models.Expense, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE house_id = $1
		ORDER BY expense_date DESC, id DESC
		LIMIT $2`

	return r.collect(ctx, query, houseID, limit)
}

func (r *postgresExpenseRepository) ListRecentByUserID(ctx context.Context, userID int, limit int) ([]*models.Expense, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE house_id IN (SELECT house_id FROM house_members WHERE user_id = $1)
		ORDER BY expense_date DESC, id DESC
		LIMIT $2`

	return r.collect(ctx, query, userID, limit)
}

func (r *postgresExpenseRepository) collect(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		e, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *postgresExpenseRepository) ListSharesByHouseID(ctx context.Context, houseID int) ([]*models.ExpenseShare, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.house_id = $1`

	rows, err := r.db.QueryContext(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]*models.ExpenseShare, 0)
	for rows.Next() {
		var s models.ExpenseShare
		if scanErr := rows.Scan(&s.ID, &s.ExpenseID, &s.UserID, &s.Amount); scanErr != nil {
			return nil, scanErr
		}
		shares = append(shares, &s)
	}
	return shares, rows.Err()
}

func (r *postgresExpenseRepository) TotalByHouseID(ctx context.Context, houseID int) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE house_id = $1`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, houseID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
