package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mokki-app/mokki/models"
)

var ErrStayNotFound = errors.New("stay not found")

type StayRepository interface {
	Create(ctx context.Context, stay *models.Stay) error
	GetByID(ctx context.Context, id int) (*models.Stay, error)
	ListByHouseID(ctx context.Context, houseID int) ([]*models.Stay, error)
	ListUpcomingByUserID(ctx context.Context, userID int, from time.Time) ([]*models.Stay, error)

	// CountOverlapping counts booked stays in the house whose date range
	// intersects [start, end). excludeID skips one stay (0 for none).
	CountOverlapping(ctx context.Context, houseID int, start, end time.Time, excludeID int) (int, error)

	UpdateStatus(ctx context.Context, id int, status models.StayStatus) error

	// CompletePast marks booked stays that ended before the cutoff as
	// completed and returns how many rows changed.
	CompletePast(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresStayRepository struct {
	db *sql.DB
}

func NewPostgresStayRepository(db *sql.DB) StayRepository {
	return &postgresStayRepository{db: db}
}

const stayColumns = `id, house_id, user_id, start_date, end_date, note, status, created_at`

func scanStay(row interface{ Scan(...any) error }) (*models.Stay, error) {
	var stay models.Stay
	err := row.Scan(
		&stay.ID,
		&stay.HouseID,
		&stay.UserID,
		&stay.StartDate,
		&stay.EndDate,
		&stay.Note,
		&stay.Status,
		&stay.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStayNotFound
		}
		return nil, err
	}
	return &stay, nil
}

func (r *postgresStayRepository) Create(ctx context.Context, stay *models.Stay) error {
	query := `
		INSERT INTO stays (house_id, user_id, start_date, end_date, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		stay.HouseID,
		stay.UserID,
		stay.StartDate,
		stay.EndDate,
		stay.Note,
		stay.Status,
	).Scan(&stay.ID, &stay.CreatedAt)
}

func (r *postgresStayRepository) GetByID(ctx context.Context, id int) (*models.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays WHERE id = $1`
	return scanStay(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresStayRepository) ListByHouseID(ctx context.Context, houseID int) ([]*models.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays WHERE house_id = $1 ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stays := make([]*models.Stay, 0)
	for rows.Next() {
		stay, scanErr := scanStay(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

func (r *postgresStayRepository) ListUpcomingByUserID(ctx context.Context, userID int, from time.Time) ([]*models.Stay, error) {
	query := `
		SELECT ` + stayColumns + `
		FROM stays
		WHERE user_id = $1 AND status = 'booked' AND end_date >= $2
		ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, userID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stays := make([]*models.Stay, 0)
	for rows.Next() {
		stay, scanErr := scanStay(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

func (r *postgresStayRepository) CountOverlapping(ctx context.Context, houseID int, start, end time.Time, excludeID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM stays
		WHERE house_id = $1 AND status = 'booked'
		  AND start_date < $3 AND end_date > $2
		  AND id <> $4`

	var count int
	if err := r.db.QueryRowContext(ctx, query, houseID, start, end, excludeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresStayRepository) UpdateStatus(ctx context.Context, id int, status models.StayStatus) error {
	query := `UPDATE stays SET status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStayNotFound)
}

func (r *postgresStayRepository) CompletePast(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE stays SET status = 'completed' WHERE status = 'booked' AND end_date < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
