package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mokki-app/mokki/models"
)

var ErrMediaNotFound = errors.New("media item not found")

type MediaRepository interface {
	Create(ctx context.Context, item *models.MediaItem) error
	GetByID(ctx context.Context, id int) (*models.MediaItem, error)
	ListByHouseID(ctx context.Context, houseID int) ([]*models.MediaItem, error)
	Delete(ctx context.Context, id int) error
}

type postgresMediaRepository struct {
	db *sql.DB
}

func NewPostgresMediaRepository(db *sql.DB) MediaRepository {
	return &postgresMediaRepository{db: db}
}

const mediaColumns = `id, house_id, uploaded_by, key, url, content_type, kind, size_bytes, created_at`

func scanMediaItem(row interface{ Scan(...any) error }) (*models.MediaItem, error) {
	var item models.MediaItem
	err := row.Scan(
		&item.ID,
		&item.HouseID,
		&item.UploadedBy,
		&item.Key,
		&item.URL,
		&item.ContentType,
		&item.Kind,
		&item.SizeBytes,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresMediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	query := `
		INSERT INTO media_items (house_id, uploaded_by, key, url, content_type, kind, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		item.HouseID,
		item.UploadedBy,
		item.Key,
		item.URL,
		item.ContentType,
		item.Kind,
		item.SizeBytes,
	).Scan(&item.ID, &item.CreatedAt)
}

func (r *postgresMediaRepository) GetByID(ctx context.Context, id int) (*models.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE id = $1`
	return scanMediaItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMediaRepository) ListByHouseID(ctx context.Context, houseID int) ([]*models.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE house_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.MediaItem, 0)
	for rows.Next() {
		item, scanErr := scanMediaItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresMediaRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM media_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMediaNotFound)
}
