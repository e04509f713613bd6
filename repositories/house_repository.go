package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mokki-app/mokki/models"
)

var ErrHouseNotFound = errors.New("house not found")

type HouseRepository interface {
	Create(ctx context.Context, house *models.House) error
	GetByID(ctx context.Context, id int) (*models.House, error)
	ListByUserID(ctx context.Context, userID int) ([]*models.House, error)

	// AddMember is idempotent: inserting an existing (house, user) pair is a
	// no-op so the acceptor and a concurrent join cannot conflict.
	AddMember(ctx context.Context, houseID, userID int, role models.MemberRole) error
	IsMember(ctx context.Context, houseID, userID int) (bool, error)
	MemberRole(ctx context.Context, houseID, userID int) (models.MemberRole, error)
	ListMembers(ctx context.Context, houseID int) ([]*models.HouseMember, error)
}

type postgresHouseRepository struct {
	db *sql.DB
}

func NewPostgresHouseRepository(db *sql.DB) HouseRepository {
	return &postgresHouseRepository{db: db}
}

func (r *postgresHouseRepository) Create(ctx context.Context, house *models.House) error {
	query := `
		INSERT INTO houses (name, address, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		house.Name,
		house.Address,
		house.Latitude,
		house.Longitude,
		house.CreatedBy,
	).Scan(&house.ID, &house.CreatedAt)
}

func (r *postgresHouseRepository) GetByID(ctx context.Context, id int) (*models.House, error) {
	query := `
		SELECT id, name, address, latitude, longitude, created_by, created_at
		FROM houses
		WHERE id = $1`

	house := &models.House{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&house.ID,
		&house.Name,
		&house.Address,
		&house.Latitude,
		&house.Longitude,
		&house.CreatedBy,
		&house.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHouseNotFound
		}
		return nil, err
	}
	return house, nil
}

func (r *postgresHouseRepository) ListByUserID(ctx context.Context, userID int) ([]*models.House, error) {
	query := `
		SELECT h.id, h.name, h.address, h.latitude, h.longitude, h.created_by, h.created_at
		FROM houses h
		JOIN house_members m ON m.house_id = h.id
		WHERE m.user_id = $1
		ORDER BY h.created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	houses := make([]*models.House, 0)
	for rows.Next() {
		var house models.House
		if scanErr := rows.Scan(
			&house.ID,
			&house.Name,
			&house.Address,
			&house.Latitude,
			&house.Longitude,
			&house.CreatedBy,
			&house.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		houses = append(houses, &house)
	}
	return houses, rows.Err()
}

func (r *postgresHouseRepository) AddMember(ctx context.Context, houseID, userID int, role models.MemberRole) error {
	query := `
		INSERT INTO house_members (house_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (house_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, houseID, userID, role)
	return err
}

func (r *postgresHouseRepository) IsMember(ctx context.Context, houseID, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM house_members WHERE house_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, houseID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresHouseRepository) MemberRole(ctx context.Context, houseID, userID int) (models.MemberRole, error) {
	query := `SELECT role FROM house_members WHERE house_id = $1 AND user_id = $2`

	var role models.MemberRole
	err := r.db.QueryRowContext(ctx, query, houseID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrHouseNotFound
		}
		return "", err
	}
	return role, nil
}

func (r *postgresHouseRepository) ListMembers(ctx context.Context, houseID int) ([]*models.HouseMember, error) {
	query := `
		SELECT m.house_id, m.user_id, m.role, m.joined_at, u.first_name, u.last_name, u.email
		FROM house_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.house_id = $1
		ORDER BY m.joined_at`

	rows, err := r.db.QueryContext(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.HouseMember, 0)
	for rows.Next() {
		var m models.HouseMember
		if scanErr := rows.Scan(
			&m.HouseID,
			&m.UserID,
			&m.Role,
			&m.JoinedAt,
			&m.FirstName,
			&m.LastName,
			&m.Email,
		); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
