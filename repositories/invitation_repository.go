package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mokki-app/mokki/models"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationNotPending reports a conditional accept that matched no
	// still-pending row; the caller treats it as "already accepted".
	ErrInvitationNotPending = errors.New("invitation is not pending")
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	GetByID(ctx context.Context, id int) (*models.Invitation, error)

	// FindPending returns the newest pending invitation for the given house
	// and normalized email. ErrInvitationNotFound when none exists.
	FindPending(ctx context.Context, houseID int, email string) (*models.Invitation, error)

	// Accept transitions pending -> accepted, stamping user_id and joined_at.
	// The update is conditional on status = 'pending' so only one of two
	// concurrent acceptance attempts can win; the loser gets
	// ErrInvitationNotPending.
	Accept(ctx context.Context, id, userID int, joinedAt time.Time) error

	ListByHouseID(ctx context.Context, houseID int) ([]*models.Invitation, error)
	Revoke(ctx context.Context, id int) error
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

const invitationColumns = `id, house_id, invited_email, invited_by, status, user_id, joined_at, created_at`

func scanInvitation(row interface{ Scan(...any) error }) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.HouseID,
		&inv.InvitedEmail,
		&inv.InvitedBy,
		&inv.Status,
		&inv.UserID,
		&inv.JoinedAt,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	query := `
		INSERT INTO invitations (house_id, invited_email, invited_by, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		invitation.HouseID,
		invitation.InvitedEmail,
		invitation.InvitedBy,
		invitation.Status,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresInvitationRepository) FindPending(ctx context.Context, houseID int, email string) (*models.Invitation, error) {
	// Uniqueness of (house_id, invited_email, pending) is not enforced
	// upstream; the newest row wins.
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE house_id = $1 AND invited_email = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`

	return scanInvitation(r.db.QueryRowContext(ctx, query, houseID, email))
}

func (r *postgresInvitationRepository) Accept(ctx context.Context, id, userID int, joinedAt time.Time) error {
	query := `
		UPDATE invitations
		SET status = 'accepted', user_id = $2, joined_at = $3
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id, userID, joinedAt)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationNotPending)
}

func (r *postgresInvitationRepository) ListByHouseID(ctx context.Context, houseID int) ([]*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE house_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, houseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]*models.Invitation, 0)
	for rows.Next() {
		inv, scanErr := scanInvitation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *postgresInvitationRepository) Revoke(ctx context.Context, id int) error {
	query := `UPDATE invitations SET status = 'revoked' WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationNotFound)
}
