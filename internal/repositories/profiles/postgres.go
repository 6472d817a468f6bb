package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/models"
)

// PostgresRepository implements profile access over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetBySubject returns the profile keyed by the identity subject.
func (r *PostgresRepository) GetBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	query := `
		SELECT id, display_name, handle, bio, avatar_url, latitude, longitude,
			points_balance, items_listed, swaps_completed, active, created_at, member_since
		FROM profiles
		WHERE id = $1
	`

	result := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, subject).Scan(
		&result.ID, &result.DisplayName, &result.Handle, &result.Bio, &result.AvatarURL,
		&result.Latitude, &result.Longitude,
		&result.PointsBalance, &result.ItemsListed, &result.SwapsCompleted,
		&result.Active, &result.CreatedAt, &result.MemberSince,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}
	return result, nil
}

// IncrementItemsListed bumps the owner's items-listed counter. Exactly one
// row must be affected.
func (r *PostgresRepository) IncrementItemsListed(ctx context.Context, subject string) error {
	query := `UPDATE profiles SET items_listed = items_listed + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, subject)
	if err != nil {
		return fmt.Errorf("failed to increment items listed: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
