package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/models"
)

// PostgresRepository implements category lookup over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByName resolves a category by case-insensitive name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT id, name FROM categories WHERE lower(name) = lower($1)`

	result := &models.Category{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&result.ID, &result.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select category: %w", err)
	}
	return result, nil
}

// List returns all categories ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		var item models.Category
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
