package listings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/models"
)

// PostgresRepository implements listing persistence over a dbx.DBTX
// (*sql.DB or *sql.Tx). Pass a transactional handle to make the listing row
// and its tag rows atomic.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record and its tags. The record ID is assigned here;
// images are stored as a JSON array, or NULL when the record carries none.
func (r *PostgresRepository) Create(ctx context.Context, record *models.ListingRecord) (*models.ListingRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	var images any
	if record.Images != nil {
		encoded, err := json.Marshal(record.Images)
		if err != nil {
			return nil, fmt.Errorf("failed to encode images: %w", err)
		}
		images = encoded
	}

	query := `
		INSERT INTO listings (id, owner_id, category_id, title, description,
			size, condition, brand, color, material, points_value,
			exchange_preference, latitude, longitude, images, status,
			views, saves, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.OwnerID, record.CategoryID, record.Title, record.Description,
		record.Size, record.Condition, record.Brand, record.Color, record.Material,
		record.PointsValue, record.ExchangePreference, record.Latitude, record.Longitude,
		images, record.Status, record.Views, record.Saves, record.Available,
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}

	for _, tag := range record.Tags {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO listing_tags (listing_id, tag) VALUES ($1, $2)`,
			record.ID, tag,
		); err != nil {
			return nil, fmt.Errorf("failed to insert listing tag: %w", err)
		}
	}

	return record, nil
}
