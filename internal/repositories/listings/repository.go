// Package listings persists listing records.
package listings

import (
	"context"

	"github.com/swapcloset/swapcloset/internal/models"
)

// Repository creates listing records. Creation assigns the record ID and
// creation timestamp; the returned record carries both.
type Repository interface {
	Create(ctx context.Context, record *models.ListingRecord) (*models.ListingRecord, error)
}
