// Package categories provides read access to the known category set.
package categories

import (
	"context"

	"github.com/swapcloset/swapcloset/internal/models"
)

// Repository resolves categories. GetByName reports an unknown name with
// common.ErrorNotFound.
type Repository interface {
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}
