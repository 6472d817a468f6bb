// Package profiles provides access to application-level user profiles.
package profiles

import (
	"context"

	"github.com/swapcloset/swapcloset/internal/models"
)

// Repository reads profiles and applies counter updates. A missing profile
// is reported with common.ErrorNotFound; callers decide whether that is
// benign (it usually is: onboarding has not completed).
type Repository interface {
	GetBySubject(ctx context.Context, subject string) (*models.Profile, error)
	IncrementItemsListed(ctx context.Context, subject string) error
}
