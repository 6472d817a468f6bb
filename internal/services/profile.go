package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/swapcloset/swapcloset/internal/common"
	"github.com/swapcloset/swapcloset/internal/models"
	"github.com/swapcloset/swapcloset/internal/repositories/repomanager"
)

// ProfileService reads profiles for session resolution. It satisfies
// session.ProfileSource.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// ProfileBySubject returns the profile keyed by the identity subject.
// Absence is passed through as common.ErrorNotFound: for a known identity
// that simply means onboarding has not completed.
func (s *ProfileService) ProfileBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	profile, err := s.repomanager.Profiles(s.db).GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return profile, nil
}
