package application

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
)

// RateSettings owns the active rate profile: loaded once at construction,
// saved on every change. Settings edits never reach a running trip because
// the engine freezes its own snapshot at start.
type RateSettings struct {
	repo   trip.RateRepository
	logger *zap.Logger

	mu      sync.Mutex
	profile trip.RateProfile
}

// NewRateSettings creates the settings service, loading the saved profile or
// falling back to the Bengaluru defaults.
func NewRateSettings(ctx context.Context, repo trip.RateRepository, logger *zap.Logger) *RateSettings {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RateSettings{
		repo:    repo,
		logger:  logger,
		profile: trip.BengaluruDefaultRates(),
	}

	profile, found, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("failed to load rate settings", zap.Error(err))
	} else if found {
		s.profile = profile
	}
	return s
}

// Profile returns the active rate profile.
func (s *RateSettings) Profile() trip.RateProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Set validates, applies, and persists a new profile. A failed write is
// surfaced but the in-memory profile still changes; memory is the source of
// truth.
func (s *RateSettings) Set(ctx context.Context, profile trip.RateProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid rate profile: %w", err)
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	if err := s.repo.Save(ctx, profile); err != nil {
		s.logger.Warn("failed to persist rate settings", zap.Error(err))
		return fmt.Errorf("failed to persist rate settings: %w", err)
	}
	return nil
}

// ResetToDefaults restores and persists the Bengaluru default rate card.
func (s *RateSettings) ResetToDefaults(ctx context.Context) error {
	return s.Set(ctx, trip.BengaluruDefaultRates())
}
