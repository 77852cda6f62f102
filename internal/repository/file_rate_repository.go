package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
)

// FileRateRepository persists the rate profile as a flat JSON object.
type FileRateRepository struct {
	path string
}

// NewFileRateRepository creates a repository writing to the given path.
func NewFileRateRepository(path string) *FileRateRepository {
	return &FileRateRepository{path: path}
}

// Load reads the saved profile; the second return is false when none has
// been saved yet.
func (r *FileRateRepository) Load(ctx context.Context) (trip.RateProfile, bool, error) {
	if err := ctx.Err(); err != nil {
		return trip.RateProfile{}, false, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return trip.RateProfile{}, false, nil
		}
		return trip.RateProfile{}, false, fmt.Errorf("failed to read rate settings: %w", err)
	}

	var profile trip.RateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return trip.RateProfile{}, false, fmt.Errorf("failed to decode rate settings: %w", err)
	}
	return profile, true, nil
}

// Save atomically replaces the saved profile.
func (r *FileRateRepository) Save(ctx context.Context, profile trip.RateProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rate settings: %w", err)
	}
	return atomicWrite(r.path, data)
}
