package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
)

// FileTripRepository persists the trip history as a single JSON document.
// Timestamps serialize as RFC 3339; optional fields are omitted when unset.
// Writes go through a temp file and rename so a crash never leaves a
// half-written store.
type FileTripRepository struct {
	path string
}

// NewFileTripRepository creates a repository writing to the given path.
func NewFileTripRepository(path string) *FileTripRepository {
	return &FileTripRepository{path: path}
}

// Load reads the stored history. A missing file yields an empty history.
func (r *FileTripRepository) Load(ctx context.Context) ([]trip.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read trip history: %w", err)
	}

	var trips []trip.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trip history: %w", err)
	}
	return trips, nil
}

// Save atomically replaces the stored history.
func (r *FileTripRepository) Save(ctx context.Context, trips []trip.Trip) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if trips == nil {
		trips = []trip.Trip{}
	}
	data, err := json.MarshalIndent(trips, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trip history: %w", err)
	}

	return atomicWrite(r.path, data)
}

// atomicWrite lands data at path via a sibling temp file and rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
