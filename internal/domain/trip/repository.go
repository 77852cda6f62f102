package trip

import "context"

// HistoryRepository defines the persistence contract for the finished-trip
// history. The history service owns the in-memory list and writes settled
// states wholesale; implementations replace the stored sequence on Save.
type HistoryRepository interface {
	// Load retrieves the stored history, most recent first. A missing store
	// yields an empty history, not an error.
	Load(ctx context.Context) ([]Trip, error)

	// Save durably replaces the stored history with the given sequence.
	Save(ctx context.Context, trips []Trip) error
}

// RateRepository defines the persistence contract for the active RateProfile.
type RateRepository interface {
	// Load retrieves the saved profile. The second return is false when no
	// profile has been saved yet.
	Load(ctx context.Context) (RateProfile, bool, error)

	// Save durably replaces the saved profile.
	Save(ctx context.Context, profile RateProfile) error
}
