package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
)

// TripModel is the GORM model for the trips table. The ordered position in
// the history is materialized so Load can rebuild the most-recent-first
// sequence exactly.
type TripModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position          int             `gorm:"not null;index"`
	StartedAt         time.Time       `gorm:"not null"`
	EndedAt           time.Time       `gorm:"not null"`
	DistanceMeters    float64         `gorm:"not null"`
	DurationSeconds   float64         `gorm:"not null"`
	Fare              float64         `gorm:"not null"`
	WaitingSeconds    float64         `gorm:"not null"`
	Samples           json.RawMessage `gorm:"type:jsonb;not null"`
	Conditions        json.RawMessage `gorm:"type:jsonb;not null"`
	RateSnapshot      json.RawMessage `gorm:"type:jsonb;not null"`
	Multiplier        float64         `gorm:"not null"`
	Name              *string         `gorm:"size:200"`
	StartLocationName *string         `gorm:"size:200"`
}

// TableName returns the table name for the GORM model.
func (TripModel) TableName() string {
	return "trips"
}

// PostgresTripRepository is the GORM-based implementation of
// trip.HistoryRepository. Save replaces the whole table in one transaction,
// matching the settled-state write model of the history service.
type PostgresTripRepository struct {
	db *gorm.DB
}

// NewPostgresTripRepository creates a new PostgresTripRepository.
func NewPostgresTripRepository(db *gorm.DB) *PostgresTripRepository {
	return &PostgresTripRepository{db: db}
}

// Load retrieves the stored history in its persisted order.
func (r *PostgresTripRepository) Load(ctx context.Context) ([]trip.Trip, error) {
	var models []TripModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load trip history: %w", err)
	}

	trips := make([]trip.Trip, len(models))
	for i, m := range models {
		t, err := toDomainTrip(&m)
		if err != nil {
			return nil, err
		}
		trips[i] = t
	}
	return trips, nil
}

// Save replaces the stored history with the given sequence.
func (r *PostgresTripRepository) Save(ctx context.Context, trips []trip.Trip) error {
	models := make([]TripModel, len(trips))
	for i, t := range trips {
		m, err := toTripModel(t, i)
		if err != nil {
			return err
		}
		models[i] = *m
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TripModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save trip history: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toTripModel(t trip.Trip, position int) (*TripModel, error) {
	samplesJSON, err := json.Marshal(t.Samples)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal samples: %w", err)
	}
	conditionsJSON, err := json.Marshal(t.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conditions: %w", err)
	}
	snapshotJSON, err := json.Marshal(t.RateSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate snapshot: %w", err)
	}

	return &TripModel{
		ID:                t.ID,
		Position:          position,
		StartedAt:         t.StartedAt,
		EndedAt:           t.EndedAt,
		DistanceMeters:    t.DistanceMeters,
		DurationSeconds:   t.DurationSeconds,
		Fare:              t.Fare,
		WaitingSeconds:    t.WaitingSeconds,
		Samples:           samplesJSON,
		Conditions:        conditionsJSON,
		RateSnapshot:      snapshotJSON,
		Multiplier:        t.Multiplier,
		Name:              t.Name,
		StartLocationName: t.StartLocationName,
	}, nil
}

func toDomainTrip(m *TripModel) (trip.Trip, error) {
	var samples []trip.LocationSample
	if err := json.Unmarshal(m.Samples, &samples); err != nil {
		return trip.Trip{}, fmt.Errorf("failed to unmarshal samples: %w", err)
	}
	var conditions trip.TripConditions
	if err := json.Unmarshal(m.Conditions, &conditions); err != nil {
		return trip.Trip{}, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}
	var snapshot trip.RateSnapshot
	if err := json.Unmarshal(m.RateSnapshot, &snapshot); err != nil {
		return trip.Trip{}, fmt.Errorf("failed to unmarshal rate snapshot: %w", err)
	}

	return trip.Trip{
		ID:                m.ID,
		StartedAt:         m.StartedAt,
		EndedAt:           m.EndedAt,
		DistanceMeters:    m.DistanceMeters,
		DurationSeconds:   m.DurationSeconds,
		Fare:              m.Fare,
		WaitingSeconds:    m.WaitingSeconds,
		Samples:           samples,
		Conditions:        conditions,
		RateSnapshot:      snapshot,
		Multiplier:        m.Multiplier,
		Name:              m.Name,
		StartLocationName: m.StartLocationName,
	}, nil
}
