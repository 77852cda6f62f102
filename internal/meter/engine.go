// Package meter implements the trip meter engine: the single owner of the
// live-trip state, fed by a 1 Hz clock and a location-sample stream.
package meter

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
)

// Sample filtering thresholds. These are fixed for behavioral compatibility
// with deployed meters; do not re-derive them.
const (
	maxHorizontalAccuracyMeters = 40.0
	deadBandMeters              = 2.0
	waitingClearSpeedMPS        = 1.0
	waitingClearDeltaMeters     = 8.0
)

// DefaultTickInterval is the period of the engine's internal clock.
const DefaultTickInterval = time.Second

// Update is one event from a positioning provider: either a sample or a
// provider failure. A failed provider does not stop the trip; accumulation
// stalls until samples resume.
type Update struct {
	Sample *trip.LocationSample
	Err    error
}

// SampleSource yields a lazy, unbounded stream of positioning updates. The
// engine consumes it only while a trip is active.
type SampleSource interface {
	Updates() <-chan Update
}

// Reading is the observable projection of the live trip. It is a value
// snapshot; the live state itself is never shared by reference.
type Reading struct {
	Active           bool
	StartedAt        time.Time
	DistanceMeters   float64
	Elapsed          time.Duration
	Fare             float64
	CurrentSpeedKph  float64
	Waiting          bool
	WaitingDuration  time.Duration
	Conditions       trip.TripConditions
	Multiplier       float64
	PositioningError string
}

// Engine is the trip meter state machine. All mutation is serialized through
// a single mutex: the ticker goroutine, the sample pump, and the public
// methods never touch live state without holding it.
type Engine struct {
	source       SampleSource
	fares        trip.FareCalculator
	logger       *zap.Logger
	now          func() time.Time
	tickInterval time.Duration

	mu                 sync.Mutex
	active             bool
	startedAt          time.Time
	distanceMeters     float64
	elapsed            time.Duration
	fare               float64
	currentSpeedKph    float64
	samples            []trip.LocationSample
	lastSample         *trip.LocationSample
	waiting            bool
	waitingStartedAt   time.Time
	waitingAccumulated time.Duration
	waitingDuration    time.Duration
	conditions         trip.TripConditions
	multiplier         float64
	rates              trip.RateSnapshot
	positioningErr     string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates an engine reading from the given source. A nil source is
// allowed for callback-style providers that push samples via HandleSample.
func NewEngine(source SampleSource, fares trip.FareCalculator, logger *zap.Logger) *Engine {
	if fares == nil {
		fares = trip.NewMeteredFareCalculator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:       source,
		fares:        fares,
		logger:       logger,
		now:          time.Now,
		tickInterval: DefaultTickInterval,
		multiplier:   1,
	}
}

// Start begins a new trip under a frozen snapshot of the given rates. It is
// a no-op while a trip is already active. Driver-toggled conditions carry
// over from the previous trip; the night condition is re-derived.
func (e *Engine) Start(rates trip.RateProfile) {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}

	now := e.now()
	e.rates = trip.SnapshotOf(rates)
	e.conditions.Night = trip.IsNightHour(now)
	e.multiplier = e.conditions.Multiplier(e.rates)
	e.active = true
	e.startedAt = now
	e.distanceMeters = 0
	e.elapsed = 0
	e.currentSpeedKph = 0
	e.samples = nil
	e.lastSample = nil
	e.waiting = false
	e.waitingStartedAt = time.Time{}
	e.waitingAccumulated = 0
	e.waitingDuration = 0
	e.positioningErr = ""
	e.recalcFareLocked()
	multiplier := e.multiplier

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(2)
	go e.runTicker(ctx)
	go e.runSamplePump(ctx)
	e.mu.Unlock()

	e.logger.Info("trip started",
		zap.Time("started_at", now),
		zap.Float64("minimum_fare", rates.MinimumFare),
		zap.Float64("multiplier", multiplier),
	)
}

// Stop finalizes the active trip and returns its immutable record. The
// second return is false when no trip is active. Both event goroutines are
// halted and joined before Stop returns, so no mutation can race the
// finalized snapshot.
func (e *Engine) Stop() (trip.Trip, bool) {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return trip.Trip{}, false
	}

	now := e.now()
	e.active = false
	e.stopWaitingLocked(now)
	e.recalcFareLocked()

	start := e.startedAt
	if start.IsZero() {
		// Degenerate zero-duration trip rather than an error.
		start = now
	}
	e.elapsed = now.Sub(start)

	finished := trip.Trip{
		ID:              uuid.New(),
		StartedAt:       start,
		EndedAt:         now,
		DistanceMeters:  e.distanceMeters,
		DurationSeconds: e.elapsed.Seconds(),
		Fare:            e.fare,
		WaitingSeconds:  e.waitingDuration.Seconds(),
		Samples:         append([]trip.LocationSample(nil), e.samples...),
		Conditions:      e.conditions,
		RateSnapshot:    e.rates,
		Multiplier:      e.multiplier,
	}

	cancel := e.cancel
	e.cancel = nil
	e.samples = nil
	e.lastSample = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()

	e.logger.Info("trip finished",
		zap.String("trip_id", finished.ID.String()),
		zap.Float64("distance_meters", finished.DistanceMeters),
		zap.Float64("fare", finished.Fare),
		zap.Float64("waiting_seconds", finished.WaitingSeconds),
		zap.Int("samples", len(finished.Samples)),
	)
	return finished, true
}

// ToggleWaiting flips the driver-declared waiting state. No-op outside an
// active trip.
func (e *Engine) ToggleWaiting() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	now := e.now()
	if e.waiting {
		e.stopWaitingLocked(now)
	} else {
		e.waiting = true
		e.waitingStartedAt = now
	}
	e.recalcFareLocked()
}

// SetConditions replaces the driver-toggled conditions, recomputes the
// multiplier, and forces an immediate fare recompute. The night flag is
// engine-owned and re-derived here regardless of the passed value. Toggles
// made between trips are recorded too, so the next Start prices them in from
// its first instant; only the fare recompute needs an active trip.
func (e *Engine) SetConditions(c trip.TripConditions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c.Night = trip.IsNightHour(e.now())
	e.conditions = c
	if !e.active {
		return
	}
	e.multiplier = e.conditions.Multiplier(e.rates)
	e.recalcFareLocked()
}

// HandleSample feeds one positioning sample through the acceptance policy.
// It is the callback-style entry point; the channel pump funnels into it as
// well. Samples with accuracy outside [0, 40] m are dropped entirely.
func (e *Engine) HandleSample(s trip.LocationSample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	if s.HorizontalAccuracyMeters < 0 || s.HorizontalAccuracyMeters > maxHorizontalAccuracyMeters {
		return
	}

	e.positioningErr = ""
	e.currentSpeedKph = math.Max(s.SpeedMetersPerSecond, 0) * 3.6
	e.samples = append(e.samples, s)

	if e.lastSample != nil {
		delta := trip.HaversineMeters(
			e.lastSample.Latitude, e.lastSample.Longitude,
			s.Latitude, s.Longitude,
		)
		if e.waiting && (s.SpeedMetersPerSecond >= waitingClearSpeedMPS || delta > waitingClearDeltaMeters) {
			// Movement resumed.
			e.stopWaitingLocked(e.now())
		}
		if delta > deadBandMeters {
			e.distanceMeters += delta
		}
	}

	last := s
	e.lastSample = &last
	e.recalcFareLocked()
}

// Snapshot returns the current observable projection.
func (e *Engine) Snapshot() Reading {
	e.mu.Lock()
	defer e.mu.Unlock()

	waitingDuration := e.waitingDuration
	if e.waiting && !e.waitingStartedAt.IsZero() {
		waitingDuration = e.waitingAccumulated + e.now().Sub(e.waitingStartedAt)
	}
	return Reading{
		Active:           e.active,
		StartedAt:        e.startedAt,
		DistanceMeters:   e.distanceMeters,
		Elapsed:          e.elapsed,
		Fare:             e.fare,
		CurrentSpeedKph:  e.currentSpeedKph,
		Waiting:          e.waiting,
		WaitingDuration:  waitingDuration,
		Conditions:       e.conditions,
		Multiplier:       e.multiplier,
		PositioningError: e.positioningErr,
	}
}

func (e *Engine) runTicker(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(e.now())
		}
	}
}

func (e *Engine) runSamplePump(ctx context.Context) {
	defer e.wg.Done()
	if e.source == nil {
		return
	}
	updates := e.source.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			e.handleUpdate(u)
		}
	}
}

func (e *Engine) handleUpdate(u Update) {
	if u.Err != nil {
		e.mu.Lock()
		if e.active {
			e.positioningErr = u.Err.Error()
		}
		e.mu.Unlock()
		e.logger.Warn("positioning provider error", zap.Error(u.Err))
		return
	}
	if u.Sample != nil {
		e.HandleSample(*u.Sample)
	}
}

// tick advances the clock-driven projections: night condition, waiting
// duration, elapsed time, fare.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	e.refreshNightLocked(now)
	e.refreshWaitingLocked(now)
	e.elapsed = now.Sub(e.startedAt)
	e.recalcFareLocked()
}

func (e *Engine) refreshNightLocked(now time.Time) {
	night := trip.IsNightHour(now)
	if e.conditions.Night != night {
		e.conditions.Night = night
		e.multiplier = e.conditions.Multiplier(e.rates)
	}
}

func (e *Engine) refreshWaitingLocked(now time.Time) {
	if e.waiting && !e.waitingStartedAt.IsZero() {
		e.waitingDuration = e.waitingAccumulated + now.Sub(e.waitingStartedAt)
	} else {
		e.waitingDuration = e.waitingAccumulated
	}
}

func (e *Engine) stopWaitingLocked(now time.Time) {
	if !e.waiting {
		return
	}
	if !e.waitingStartedAt.IsZero() {
		e.waitingAccumulated += now.Sub(e.waitingStartedAt)
	}
	e.waitingStartedAt = time.Time{}
	e.waiting = false
	e.waitingDuration = e.waitingAccumulated
}

func (e *Engine) recalcFareLocked() {
	e.fare = e.fares.Calculate(trip.FareParams{
		DistanceMeters: e.distanceMeters,
		WaitingSeconds: e.waitingDuration.Seconds(),
		Multiplier:     e.multiplier,
		Rates:          e.rates,
	})
}
