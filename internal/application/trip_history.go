package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namma-mobility/service-meter/internal/domain/trip"
	"github.com/namma-mobility/service-meter/internal/geocode"
)

// DefaultSaveDebounce coalesces rapid mutations into a single persistence
// write.
const DefaultSaveDebounce = 500 * time.Millisecond

// TripHistory owns the ordered list of finished trips, most recent first.
// The in-memory list is the source of truth; every mutation schedules a
// debounced background write of the settled state, and a new write
// supersedes any still in flight.
type TripHistory struct {
	repo     trip.HistoryRepository
	geocoder geocode.Geocoder
	logger   *zap.Logger
	debounce time.Duration

	mu         sync.Mutex
	trips      []trip.Trip
	loaded     bool
	closed     bool
	dirty      bool
	saveTimer  *time.Timer
	saveCancel context.CancelFunc
	saveErr    error
	resolving  map[uuid.UUID]bool

	saveWG sync.WaitGroup
}

// NewTripHistory creates the history service and performs the one-time load.
// Saves are suppressed until that load completes so an empty default can
// never clobber an existing store. A load failure is logged and the service
// starts empty. geocoder may be nil when no provider is configured.
func NewTripHistory(
	ctx context.Context,
	repo trip.HistoryRepository,
	geocoder geocode.Geocoder,
	logger *zap.Logger,
	debounce time.Duration,
) *TripHistory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	h := &TripHistory{
		repo:      repo,
		geocoder:  geocoder,
		logger:    logger,
		debounce:  debounce,
		resolving: make(map[uuid.UUID]bool),
	}

	trips, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("failed to load trip history", zap.Error(err))
	} else {
		h.trips = trips
	}
	h.loaded = true
	return h
}

// Add prepends a finished trip to the history.
func (h *TripHistory) Add(t trip.Trip) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trips = append([]trip.Trip{t}, h.trips...)
	h.scheduleSaveLocked()
}

// Delete removes the trips with the given ids. Unknown ids are ignored.
func (h *TripHistory) Delete(ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.trips[:0]
	for _, t := range h.trips {
		if !wanted[t.ID] {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(h.trips) {
		return
	}
	h.trips = kept
	h.scheduleSaveLocked()
}

// DeleteAt removes the trips at the given offsets into the ordered history.
// Out-of-range offsets are ignored.
func (h *TripHistory) DeleteAt(offsets ...int) {
	if len(offsets) == 0 {
		return
	}
	sorted := append([]int(nil), offsets...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	h.mu.Lock()
	defer h.mu.Unlock()
	changed := false
	for _, offset := range sorted {
		if offset < 0 || offset >= len(h.trips) {
			continue
		}
		h.trips = append(h.trips[:offset], h.trips[offset+1:]...)
		changed = true
	}
	if changed {
		h.scheduleSaveLocked()
	}
}

// DeleteAll clears the history.
func (h *TripHistory) DeleteAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.trips) == 0 {
		return
	}
	h.trips = nil
	h.scheduleSaveLocked()
}

// Update looks a trip up by id and applies an in-place mutation to it. It
// returns false (and schedules nothing) when the id is unknown.
func (h *TripHistory) Update(id uuid.UUID, mutate func(*trip.Trip)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.trips {
		if h.trips[i].ID == id {
			updated := h.trips[i]
			mutate(&updated)
			h.trips[i] = updated
			h.scheduleSaveLocked()
			return true
		}
	}
	return false
}

// Rename sets a trip's user-visible name.
func (h *TripHistory) Rename(id uuid.UUID, name string) bool {
	return h.Update(id, func(t *trip.Trip) {
		t.Name = &name
	})
}

// Trip returns the trip with the given id.
func (h *TripHistory) Trip(id uuid.UUID) (trip.Trip, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.trips {
		if t.ID == id {
			return t, true
		}
	}
	return trip.Trip{}, false
}

// Trips returns a snapshot of the ordered history.
func (h *TripHistory) Trips() []trip.Trip {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]trip.Trip(nil), h.trips...)
}

// SaveErr returns the error from the most recent persistence write, nil when
// the last write succeeded. In-memory state is never rolled back on write
// failure.
func (h *TripHistory) SaveErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saveErr
}

// ResolveStartLocation fills in the trip's start-location name through the
// geocoder. It is idempotent: a trip that already has a name, has no
// samples, or is mid-resolution causes no lookup and no mutation. Intended
// to run on a background goroutine; cancelling ctx mid-flight applies no
// partial update.
func (h *TripHistory) ResolveStartLocation(ctx context.Context, id uuid.UUID) {
	if h.geocoder == nil {
		return
	}

	h.mu.Lock()
	var first trip.LocationSample
	found := false
	for _, t := range h.trips {
		if t.ID == id {
			if t.StartLocationName != nil || len(t.Samples) == 0 || h.resolving[id] {
				h.mu.Unlock()
				return
			}
			first = t.Samples[0]
			found = true
			break
		}
	}
	if !found {
		h.mu.Unlock()
		return
	}
	h.resolving[id] = true
	h.mu.Unlock()

	name, err := h.geocoder.ReverseGeocode(ctx, first.Latitude, first.Longitude)

	h.mu.Lock()
	delete(h.resolving, id)
	h.mu.Unlock()

	if err != nil {
		// Silent and retryable on next access.
		h.logger.Debug("reverse geocoding failed", zap.String("trip_id", id.String()), zap.Error(err))
		return
	}
	if name == "" || ctx.Err() != nil {
		return
	}
	h.Update(id, func(t *trip.Trip) {
		t.StartLocationName = &name
	})
}

// Close stops the debounce timer, waits out any in-flight write, and flushes
// the settled state synchronously when it is not yet durable. A write that
// Close itself cancelled counts as not durable, so the state still lands.
func (h *TripHistory) Close() error {
	h.mu.Lock()
	h.closed = true
	if h.saveTimer != nil {
		h.saveTimer.Stop()
		h.saveTimer = nil
	}
	if h.saveCancel != nil {
		h.saveCancel()
		h.saveCancel = nil
	}
	h.mu.Unlock()

	h.saveWG.Wait()

	h.mu.Lock()
	dirty := h.dirty
	h.dirty = false
	snapshot := append([]trip.Trip(nil), h.trips...)
	h.mu.Unlock()

	if !dirty {
		return nil
	}
	if err := h.repo.Save(context.Background(), snapshot); err != nil {
		h.logger.Warn("failed to persist trip history on close", zap.Error(err))
		return err
	}
	return nil
}

// scheduleSaveLocked arms (or re-arms) the debounce timer. Callers hold mu.
func (h *TripHistory) scheduleSaveLocked() {
	if !h.loaded {
		return
	}
	h.dirty = true
	if h.saveTimer != nil {
		h.saveTimer.Stop()
	}
	h.saveTimer = time.AfterFunc(h.debounce, h.flush)
}

// flush snapshots the current state and writes it in the background,
// cancelling any write still in flight so only the settled state lands.
func (h *TripHistory) flush() {
	h.mu.Lock()
	if h.closed {
		// Close owns the final write from here on.
		h.mu.Unlock()
		return
	}
	if h.saveCancel != nil {
		h.saveCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.saveCancel = cancel
	h.dirty = false
	snapshot := append([]trip.Trip(nil), h.trips...)
	h.saveWG.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.saveWG.Done()
		err := h.repo.Save(ctx, snapshot)

		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			// The state is still not durable, whether the write failed or
			// was cancelled; Close re-checks this flag after joining us.
			h.dirty = true
			if ctx.Err() == nil {
				h.saveErr = err
				h.logger.Warn("failed to persist trip history", zap.Error(err))
			}
			return
		}
		h.saveErr = nil
	}()
}
