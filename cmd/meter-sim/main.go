// meter-sim replays a recorded sample log through the trip meter engine,
// stores the finished trip, and resolves its start location when a geocoding
// key is configured. It stands in for the presentation layer during
// development; the meter core itself has no CLI or network surface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/namma-mobility/service-meter/internal/application"
	"github.com/namma-mobility/service-meter/internal/config"
	"github.com/namma-mobility/service-meter/internal/domain/trip"
	"github.com/namma-mobility/service-meter/internal/geocode"
	"github.com/namma-mobility/service-meter/internal/logger"
	"github.com/namma-mobility/service-meter/internal/meter"
	"github.com/namma-mobility/service-meter/internal/repository"
)

// maxReplayGap caps the pause between replayed samples so sparse logs do not
// stall the run.
const maxReplayGap = 2 * time.Second

// replaySource feeds a recorded sample log to the engine.
type replaySource struct {
	ch chan meter.Update
}

func (r *replaySource) Updates() <-chan meter.Update {
	return r.ch
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <samples.json>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "meter-sim")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	samples, err := loadSamples(os.Args[1])
	if err != nil {
		log.Fatal("failed to load sample log", zap.Error(err))
	}
	log.Info("sample log loaded", zap.Int("samples", len(samples)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	historyRepo, err := buildHistoryRepository(cfg, log)
	if err != nil {
		log.Fatal("failed to set up trip history storage", zap.Error(err))
	}

	geocoder, err := buildGeocoder(cfg, log)
	if err != nil {
		log.Fatal("failed to set up geocoder", zap.Error(err))
	}

	history := application.NewTripHistory(ctx, historyRepo, geocoder, log, cfg.SaveDebounce)
	settings := application.NewRateSettings(ctx, repository.NewFileRateRepository(cfg.SettingsPath), log)

	source := &replaySource{ch: make(chan meter.Update)}
	engine := meter.NewEngine(source, trip.NewMeteredFareCalculator(), log)
	engine.Start(settings.Profile())

	done := make(chan struct{})
	go replay(ctx, source, samples, done)

	printTicker := time.NewTicker(time.Second)
	defer printTicker.Stop()

replayLoop:
	for {
		select {
		case <-ctx.Done():
			break replayLoop
		case <-done:
			break replayLoop
		case <-printTicker.C:
			r := engine.Snapshot()
			fmt.Printf("%s  %.0f m  %.1f km/h  ₹%.2f  waiting %s\n",
				trip.FormatElapsed(r.Elapsed),
				r.DistanceMeters,
				r.CurrentSpeedKph,
				r.Fare,
				trip.FormatElapsed(r.WaitingDuration),
			)
			if r.PositioningError != "" {
				fmt.Printf("  positioning stalled: %s\n", r.PositioningError)
			}
		}
	}

	finished, ok := engine.Stop()
	if !ok {
		log.Warn("no active trip at shutdown")
		return
	}

	history.Add(finished)
	if geocoder != nil {
		resolveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		history.ResolveStartLocation(resolveCtx, finished.ID)
		cancel()
	}

	if err := history.Close(); err != nil {
		log.Error("failed to flush trip history", zap.Error(err))
	}

	printSummary(history, finished.ID)
}

func replay(ctx context.Context, source *replaySource, samples []trip.LocationSample, done chan<- struct{}) {
	defer close(done)
	var previous *trip.LocationSample
	for i := range samples {
		s := samples[i]
		if previous != nil {
			gap := s.Timestamp.Sub(previous.Timestamp)
			if gap < 0 {
				gap = 0
			}
			if gap > maxReplayGap {
				gap = maxReplayGap
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(gap):
			}
		}
		select {
		case <-ctx.Done():
			return
		case source.ch <- meter.Update{Sample: &s}:
		}
		previous = &s
	}
}

func loadSamples(path string) ([]trip.LocationSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var samples []trip.LocationSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return samples, nil
}

func buildHistoryRepository(cfg *config.Config, log *zap.Logger) (trip.HistoryRepository, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using file trip history", zap.String("path", cfg.HistoryPath))
		return repository.NewFileTripRepository(cfg.HistoryPath), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&repository.TripModel{}); err != nil {
		return nil, fmt.Errorf("failed to run auto-migration: %w", err)
	}
	log.Info("using postgres trip history")
	return repository.NewPostgresTripRepository(db), nil
}

func buildGeocoder(cfg *config.Config, log *zap.Logger) (geocode.Geocoder, error) {
	if cfg.GoogleMapsAPIKey == "" {
		log.Info("no geocoding key configured, start locations stay unresolved")
		return nil, nil
	}

	upstream, err := geocode.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
	if err != nil {
		return nil, err
	}
	cache, err := geocode.NewCache(cfg.GeocodeCacheSize)
	if err != nil {
		return nil, err
	}
	return geocode.NewCachedGeocoder(upstream, cache, log), nil
}

func printSummary(history *application.TripHistory, id uuid.UUID) {
	stored, ok := history.Trip(id)
	if !ok {
		return
	}

	fmt.Println("--- trip summary ---")
	fmt.Printf("distance : %.0f m\n", stored.DistanceMeters)
	fmt.Printf("duration : %s\n", trip.FormatElapsed(time.Duration(stored.DurationSeconds*float64(time.Second))))
	fmt.Printf("waiting  : %s\n", trip.FormatElapsed(time.Duration(stored.WaitingSeconds*float64(time.Second))))
	fmt.Printf("fare     : ₹%.2f (x%.2f)\n", stored.Fare, stored.Multiplier)
	if stored.StartLocationName != nil {
		fmt.Printf("from     : %s\n", *stored.StartLocationName)
	}
	if region, ok := trip.BoundingRegion(stored.Samples, 0.005); ok {
		fmt.Printf("route    : center %.5f,%.5f span %.5f,%.5f\n",
			region.CenterLatitude, region.CenterLongitude,
			region.LatitudeSpan, region.LongitudeSpan,
		)
	}
}
