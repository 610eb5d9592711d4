// Package services provides business logic
package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"space-explorer/internal/cache"
	"space-explorer/internal/clients"
	"space-explorer/internal/domain"
	"space-explorer/internal/normalize"
)

// ExplorerService validates requests, consults the cache, calls the remote
// clients and hands the payloads to the normalizer.
type ExplorerService struct {
	cache       *cache.Store
	nasaClient  *clients.NasaClient
	eonetClient *clients.EonetClient
	epicArchive string
	logger      *slog.Logger
	now         func() time.Time
}

// NewExplorerService creates a new explorer service
func NewExplorerService(store *cache.Store, nasaClient *clients.NasaClient, eonetClient *clients.EonetClient, epicArchive string, logger *slog.Logger) *ExplorerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExplorerService{
		cache:       store,
		nasaClient:  nasaClient,
		eonetClient: eonetClient,
		epicArchive: epicArchive,
		logger:      logger,
		now:         time.Now,
	}
}

// cached returns the value stored under key or calls fetch and stores a successful result
func cached[T any](s *ExplorerService, key string, fetch func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			s.logger.Debug("cache hit", "source", sourceOf(key))
			return typed, nil
		}
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}
	s.cache.Write(key, v)
	return v, nil
}

func sourceOf(key string) string {
	source, _, _ := strings.Cut(key, "|")
	return source
}

// PictureOfDay fetches APOD entries
func (s *ExplorerService) PictureOfDay(ctx context.Context, credential string, query clients.ApodQuery) ([]domain.Apod, error) {
	// count asks for a random selection
	if query.Count > 0 {
		return s.nasaClient.FetchPictureOfDay(ctx, credential, query)
	}
	key := cache.Key("apod", credential, query.Date, query.StartDate, query.EndDate,
		strconv.Itoa(query.Count), strconv.FormatBool(query.Thumbs))
	return cached(s, key, func() ([]domain.Apod, error) {
		return s.nasaClient.FetchPictureOfDay(ctx, credential, query)
	})
}

// RoverPhotos fetches one page of rover photos
func (s *ExplorerService) RoverPhotos(ctx context.Context, credential string, query clients.RoverQuery) ([]domain.RoverPhoto, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	sol := ""
	if query.Sol != nil {
		sol = strconv.Itoa(*query.Sol)
	}
	key := cache.Key("rover", credential, query.Rover, sol, query.EarthDate, query.Camera, strconv.Itoa(query.Page))
	return cached(s, key, func() ([]domain.RoverPhoto, error) {
		return s.nasaClient.FetchRoverPhotos(ctx, credential, query)
	})
}

// AsteroidFeed fetches and flattens the NEO feed between two dates
func (s *ExplorerService) AsteroidFeed(ctx context.Context, credential, startDate, endDate string) (*domain.AsteroidSummary, error) {
	if err := checkDateOrder(startDate, endDate); err != nil {
		return nil, err
	}

	key := cache.Key("neo", credential, startDate, endDate)
	feed, err := cached(s, key, func() (*domain.NeoFeed, error) {
		return s.nasaClient.FetchNeoFeed(ctx, credential, startDate, endDate)
	})
	if err != nil {
		return nil, err
	}
	return normalize.NormalizeAsteroidFeed(feed)
}

// ClosestApproaches returns the n objects passing closest to Earth in the window
func (s *ExplorerService) ClosestApproaches(ctx context.Context, credential, startDate, endDate string, n int) ([]domain.AsteroidRecord, error) {
	summary, err := s.AsteroidFeed(ctx, credential, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return normalize.ClosestApproaches(summary.Records, n), nil
}

// EpicImagery fetches a day of EPIC imagery and resolves archive URLs
func (s *ExplorerService) EpicImagery(ctx context.Context, credential, date string) (*domain.EpicView, error) {
	key := cache.Key("epic", credential, date)
	images, err := cached(s, key, func() ([]domain.EpicImage, error) {
		return s.nasaClient.FetchEpicImagery(ctx, credential, date)
	})
	if err != nil {
		return nil, err
	}

	frames, err := normalize.EpicFrames(s.epicArchive, images)
	if err != nil {
		return nil, err
	}
	return &domain.EpicView{
		Date:      date,
		Frames:    frames,
		Locations: normalize.EpicLocations(images),
	}, nil
}

// EarthAssets fetches the asset metadata for a location
func (s *ExplorerService) EarthAssets(ctx context.Context, credential string, lat, lon float64, date string) (*domain.EarthAssets, error) {
	key := cache.Key("assets", credential, strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64), date)
	return cached(s, key, func() (*domain.EarthAssets, error) {
		return s.nasaClient.FetchEarthAssets(ctx, credential, lat, lon, date)
	})
}

// EarthImage fetches a Landsat tile without its asset metadata
func (s *ExplorerService) EarthImage(ctx context.Context, credential string, query domain.EarthQuery) (*domain.EarthImage, error) {
	return s.nasaClient.FetchEarthImagery(ctx, credential, query)
}

// EarthView fetches a Landsat tile and then its asset metadata. The result is
// the caller's to keep; nothing about it is retained here. A failed asset
// lookup leaves Assets nil rather than failing the view.
func (s *ExplorerService) EarthView(ctx context.Context, credential string, query domain.EarthQuery) (*domain.EarthView, error) {
	img, err := s.EarthImage(ctx, credential, query)
	if err != nil {
		return nil, err
	}

	view := &domain.EarthView{Image: img, FetchedAt: s.now().UTC()}
	assets, err := s.EarthAssets(ctx, credential, query.Lat, query.Lon, query.Date)
	if err != nil {
		s.logger.Warn("earth assets unavailable", "lat", query.Lat, "lon", query.Lon, "date", query.Date, "error", err)
		return view, nil
	}
	view.Assets = assets
	return view, nil
}

// EventsQuery selects EONET events
type EventsQuery struct {
	Limit  int
	Days   int
	Status string
	Filter normalize.EventFilter
}

// Events fetches, normalizes and filters EONET events
func (s *ExplorerService) Events(ctx context.Context, query EventsQuery) (*domain.EventsView, error) {
	payload, err := s.eonetClient.FetchEonetEvents(ctx, query.Limit, query.Days, query.Status)
	if err != nil {
		return nil, err
	}

	records := normalize.NormalizeEonetEvents(payload)
	matched := normalize.FilterEvents(records, query.Filter)
	return &domain.EventsView{
		Total:      len(records),
		Matched:    len(matched),
		Records:    matched,
		Categories: normalize.CategoryCounts(records),
	}, nil
}

func checkDateOrder(startDate, endDate string) error {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return domain.InvalidArgument("start_date", "%q is not a YYYY-MM-DD date", startDate)
	}
	end, err := time.Parse(domain.DateLayout, endDate)
	if err != nil {
		return domain.InvalidArgument("end_date", "%q is not a YYYY-MM-DD date", endDate)
	}
	if start.After(end) {
		return domain.InvalidArgument("start_date", "%s is after end_date %s", startDate, endDate)
	}
	return nil
}
