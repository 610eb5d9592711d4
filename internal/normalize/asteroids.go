package normalize

import (
	"fmt"
	"sort"

	"space-explorer/internal/domain"
)

// NormalizeAsteroidFeed flattens the per-date feed into one record per object.
// Dates are walked in ascending order so the output is deterministic.
func NormalizeAsteroidFeed(feed *domain.NeoFeed) (*domain.AsteroidSummary, error) {
	summary := &domain.AsteroidSummary{
		Records: []domain.AsteroidRecord{},
		ByDate:  []domain.DateCount{},
	}
	if feed == nil {
		return summary, nil
	}

	dates := make([]string, 0, len(feed.NearEarthObjects))
	for date := range feed.NearEarthObjects {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		objects := feed.NearEarthObjects[date]
		summary.ByDate = append(summary.ByDate, domain.DateCount{Date: date, Count: len(objects)})

		for _, obj := range objects {
			rec := domain.AsteroidRecord{
				ID:                obj.ID,
				Name:              obj.Name,
				FeedDate:          date,
				MaxDiameterMeters: obj.EstimatedDiameter.Meters.Max,
				Hazardous:         obj.Hazardous,
			}
			if len(obj.CloseApproachData) > 0 {
				approach := obj.CloseApproachData[0]
				miss := float64(approach.MissDistance.Kilometers)
				if miss < 0 {
					return nil, &domain.DecodeError{
						What: "neo feed",
						Err:  fmt.Errorf("asteroid %q has negative miss distance %v km", obj.Name, miss),
					}
				}
				rec.HasApproach = true
				rec.CloseApproachDate = approach.CloseApproachDate
				rec.MissDistanceKm = miss
			}
			if rec.Hazardous {
				summary.Hazardous++
			}
			summary.Records = append(summary.Records, rec)
		}
	}

	summary.Total = len(summary.Records)
	return summary, nil
}

// ClosestApproaches returns up to n records with the smallest miss distance.
// Ties keep input order; records without approach data are ignored.
func ClosestApproaches(records []domain.AsteroidRecord, n int) []domain.AsteroidRecord {
	if n <= 0 {
		return []domain.AsteroidRecord{}
	}

	sorted := make([]domain.AsteroidRecord, 0, len(records))
	for _, r := range records {
		if r.HasApproach {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MissDistanceKm < sorted[j].MissDistanceKm
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// LargestAsteroids returns up to n records with the largest estimated diameter
func LargestAsteroids(records []domain.AsteroidRecord, n int) []domain.AsteroidRecord {
	if n <= 0 {
		return []domain.AsteroidRecord{}
	}

	sorted := make([]domain.AsteroidRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxDiameterMeters > sorted[j].MaxDiameterMeters
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
