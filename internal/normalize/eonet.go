// Package normalize reshapes decoded API payloads into flat records for
// charts, maps and tables. Everything here is pure: no I/O, no clocks.
package normalize

import (
	"encoding/json"
	"sort"
	"time"

	"space-explorer/internal/domain"
)

const pointGeometry = "Point"

// NormalizeEonetEvents emits one record per (event, point geometry) pair.
// Non-point geometries and points with unusable coordinates are skipped.
func NormalizeEonetEvents(payload *domain.EonetPayload) []domain.EventRecord {
	if payload == nil {
		return nil
	}

	var records []domain.EventRecord
	for _, event := range payload.Events {
		category := eventCategory(event)
		source := eventSource(event)

		for _, g := range event.Geometry {
			if g.Type != pointGeometry {
				continue
			}
			lat, lon, ok := pointCoordinates(g.Coordinates)
			if !ok {
				continue
			}
			ts, _ := time.Parse(time.RFC3339, g.Date)
			records = append(records, domain.EventRecord{
				ID:        event.ID,
				Title:     event.Title,
				Category:  category,
				Timestamp: ts,
				Lat:       lat,
				Lon:       lon,
				Source:    source,
			})
		}
	}
	return records
}

func eventCategory(event domain.EonetEvent) string {
	if len(event.Categories) == 0 || event.Categories[0].Title == "" {
		return domain.UncategorizedEvent
	}
	return event.Categories[0].Title
}

func eventSource(event domain.EonetEvent) string {
	if len(event.Sources) == 0 || event.Sources[0].URL == "" {
		return domain.NoSource
	}
	return event.Sources[0].URL
}

// pointCoordinates reads GeoJSON [lon, lat] and returns (lat, lon)
func pointCoordinates(raw json.RawMessage) (float64, float64, bool) {
	var coords []float64
	if err := json.Unmarshal(raw, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	lat, lon := coords[1], coords[0]
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// EventFilter narrows event records. Zero values mean "no constraint";
// From and To are inclusive calendar days.
type EventFilter struct {
	Categories []string
	From       time.Time
	To         time.Time
}

// FilterEvents returns the records matching the filter, in input order
func FilterEvents(records []domain.EventRecord, f EventFilter) []domain.EventRecord {
	wanted := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		wanted[c] = struct{}{}
	}
	var until time.Time
	if !f.To.IsZero() {
		until = f.To.AddDate(0, 0, 1)
	}

	out := make([]domain.EventRecord, 0, len(records))
	for _, r := range records {
		if len(wanted) > 0 {
			if _, ok := wanted[r.Category]; !ok {
				continue
			}
		}
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			continue
		}
		if !until.IsZero() && !r.Timestamp.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CategoryCounts tallies records per category, largest first
func CategoryCounts(records []domain.EventRecord) []domain.CategoryCount {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Category]++
	}

	out := make([]domain.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, domain.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
