package normalize

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"space-explorer/internal/domain"
)

// WriteEventsCSV writes event records as CSV with a header row
func WriteEventsCSV(w io.Writer, records []domain.EventRecord) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "title", "category", "date", "lat", "lon", "source"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		date := ""
		if !r.Timestamp.IsZero() {
			date = r.Timestamp.UTC().Format(time.RFC3339)
		}
		row := []string{
			r.ID,
			r.Title,
			r.Category,
			date,
			strconv.FormatFloat(r.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Lon, 'f', -1, 64),
			r.Source,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", r.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRoverPhotosCSV writes rover photo descriptors as CSV with a header row
func WriteRoverPhotosCSV(w io.Writer, photos []domain.RoverPhoto) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "sol", "earth_date", "camera", "camera_full_name", "rover", "img_src"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range photos {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			strconv.Itoa(p.Sol),
			p.EarthDate,
			p.Camera.Name,
			p.Camera.FullName,
			p.Rover.Name,
			p.ImgSrc,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for photo %d: %w", p.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
