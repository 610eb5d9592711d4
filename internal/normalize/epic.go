package normalize

import (
	"fmt"
	"strings"
	"time"

	"space-explorer/internal/domain"
)

// EpicImageURL builds the archive URL of a natural-colour EPIC image:
// {base}/archive/natural/{yyyy}/{mm}/{dd}/png/{imageID}.png
func EpicImageURL(archiveBase string, date time.Time, imageID string) string {
	return fmt.Sprintf("%s/archive/natural/%s/png/%s.png",
		strings.TrimRight(archiveBase, "/"), date.Format("2006/01/02"), imageID)
}

// EpicFrames resolves every descriptor to its archive URL using its own capture date
func EpicFrames(archiveBase string, images []domain.EpicImage) ([]domain.EpicFrame, error) {
	frames := make([]domain.EpicFrame, 0, len(images))
	for _, img := range images {
		at, err := img.CapturedAt()
		if err != nil {
			return nil, &domain.DecodeError{What: "epic capture date", Err: err}
		}
		frames = append(frames, domain.EpicFrame{
			EpicImage: img,
			ImageURL:  EpicImageURL(archiveBase, at, img.Image),
		})
	}
	return frames, nil
}

// EpicLocations returns the centroid of every image, for plotting on a globe
func EpicLocations(images []domain.EpicImage) []domain.GeoPoint {
	points := make([]domain.GeoPoint, 0, len(images))
	for _, img := range images {
		points = append(points, domain.GeoPoint{Lat: img.Centroid.Lat, Lon: img.Centroid.Lon})
	}
	return points
}
