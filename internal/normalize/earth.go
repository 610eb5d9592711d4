package normalize

import (
	"bytes"
	"errors"
	"image/png"

	"space-explorer/internal/domain"
)

// kmPerDegree is the rough length of one degree of latitude
const kmPerDegree = 111.0

// ApproxCoverageKm is the approximate side length of a tile dim degrees wide
func ApproxCoverageKm(dim float64) float64 {
	return dim * kmPerDegree
}

// OverlayBounds is the box a tile centred on lat/lon covers on a map
func OverlayBounds(lat, lon, dim float64) domain.Bounds {
	half := dim / 2
	return domain.Bounds{
		SouthWest: domain.GeoPoint{Lat: lat - half, Lon: lon - half},
		NorthEast: domain.GeoPoint{Lat: lat + half, Lon: lon + half},
	}
}

// PNGBytes returns the tile as PNG, re-encoding when upstream sent another format
func PNGBytes(img *domain.EarthImage) ([]byte, error) {
	if img == nil || img.Image == nil {
		return nil, errors.New("no earth image")
	}
	if img.Format == "png" && len(img.Raw) > 0 {
		return img.Raw, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
