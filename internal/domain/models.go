// Package domain provides domain models for the application
package domain

import (
	"encoding/json"
	"image"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format every NASA endpoint accepts
const DateLayout = "2006-01-02"

// Apod represents one Astronomy Picture of the Day entry
type Apod struct {
	Date           string `json:"date"`
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	Copyright      string `json:"copyright,omitempty"`
	ThumbnailURL   string `json:"thumbnail_url,omitempty"`
	ServiceVersion string `json:"service_version,omitempty"`
}

// DisplayURL prefers the HD image and falls back to the regular one
func (a Apod) DisplayURL() string {
	if a.HDURL != "" {
		return a.HDURL
	}
	if a.URL != "" {
		return a.URL
	}
	return "Image URL not available"
}

// TitleOrDefault returns the title or a placeholder
func (a Apod) TitleOrDefault() string {
	if a.Title == "" {
		return "Title not available"
	}
	return a.Title
}

// ExplanationOrDefault returns the explanation or a placeholder
func (a Apod) ExplanationOrDefault() string {
	if a.Explanation == "" {
		return "Explanation not available"
	}
	return a.Explanation
}

// MediaTypeOrDefault returns "image", "video" or "unknown"
func (a Apod) MediaTypeOrDefault() string {
	if a.MediaType == "" {
		return "unknown"
	}
	return a.MediaType
}

// RoverCamera describes the camera that took a rover photo
type RoverCamera struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// RoverInfo is the rover metadata echoed with every photo
type RoverInfo struct {
	Name        string `json:"name"`
	LandingDate string `json:"landing_date"`
	LaunchDate  string `json:"launch_date"`
	Status      string `json:"status"`
}

// RoverPhoto represents a Mars rover photo descriptor
type RoverPhoto struct {
	ID        int64       `json:"id"`
	Sol       int         `json:"sol"`
	EarthDate string      `json:"earth_date"`
	ImgSrc    string      `json:"img_src"`
	Camera    RoverCamera `json:"camera"`
	Rover     RoverInfo   `json:"rover"`
}

// FloatString decodes numbers that the NEO feed sends as JSON strings
type FloatString float64

// UnmarshalJSON accepts both "123.4" and 123.4
func (f *FloatString) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FloatString(v)
	return nil
}

// DiameterRange is an estimated diameter band
type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// EstimatedDiameter holds the diameter bands the application uses
type EstimatedDiameter struct {
	Meters DiameterRange `json:"meters"`
}

// MissDistance is the distance of a close approach
type MissDistance struct {
	Kilometers FloatString `json:"kilometers"`
}

// CloseApproach is one close approach of a near-Earth object
type CloseApproach struct {
	CloseApproachDate string       `json:"close_approach_date"`
	MissDistance      MissDistance `json:"miss_distance"`
}

// NeoObject represents one asteroid in the NEO feed
type NeoObject struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Hazardous         bool              `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter EstimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []CloseApproach   `json:"close_approach_data"`
}

// NeoFeed is the NeoWs feed response, keyed by calendar date
type NeoFeed struct {
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]NeoObject `json:"near_earth_objects"`
}

// Centroid is the latitude/longitude an EPIC image is centred on
type Centroid struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EpicImage represents an EPIC image descriptor
type EpicImage struct {
	Identifier string   `json:"identifier"`
	Caption    string   `json:"caption"`
	Image      string   `json:"image"`
	Date       string   `json:"date"`
	Centroid   Centroid `json:"centroid_coordinates"`
}

// EpicTimestampLayout is the capture timestamp format used by EPIC
const EpicTimestampLayout = "2006-01-02 15:04:05"

// CapturedAt parses the capture timestamp
func (e EpicImage) CapturedAt() (time.Time, error) {
	return time.Parse(EpicTimestampLayout, e.Date)
}

// EpicFrame is an EPIC descriptor resolved to its archive URL
type EpicFrame struct {
	EpicImage
	ImageURL string `json:"image_url"`
}

// EpicView is a day of EPIC imagery ready for a gallery and a globe
type EpicView struct {
	Date      string      `json:"date"`
	Frames    []EpicFrame `json:"frames"`
	Locations []GeoPoint  `json:"locations"`
}

// AssetResource names the dataset an Earth asset belongs to
type AssetResource struct {
	Dataset string `json:"dataset"`
	Planet  string `json:"planet"`
}

// EarthAssets is the metadata returned for an Earth imagery location
type EarthAssets struct {
	ID             string        `json:"id"`
	Date           string        `json:"date"`
	URL            string        `json:"url"`
	ServiceVersion string        `json:"service_version"`
	Resource       AssetResource `json:"resource"`
}

// EarthQuery echoes the parameters of an Earth imagery request
type EarthQuery struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Date string  `json:"date"`
	Dim  float64 `json:"dim"`
}

// EarthImage is a decoded Landsat raster plus the request that produced it
type EarthImage struct {
	Image  image.Image `json:"-"`
	Raw    []byte      `json:"-"`
	Format string      `json:"format"`
	Params EarthQuery  `json:"params"`
}

// Size returns the raster dimensions in pixels
func (e *EarthImage) Size() (int, int) {
	if e == nil || e.Image == nil {
		return 0, 0
	}
	b := e.Image.Bounds()
	return b.Dx(), b.Dy()
}

// EarthView is the caller-held state of the last successful Earth imagery fetch
type EarthView struct {
	Image     *EarthImage  `json:"image"`
	Assets    *EarthAssets `json:"assets,omitempty"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// EonetCategory is an EONET event category
type EonetCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EonetSource links an event to an upstream report
type EonetSource struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// EonetGeometry is one time-stamped observation of an event.
// Coordinates stay raw because their shape depends on Type.
type EonetGeometry struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// EonetEvent represents a natural event
type EonetEvent struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Categories []EonetCategory `json:"categories"`
	Sources    []EonetSource   `json:"sources"`
	Geometry   []EonetGeometry `json:"geometry"`
}

// EonetPayload is the EONET v3 events response
type EonetPayload struct {
	Title  string       `json:"title"`
	Events []EonetEvent `json:"events"`
}

// AsteroidRecord is a flattened NEO row
type AsteroidRecord struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	FeedDate          string  `json:"feed_date"`
	MaxDiameterMeters float64 `json:"max_diameter_m"`
	Hazardous         bool    `json:"hazardous"`
	HasApproach       bool    `json:"has_approach"`
	CloseApproachDate string  `json:"close_approach_date,omitempty"`
	MissDistanceKm    float64 `json:"miss_distance_km"`
}

// DateCount is the number of objects in the feed for one date
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AsteroidSummary is the normalized NEO feed
type AsteroidSummary struct {
	Records   []AsteroidRecord `json:"records"`
	Total     int              `json:"total"`
	Hazardous int              `json:"hazardous"`
	ByDate    []DateCount      `json:"by_date"`
}

// UncategorizedEvent is used when an event carries no category
const UncategorizedEvent = "Uncategorized"

// NoSource is used when an event carries no source link
const NoSource = "N/A"

// EventRecord is one point observation of an EONET event
type EventRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"date"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Source    string    `json:"source"`
}

// CategoryCount is the number of records in one category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// EventsView is a normalized EONET result. Total and Categories cover every
// record; Matched and Records only those that passed the filter.
type EventsView struct {
	Total      int             `json:"total"`
	Matched    int             `json:"matched"`
	Records    []EventRecord   `json:"records"`
	Categories []CategoryCount `json:"categories"`
}

// GeoPoint is a plain latitude/longitude pair
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a south-west / north-east box
type Bounds struct {
	SouthWest GeoPoint `json:"south_west"`
	NorthEast GeoPoint `json:"north_east"`
}

// Health represents health check response
type Health struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

// ApiResponse wraps API responses
type ApiResponse struct {
	Ok      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   *ApiError   `json:"error,omitempty"`
}

// ApiError represents an error response
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data interface{}) ApiResponse {
	return ApiResponse{Ok: true, Data: data}
}

// WarningResponse creates a successful response that carries a warning, used for empty results
func WarningResponse(data interface{}, warning string) ApiResponse {
	return ApiResponse{Ok: true, Data: data, Warning: warning}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message string) ApiResponse {
	return ApiResponse{Ok: false, Error: &ApiError{Code: code, Message: message}}
}
