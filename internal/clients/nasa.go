package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strconv"
	"strings"

	"space-explorer/internal/domain"
)

// MaxEarthDim is the widest Earth imagery tile, in degrees, the client will request
const MaxEarthDim = 0.3

// NasaClient fetches data from the api.nasa.gov family of endpoints.
// Every fetch takes the caller's credential; an empty one falls back to the
// configured default key.
type NasaClient struct {
	http       *HTTPClient
	baseURL    string
	defaultKey string
}

// NewNasaClient creates a new NASA API client
func NewNasaClient(httpClient *HTTPClient, baseURL, apiKey string) *NasaClient {
	return &NasaClient{
		http:       httpClient,
		baseURL:    baseURL,
		defaultKey: apiKey,
	}
}

func (c *NasaClient) key(credential string) string {
	if credential = strings.TrimSpace(credential); credential != "" {
		return credential
	}
	return c.defaultKey
}

func (c *NasaClient) url(path, credential string, q url.Values) (string, error) {
	if q == nil {
		q = url.Values{}
	}
	if key := c.key(credential); key != "" {
		q.Set("api_key", key)
	}
	return buildURL(c.baseURL, path, q)
}

// ApodQuery selects which pictures of the day to fetch.
// At most one of Date, StartDate/EndDate and Count is meaningful; all
// supplied values are forwarded and the remote service decides precedence.
type ApodQuery struct {
	Date      string
	StartDate string
	EndDate   string
	Count     int
	Thumbs    bool
}

// FetchPictureOfDay fetches Astronomy Picture of the Day entries.
// A single-object response is returned as a one-element slice.
func (c *NasaClient) FetchPictureOfDay(ctx context.Context, credential string, query ApodQuery) ([]domain.Apod, error) {
	q := url.Values{}
	for _, p := range []struct{ field, value string }{
		{"date", query.Date},
		{"start_date", query.StartDate},
		{"end_date", query.EndDate},
	} {
		if p.value == "" {
			continue
		}
		if err := checkDate(p.field, p.value); err != nil {
			return nil, err
		}
		q.Set(p.field, p.value)
	}
	if query.Count < 0 {
		return nil, domain.InvalidArgument("count", "must not be negative")
	}
	if query.Count > 0 {
		q.Set("count", strconv.Itoa(query.Count))
	}
	if query.Thumbs {
		q.Set("thumbs", "true")
	}

	u, err := c.url("/planetary/apod", credential, q)
	if err != nil {
		return nil, err
	}
	body, _, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []domain.Apod
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &domain.DecodeError{What: "apod list", Err: err}
		}
		return items, nil
	}

	var item domain.Apod
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, &domain.DecodeError{What: "apod", Err: err}
	}
	return []domain.Apod{item}, nil
}

// RoverQuery selects rover photos. Exactly one of Sol and EarthDate must be set.
type RoverQuery struct {
	Rover     string
	Sol       *int
	EarthDate string
	Camera    string
	Page      int
}

// Validate checks the query before anything goes on the wire
func (q RoverQuery) Validate() error {
	if strings.TrimSpace(q.Rover) == "" {
		return domain.InvalidArgument("rover", "required")
	}
	switch {
	case q.Sol == nil && q.EarthDate == "":
		return domain.InvalidArgument("sol", "one of sol or earth_date is required")
	case q.Sol != nil && q.EarthDate != "":
		return domain.InvalidArgument("sol", "sol and earth_date are mutually exclusive")
	case q.Sol != nil && *q.Sol < 0:
		return domain.InvalidArgument("sol", "must not be negative")
	case q.EarthDate != "":
		if err := checkDate("earth_date", q.EarthDate); err != nil {
			return err
		}
	}
	if q.Page < 1 {
		return domain.InvalidArgument("page", "must be >= 1")
	}
	return nil
}

// FetchRoverPhotos fetches one page of Mars rover photos
func (c *NasaClient) FetchRoverPhotos(ctx context.Context, credential string, query RoverQuery) ([]domain.RoverPhoto, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	if query.Sol != nil {
		q.Set("sol", strconv.Itoa(*query.Sol))
	} else {
		q.Set("earth_date", query.EarthDate)
	}
	if camera := strings.ToLower(strings.TrimSpace(query.Camera)); camera != "" && camera != "all" {
		q.Set("camera", camera)
	}
	q.Set("page", strconv.Itoa(query.Page))

	rover := url.PathEscape(strings.ToLower(strings.TrimSpace(query.Rover)))
	u, err := c.url(fmt.Sprintf("/mars-photos/api/v1/rovers/%s/photos", rover), credential, q)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Photos []domain.RoverPhoto `json:"photos"`
	}
	if err := c.http.GetJSON(ctx, u, "rover photos", &resp); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

// FetchNeoFeed fetches Near Earth Objects between two dates.
// The caller guarantees startDate <= endDate; the client does not re-check the order.
func (c *NasaClient) FetchNeoFeed(ctx context.Context, credential, startDate, endDate string) (*domain.NeoFeed, error) {
	if err := checkDate("start_date", startDate); err != nil {
		return nil, err
	}
	if err := checkDate("end_date", endDate); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	u, err := c.url("/neo/rest/v1/feed", credential, q)
	if err != nil {
		return nil, err
	}

	var feed domain.NeoFeed
	if err := c.http.GetJSON(ctx, u, "neo feed", &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// FetchEpicImagery fetches the natural-colour EPIC image descriptors for a date
func (c *NasaClient) FetchEpicImagery(ctx context.Context, credential, date string) ([]domain.EpicImage, error) {
	if err := checkDate("date", date); err != nil {
		return nil, err
	}

	u, err := c.url("/EPIC/api/natural/date/"+date, credential, nil)
	if err != nil {
		return nil, err
	}

	var images []domain.EpicImage
	if err := c.http.GetJSON(ctx, u, "epic images", &images); err != nil {
		return nil, err
	}
	return images, nil
}

// FetchEarthImagery fetches and decodes a Landsat tile centred on lat/lon
func (c *NasaClient) FetchEarthImagery(ctx context.Context, credential string, query domain.EarthQuery) (*domain.EarthImage, error) {
	if err := checkLatLon(query.Lat, query.Lon); err != nil {
		return nil, err
	}
	if err := checkDate("date", query.Date); err != nil {
		return nil, err
	}
	// NaN fails both comparisons
	if !(query.Dim > 0 && query.Dim <= MaxEarthDim) {
		return nil, domain.InvalidArgument("dim", "%v is outside (0, %v]", query.Dim, MaxEarthDim)
	}

	q := url.Values{}
	q.Set("lon", formatFloat(query.Lon))
	q.Set("lat", formatFloat(query.Lat))
	q.Set("date", query.Date)
	q.Set("dim", formatFloat(query.Dim))
	u, err := c.url("/planetary/earth/imagery", credential, q)
	if err != nil {
		return nil, err
	}

	body, _, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, &domain.DecodeError{What: "earth imagery", Err: err}
	}

	return &domain.EarthImage{
		Image:  img,
		Raw:    body,
		Format: format,
		Params: query,
	}, nil
}

// FetchEarthAssets fetches the asset metadata for an Earth imagery location
func (c *NasaClient) FetchEarthAssets(ctx context.Context, credential string, lat, lon float64, date string) (*domain.EarthAssets, error) {
	if err := checkLatLon(lat, lon); err != nil {
		return nil, err
	}
	if err := checkDate("date", date); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("lon", formatFloat(lon))
	q.Set("lat", formatFloat(lat))
	q.Set("date", date)
	u, err := c.url("/planetary/earth/assets", credential, q)
	if err != nil {
		return nil, err
	}

	var assets domain.EarthAssets
	if err := c.http.GetJSON(ctx, u, "earth assets", &assets); err != nil {
		return nil, err
	}
	return &assets, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
