package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"space-explorer/internal/cache"
	"space-explorer/internal/clients"
	"space-explorer/internal/domain"
	"space-explorer/internal/logging"
	"space-explorer/internal/services"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Ok      bool             `json:"ok"`
	Data    json.RawMessage  `json:"data"`
	Warning string           `json:"warning"`
	Error   *domain.ApiError `json:"error"`
}

func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/mars-photos/api/v1/rovers/curiosity/photos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sol") != "1000" {
			_, _ = w.Write([]byte(`{"photos":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"photos":[{"id":7,"sol":1000,"earth_date":"2015-05-30","img_src":"http://x/7.jpg",
			"camera":{"name":"NAVCAM","full_name":"Navigation Camera"},"rover":{"name":"Curiosity","status":"active"}}]}`))
	})
	mux.HandleFunc("/neo/rest/v1/feed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"element_count":1,"near_earth_objects":{"2024-01-01":[
			{"id":"1","name":"A","is_potentially_hazardous_asteroid":true,
			 "close_approach_data":[{"close_approach_date":"2024-01-01","miss_distance":{"kilometers":"100"}}]}]}}`))
	})
	mux.HandleFunc("/EPIC/api/natural/date/2024-03-02", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"OVER_RATE_LIMIT","message":"slow down"}}`))
	})
	mux.HandleFunc("/planetary/earth/imagery", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 5, 4)))
		_, _ = w.Write(buf.Bytes())
	})
	mux.HandleFunc("/planetary/earth/assets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"LC08","date":"2024-01-01","url":"https://x"}`))
	})
	mux.HandleFunc("/eonet/events", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events":[
			{"id":"E1","title":"Fire","categories":[{"id":"wildfires","title":"Wildfires"}],
			 "geometry":[{"date":"2024-03-01T00:00:00Z","type":"Point","coordinates":[10,20]},
			             {"date":"2024-03-02T00:00:00Z","type":"Point","coordinates":[11,21]}]}]}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	server := upstream(t)
	logger := logging.NewWithWriter(&bytes.Buffer{}, "error")
	httpClient := clients.NewHTTPClient(5*time.Second, logger)
	explorer := services.NewExplorerService(
		cache.New(time.Hour),
		clients.NewNasaClient(httpClient, server.URL, "DEMO_KEY"),
		clients.NewEonetClient(httpClient, server.URL+"/eonet"),
		"https://epic.example",
		logger,
	)
	return WithCORS(NewRouter(NewHandler(explorer), logger), []string{"*"})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestRoverPhotosValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, path := range []string{
		"/mars/photos",
		"/mars/photos?sol=10&earth_date=2015-06-03",
		"/mars/photos?sol=10&page=0",
	} {
		rec := get(t, router, path)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
		if env := decode(t, rec); env.Ok || env.Error == nil || env.Error.Code != "INVALID_ARGUMENT" {
			t.Fatalf("%s: unexpected envelope %+v", path, env)
		}
	}
}

func TestRoverPhotos(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := get(t, router, "/mars/photos?sol=1000&camera=NAVCAM")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	var data struct {
		Count  int              `json:"count"`
		Rover  domain.RoverInfo `json:"rover"`
		Photos []domain.RoverPhoto
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Count != 1 || data.Rover.Name != "Curiosity" || env.Warning != "" {
		t.Fatalf("unexpected data: %+v (warning %q)", data, env.Warning)
	}

	empty := decode(t, get(t, router, "/mars/photos?sol=1"))
	if !empty.Ok || empty.Warning == "" {
		t.Fatalf("empty result should carry a warning: %+v", empty)
	}
}

func TestRoverPhotosCSV(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/mars/photos.csv?sol=1000")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="curiosity_photos.csv"` {
		t.Fatalf("unexpected disposition: %s", got)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows (%v)", len(rows), err)
	}
}

func TestConvertSol(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	env := decode(t, get(t, router, "/mars/sol?sol=10"))
	var data struct {
		Sol       int    `json:"sol"`
		EarthDate string `json:"earth_date"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.EarthDate != "2012-08-16" {
		t.Fatalf("unexpected earth date: %s", data.EarthDate)
	}

	if rec := get(t, router, "/mars/sol"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without parameters, got %d", rec.Code)
	}
}

func TestNeoFeed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := get(t, router, "/neo/feed?start_date=2024-01-01&end_date=2024-01-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.AsteroidSummary
	if err := json.Unmarshal(decode(t, rec).Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Total != 1 || summary.Hazardous != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if rec := get(t, router, "/neo/feed?start_date=2024-01-08&end_date=2024-01-01"); rec.Code != http.StatusBadRequest {
		t.Fatalf("reversed window: expected 400, got %d", rec.Code)
	}
	if rec := get(t, router, "/neo/feed?start_date=2024-01-01"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing end_date: expected 400, got %d", rec.Code)
	}

	closest := get(t, router, "/neo/closest?start_date=2024-01-01&end_date=2024-01-01&n=3")
	if closest.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", closest.Code)
	}
}

func TestRateLimitedUpstream(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/epic?date=2024-03-02")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestEarthView(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/earth/view?lat=29.78&lon=-95.33&date=2024-01-01&dim=0.2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var data earthViewResponse
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Width != 5 || data.Height != 4 || data.Format != "png" {
		t.Fatalf("unexpected image info: %+v", data)
	}
	if data.Assets == nil || data.Assets.ID != "LC08" {
		t.Fatalf("expected assets, got %+v", data.Assets)
	}
	if data.Bounds.NorthEast.Lat <= data.Bounds.SouthWest.Lat {
		t.Fatalf("unexpected bounds: %+v", data.Bounds)
	}
}

func TestEarthViewValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, path := range []string{
		"/earth/view?lon=1&date=2024-01-01",
		"/earth/view?lat=1&lon=1&date=2024-01-01&dim=0.5",
		"/earth/view?lat=1&lon=2&date=2024-01-01&dim=NaN",
		"/earth/view?lat=NaN&lon=2&date=2024-01-01",
		"/earth/imagery.png?lat=1&lon=NaN&date=2024-01-01",
		"/earth/assets?lat=NaN&lon=2&date=2024-01-01",
	} {
		if rec := get(t, router, path); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestEarthImagePNG(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/earth/imagery.png?lat=0&lon=0&date=2024-01-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Fatalf("body is not a png: %v", err)
	}
}

func TestEvents(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := get(t, router, "/eonet/events?days=10&from=2024-03-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view domain.EventsView
	if err := json.Unmarshal(decode(t, rec).Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Total != 2 || view.Matched != 1 || view.Records[0].Lat != 21 {
		t.Fatalf("unexpected view: %+v", view)
	}

	if rec := get(t, router, "/eonet/events?status=pending"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}
	if rec := get(t, router, "/eonet/events?from=March"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad from date: expected 400, got %d", rec.Code)
	}

	empty := decode(t, get(t, router, "/eonet/events?category=Floods"))
	if !empty.Ok || empty.Warning == "" {
		t.Fatalf("empty match should carry a warning: %+v", empty)
	}
}

func TestEventsCSV(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t), "/eonet/events.csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[1][6] != domain.NoSource {
		t.Fatalf("unexpected csv: %v", rows)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS header")
	}
}
