// Package handlers provides HTTP request handlers
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"space-explorer/internal/clients"
	"space-explorer/internal/domain"
	"space-explorer/internal/normalize"
	"space-explorer/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler holds all service dependencies
type Handler struct {
	Explorer *services.ExplorerService
}

// NewHandler creates a new handler with services
func NewHandler(explorer *services.ExplorerService) *Handler {
	return &Handler{Explorer: explorer}
}

// credential returns the caller's API key; empty lets the client fall back to the default
func credential(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key
	}
	return strings.TrimSpace(c.Query("api_key"))
}

// writeError maps the error taxonomy onto HTTP statuses and the response envelope
func writeError(c *gin.Context, err error) {
	var remote *domain.RemoteError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, domain.ErrorResponse("INVALID_ARGUMENT", err.Error()))
	case errors.As(err, &remote) && remote.StatusCode == http.StatusTooManyRequests:
		c.JSON(http.StatusTooManyRequests, domain.ErrorResponse("RATE_LIMITED", err.Error()))
	case errors.Is(err, domain.ErrRemote):
		c.JSON(http.StatusBadGateway, domain.ErrorResponse("REMOTE_ERROR", err.Error()))
	case errors.Is(err, domain.ErrDecode):
		c.JSON(http.StatusBadGateway, domain.ErrorResponse("DECODE_ERROR", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse("INTERNAL", err.Error()))
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, domain.ErrorResponse("INVALID_ARGUMENT", err.Error()))
}

func respond(c *gin.Context, data interface{}, empty bool, warning string) {
	if empty {
		c.JSON(http.StatusOK, domain.WarningResponse(data, warning))
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(data))
}

// Health handles health check requests
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Health{
		Status: "ok",
		Now:    time.Now().UTC(),
	})
}

type apodParams struct {
	Date      string `form:"date"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Count     int    `form:"count" binding:"omitempty,min=1,max=100"`
	Thumbs    bool   `form:"thumbs"`
}

// GetApod handles Astronomy Picture of the Day requests
func (h *Handler) GetApod(c *gin.Context) {
	var p apodParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	items, err := h.Explorer.PictureOfDay(c.Request.Context(), credential(c), clients.ApodQuery{
		Date:      p.Date,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Count:     p.Count,
		Thumbs:    p.Thumbs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, gin.H{"items": items}, len(items) == 0, "no pictures for the selected dates")
}

type roverParams struct {
	Rover     string `form:"rover,default=curiosity"`
	Sol       *int   `form:"sol"`
	EarthDate string `form:"earth_date"`
	Camera    string `form:"camera"`
	Page      int    `form:"page,default=1"`
}

func (p roverParams) query() clients.RoverQuery {
	return clients.RoverQuery{
		Rover:     p.Rover,
		Sol:       p.Sol,
		EarthDate: p.EarthDate,
		Camera:    p.Camera,
		Page:      p.Page,
	}
}

// ListCameras handles requests for the Curiosity camera list
func (h *Handler) ListCameras(c *gin.Context) {
	c.JSON(http.StatusOK, domain.SuccessResponse(gin.H{"cameras": clients.CuriosityCameras()}))
}

// GetRoverPhotos handles Mars rover photo requests
func (h *Handler) GetRoverPhotos(c *gin.Context) {
	var p roverParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	photos, err := h.Explorer.RoverPhotos(c.Request.Context(), credential(c), p.query())
	if err != nil {
		writeError(c, err)
		return
	}

	data := gin.H{"count": len(photos), "photos": photos}
	if len(photos) > 0 {
		data["rover"] = photos[0].Rover
	}
	respond(c, data, len(photos) == 0, "no photos available for the selected criteria, try different parameters")
}

// ExportRoverPhotos handles CSV downloads of rover photos
func (h *Handler) ExportRoverPhotos(c *gin.Context) {
	var p roverParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	photos, err := h.Explorer.RoverPhotos(c.Request.Context(), credential(c), p.query())
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := normalize.WriteRoverPhotosCSV(&buf, photos); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("%s_photos.csv", strings.ToLower(p.Rover)), "text/csv", buf.Bytes())
}

type solParams struct {
	Sol       *int   `form:"sol" binding:"omitempty,min=0"`
	EarthDate string `form:"earth_date"`
}

// ConvertSol handles approximate sol / Earth date conversion for Curiosity
func (h *Handler) ConvertSol(c *gin.Context) {
	var p solParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	switch {
	case p.Sol != nil && p.EarthDate == "":
		c.JSON(http.StatusOK, domain.SuccessResponse(gin.H{
			"sol":        *p.Sol,
			"earth_date": clients.ApproxEarthDate(*p.Sol),
		}))
	case p.Sol == nil && p.EarthDate != "":
		sol, err := clients.ApproxSol(p.EarthDate)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, domain.SuccessResponse(gin.H{
			"sol":        sol,
			"earth_date": p.EarthDate,
		}))
	default:
		writeError(c, domain.InvalidArgument("sol", "exactly one of sol or earth_date is required"))
	}
}

type neoParams struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	N         int    `form:"n,default=5" binding:"min=1,max=100"`
}

// GetNeoFeed handles NEO feed summary requests
func (h *Handler) GetNeoFeed(c *gin.Context) {
	var p neoParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	summary, err := h.Explorer.AsteroidFeed(c.Request.Context(), credential(c), p.StartDate, p.EndDate)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, summary, summary.Total == 0, "no near-Earth objects in the selected window")
}

// GetClosestApproaches handles requests for the closest NEO approaches
func (h *Handler) GetClosestApproaches(c *gin.Context) {
	var p neoParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	records, err := h.Explorer.ClosestApproaches(c.Request.Context(), credential(c), p.StartDate, p.EndDate, p.N)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, gin.H{"records": records}, len(records) == 0, "no close approaches in the selected window")
}

type epicParams struct {
	Date string `form:"date" binding:"required"`
}

// GetEpic handles EPIC imagery requests
func (h *Handler) GetEpic(c *gin.Context) {
	var p epicParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.Explorer.EpicImagery(c.Request.Context(), credential(c), p.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, view, len(view.Frames) == 0, fmt.Sprintf("no EPIC images available for %s", p.Date))
}

type earthParams struct {
	Lat  *float64 `form:"lat" binding:"required"`
	Lon  *float64 `form:"lon" binding:"required"`
	Date string   `form:"date" binding:"required"`
	Dim  float64  `form:"dim,default=0.15"`
}

func (p earthParams) query() domain.EarthQuery {
	return domain.EarthQuery{Lat: *p.Lat, Lon: *p.Lon, Date: p.Date, Dim: p.Dim}
}

type earthViewResponse struct {
	Params     domain.EarthQuery   `json:"params"`
	Format     string              `json:"format"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	CoverageKm float64             `json:"coverage_km"`
	Bounds     domain.Bounds       `json:"bounds"`
	Assets     *domain.EarthAssets `json:"assets,omitempty"`
	FetchedAt  time.Time           `json:"fetched_at"`
}

// GetEarthView handles Earth imagery metadata requests: size, coverage, overlay bounds and assets
func (h *Handler) GetEarthView(c *gin.Context) {
	var p earthParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	q := p.query()
	view, err := h.Explorer.EarthView(c.Request.Context(), credential(c), q)
	if err != nil {
		writeError(c, err)
		return
	}

	width, height := view.Image.Size()
	c.JSON(http.StatusOK, domain.SuccessResponse(earthViewResponse{
		Params:     view.Image.Params,
		Format:     view.Image.Format,
		Width:      width,
		Height:     height,
		CoverageKm: normalize.ApproxCoverageKm(q.Dim),
		Bounds:     normalize.OverlayBounds(q.Lat, q.Lon, q.Dim),
		Assets:     view.Assets,
		FetchedAt:  view.FetchedAt,
	}))
}

// GetEarthImage handles Earth imagery downloads as PNG
func (h *Handler) GetEarthImage(c *gin.Context) {
	var p earthParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	img, err := h.Explorer.EarthImage(c.Request.Context(), credential(c), p.query())
	if err != nil {
		writeError(c, err)
		return
	}

	data, err := normalize.PNGBytes(img)
	if err != nil {
		writeError(c, err)
		return
	}
	attachment(c, "earth_imagery.png", "image/png", data)
}

type assetParams struct {
	Lat  *float64 `form:"lat" binding:"required"`
	Lon  *float64 `form:"lon" binding:"required"`
	Date string   `form:"date" binding:"required"`
}

// GetEarthAssets handles Earth asset metadata requests
func (h *Handler) GetEarthAssets(c *gin.Context) {
	var p assetParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return
	}

	assets, err := h.Explorer.EarthAssets(c.Request.Context(), credential(c), *p.Lat, *p.Lon, p.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(assets))
}

type eventParams struct {
	Limit      int      `form:"limit,default=500"`
	Days       int      `form:"days,default=30"`
	Status     string   `form:"status,default=all"`
	Categories []string `form:"category"`
	From       string   `form:"from"`
	To         string   `form:"to"`
}

func (p eventParams) query() (services.EventsQuery, error) {
	filter := normalize.EventFilter{Categories: p.Categories}
	if p.From != "" {
		from, err := time.Parse(domain.DateLayout, p.From)
		if err != nil {
			return services.EventsQuery{}, domain.InvalidArgument("from", "%q is not a YYYY-MM-DD date", p.From)
		}
		filter.From = from
	}
	if p.To != "" {
		to, err := time.Parse(domain.DateLayout, p.To)
		if err != nil {
			return services.EventsQuery{}, domain.InvalidArgument("to", "%q is not a YYYY-MM-DD date", p.To)
		}
		filter.To = to
	}
	return services.EventsQuery{Limit: p.Limit, Days: p.Days, Status: p.Status, Filter: filter}, nil
}

func (h *Handler) events(c *gin.Context) (*domain.EventsView, bool) {
	var p eventParams
	if err := c.ShouldBindQuery(&p); err != nil {
		bindError(c, err)
		return nil, false
	}
	q, err := p.query()
	if err != nil {
		writeError(c, err)
		return nil, false
	}

	view, err := h.Explorer.Events(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return view, true
}

// GetEvents handles EONET event requests
func (h *Handler) GetEvents(c *gin.Context) {
	view, ok := h.events(c)
	if !ok {
		return
	}
	respond(c, view, view.Matched == 0, "no events found for the specified criteria")
}

// ExportEvents handles CSV downloads of filtered EONET events
func (h *Handler) ExportEvents(c *gin.Context) {
	view, ok := h.events(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := normalize.WriteEventsCSV(&buf, view.Records); err != nil {
		writeError(c, err)
		return
	}
	attachment(c, "eonet_events_filtered.csv", "text/csv", buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// SetupRoutes configures all routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", h.Health)

	// APOD
	r.GET("/apod", h.GetApod)

	// Mars rover
	r.GET("/mars/cameras", h.ListCameras)
	r.GET("/mars/photos", h.GetRoverPhotos)
	r.GET("/mars/photos.csv", h.ExportRoverPhotos)
	r.GET("/mars/sol", h.ConvertSol)

	// Near-Earth objects
	r.GET("/neo/feed", h.GetNeoFeed)
	r.GET("/neo/closest", h.GetClosestApproaches)

	// EPIC
	r.GET("/epic", h.GetEpic)

	// Earth imagery
	r.GET("/earth/view", h.GetEarthView)
	r.GET("/earth/imagery.png", h.GetEarthImage)
	r.GET("/earth/assets", h.GetEarthAssets)

	// EONET
	r.GET("/eonet/events", h.GetEvents)
	r.GET("/eonet/events.csv", h.ExportEvents)
}
