package clients

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"space-explorer/internal/domain"
)

// EonetStatuses lists the event status filters EONET accepts
var EonetStatuses = []string{"all", "open", "closed"}

// EonetClient fetches natural events from EONET. EONET needs no API key.
type EonetClient struct {
	http    *HTTPClient
	baseURL string
	now     func() time.Time
}

// NewEonetClient creates a new EONET client
func NewEonetClient(httpClient *HTTPClient, baseURL string) *EonetClient {
	return &EonetClient{
		http:    httpClient,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// EventWindow returns the [now - lookbackDays, now] window in UTC dates
func EventWindow(now time.Time, lookbackDays int) (string, string) {
	end := now.UTC()
	start := end.AddDate(0, 0, -lookbackDays)
	return start.Format(domain.DateLayout), end.Format(domain.DateLayout)
}

// FetchEonetEvents fetches events observed in the last lookbackDays days
func (c *EonetClient) FetchEonetEvents(ctx context.Context, limit, lookbackDays int, status string) (*domain.EonetPayload, error) {
	if limit <= 0 {
		return nil, domain.InvalidArgument("limit", "must be > 0")
	}
	if lookbackDays <= 0 {
		return nil, domain.InvalidArgument("days", "must be > 0")
	}
	if !validStatus(status) {
		return nil, domain.InvalidArgument("status", "%q is not one of all, open, closed", status)
	}

	start, end := EventWindow(c.now(), lookbackDays)
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("start", start)
	q.Set("end", end)
	q.Set("status", status)
	u, err := buildURL(c.baseURL, "/events", q)
	if err != nil {
		return nil, err
	}

	var payload domain.EonetPayload
	if err := c.http.GetJSON(ctx, u, "eonet events", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func validStatus(status string) bool {
	for _, s := range EonetStatuses {
		if s == status {
			return true
		}
	}
	return false
}
