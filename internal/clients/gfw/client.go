package gfw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/levilina/marine-data-backend/internal/logger"
)

// Client is the Global Fishing Watch API v3 client used by the matching and
// enrichment stages.
type Client interface {
	// SearchVessels queries the vessel identity dataset. The query is an IMO
	// number or a vessel name; ownership and match-criteria blocks are
	// requested so entity resolution can verify matches.
	SearchVessels(ctx context.Context, query string) ([]VesselEntry, error)

	// GetVessel fetches a vessel directly by its GFW vessel id (SSID).
	GetVessel(ctx context.Context, vesselID string) (*VesselEntry, error)

	// FlagHistory fetches the flag history for a vessel.
	FlagHistory(ctx context.Context, vesselID string) ([]FlagHistoryEntry, error)

	// ListEvents pages through an events dataset for one vessel over a date
	// window and returns all entries.
	ListEvents(ctx context.Context, vesselID string, dataset string, start, end time.Time) ([]Event, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	token      string
	httpClient *http.Client

	maxRetries int
	retryDelay time.Duration
	pageLimit  int
}

func NewClient(log *logger.Logger) (Client, error) {
	token := strings.TrimSpace(os.Getenv("GFW_API_TOKEN"))
	if token == "" {
		return nil, fmt.Errorf("missing GFW_API_TOKEN")
	}

	baseURL := strings.TrimSpace(os.Getenv("GFW_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://gateway.api.globalfishingwatch.org/v3"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 30
	if v := os.Getenv("GFW_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 3
	if v := os.Getenv("GFW_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:        log.With("client", "GFWClient"),
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
		retryDelay: 2 * time.Second,
		pageLimit:  100,
	}, nil
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gfw api: HTTP %d: %s", e.Status, e.Body)
}

func (e *apiError) HTTPStatusCode() int { return e.Status }

// StatusCode unwraps err and reports the HTTP status of the API error inside
// it, or 0 when err is not an API error.
func StatusCode(err error) int {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// getJSON performs a GET with retry. 429s wait with exponential backoff
// (Retry-After wins when present); 5xx and transport errors retry after the
// base delay.
func (c *client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("request error, retrying", "url", u, "attempt", attempt+1, "error", err)
			if !sleepCtx(ctx, c.retryDelay) {
				return ctx.Err()
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if out == nil {
				return nil
			}
			return json.Unmarshal(body, out)
		}

		lastErr = &apiError{Status: resp.StatusCode, Body: truncate(string(body), 512)}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := time.Duration(1<<attempt) * c.retryDelay
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
					wait = time.Duration(secs) * time.Second
				}
			}
			c.log.Warn("rate limited, backing off", "url", u, "wait", wait.String())
			if !sleepCtx(ctx, wait) {
				return ctx.Err()
			}
			continue
		}

		if resp.StatusCode >= 500 {
			c.log.Warn("server error, retrying", "url", u, "status", resp.StatusCode, "attempt", attempt+1)
			if !sleepCtx(ctx, c.retryDelay) {
				return ctx.Err()
			}
			continue
		}

		// 4xx other than 429 will not improve with retries.
		return lastErr
	}
	return lastErr
}

func (c *client) SearchVessels(ctx context.Context, query string) ([]VesselEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("datasets[0]", DatasetVesselIdentity)
	params.Set("includes[0]", "OWNERSHIP")
	params.Set("includes[1]", "MATCH_CRITERIA")

	var resp searchResponse
	if err := c.getJSON(ctx, "/vessels/search", params, &resp); err != nil {
		return nil, fmt.Errorf("search vessels %q: %w", query, err)
	}
	return resp.Entries, nil
}

func (c *client) GetVessel(ctx context.Context, vesselID string) (*VesselEntry, error) {
	vesselID = strings.TrimSpace(vesselID)
	if vesselID == "" {
		return nil, fmt.Errorf("empty vessel id")
	}
	params := url.Values{}
	params.Set("dataset", DatasetVesselIdentity)

	var entry VesselEntry
	if err := c.getJSON(ctx, "/vessels/"+url.PathEscape(vesselID), params, &entry); err != nil {
		return nil, fmt.Errorf("get vessel %s: %w", vesselID, err)
	}
	return &entry, nil
}

func (c *client) FlagHistory(ctx context.Context, vesselID string) ([]FlagHistoryEntry, error) {
	vesselID = strings.TrimSpace(vesselID)
	if vesselID == "" {
		return nil, fmt.Errorf("empty vessel id")
	}
	var resp flagHistoryResponse
	if err := c.getJSON(ctx, "/vessels/"+url.PathEscape(vesselID)+"/flag-history", nil, &resp); err != nil {
		return nil, fmt.Errorf("flag history %s: %w", vesselID, err)
	}
	return resp.FlagHistory, nil
}

func (c *client) ListEvents(ctx context.Context, vesselID string, dataset string, start, end time.Time) ([]Event, error) {
	vesselID = strings.TrimSpace(vesselID)
	if vesselID == "" {
		return nil, fmt.Errorf("empty vessel id")
	}
	if dataset == "" {
		return nil, fmt.Errorf("empty dataset")
	}

	var all []Event
	offset := 0
	for {
		params := url.Values{}
		params.Set("vessels[0]", vesselID)
		params.Set("datasets[0]", dataset)
		params.Set("start-date", start.Format("2006-01-02"))
		params.Set("end-date", end.Format("2006-01-02"))
		params.Set("limit", strconv.Itoa(c.pageLimit))
		params.Set("offset", strconv.Itoa(offset))

		var resp eventsResponse
		if err := c.getJSON(ctx, "/events", params, &resp); err != nil {
			return nil, fmt.Errorf("list events %s %s: %w", dataset, vesselID, err)
		}
		if len(resp.Entries) == 0 {
			break
		}
		all = append(all, resp.Entries...)

		if resp.NextOffset == nil || len(resp.Entries) < c.pageLimit {
			break
		}
		offset = *resp.NextOffset
	}
	return all, nil
}

// ParseEventTime accepts the two timestamp shapes the API emits, with and
// without milliseconds.
func ParseEventTime(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", ts); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", ts)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
