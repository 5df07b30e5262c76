package partnerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Migueljuen/ItineraBack/internal/availability"
	"github.com/Migueljuen/ItineraBack/internal/models"
)

var (
	ErrPastDate        = errors.New("partnerclient: date is in the past")
	ErrToggleInFlight  = errors.New("partnerclient: toggle already in flight for day")
	ErrProfileNotReady = errors.New("partnerclient: profile not loaded")
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client drives a partner's availability screens: the weekly pattern with
// optimistic toggles, and the override list with client-side date checks.
type Client struct {
	httpClient doer
	baseURL    string
	token      string

	mu     sync.Mutex
	loaded bool
	weekly availability.WeeklySet

	// inflight maps a day with an unresolved toggle to the state it was
	// flipped to, so a response for another day cannot clobber it.
	inflight  map[string]bool
	overrides []models.AvailabilityOverride
}

func New(httpClient *http.Client, baseURL, token string) *Client {
	return newClient(httpClient, baseURL, token)
}

func newClient(httpClient doer, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		weekly:     availability.NewWeeklySet(nil),
		inflight:   make(map[string]bool),
	}
}

// LoadProfile fetches the partner profile and seeds the local weekly pattern.
func (c *Client) LoadProfile(ctx context.Context) (*models.PartnerProfile, error) {
	var body struct {
		Profile *models.PartnerProfile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/partners/profile", nil, &body); err != nil {
		return nil, err
	}
	if body.Profile == nil {
		return nil, errors.New("partnerclient: empty profile response")
	}

	c.mu.Lock()
	c.weekly = availability.NewWeeklySet(body.Profile.WeeklyAvailability)
	c.loaded = true
	c.mu.Unlock()

	return body.Profile, nil
}

// WeeklyAvailability returns the current local weekly pattern, including any
// optimistic toggle not yet confirmed by the server.
func (c *Client) WeeklyAvailability() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weekly.Days()
}

// ToggleWeeklyDay flips a day optimistically: the local pattern changes
// before the request goes out, and rolls back to the previous value if the
// request fails. A second toggle on the same day while one is in flight is
// rejected so responses cannot land out of order.
func (c *Client) ToggleWeeklyDay(ctx context.Context, day string) error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrProfileNotReady
	}
	if _, busy := c.inflight[day]; busy {
		c.mu.Unlock()
		return ErrToggleInFlight
	}
	_, previous := c.weekly[day]
	next := !previous
	c.weekly = c.weekly.With(day, next)
	c.inflight[day] = next
	c.mu.Unlock()

	payload := map[string]any{"day": day, "available": next}
	var body struct {
		WeeklyAvailability []string `json:"weekly_availability"`
	}
	err := c.do(ctx, http.MethodPatch, "/api/v1/availability/weekly", payload, &body)

	c.mu.Lock()
	delete(c.inflight, day)
	if err != nil {
		c.weekly = c.weekly.With(day, previous)
	} else {
		merged := availability.NewWeeklySet(body.WeeklyAvailability)
		// The server answered before other in-flight toggles resolved;
		// re-apply their optimistic state on top of its pattern.
		for other, pending := range c.inflight {
			merged = merged.With(other, pending)
		}
		c.weekly = merged
	}
	c.mu.Unlock()

	return err
}

// AddOverride rejects past dates locally, without a network round trip.
// After a successful create the override list is refetched in full rather
// than merged, so overrides added from another device show up too.
func (c *Client) AddOverride(ctx context.Context, date availability.Date, reason *string) (*models.AvailabilityOverride, error) {
	if date.Before(availability.Today()) {
		return nil, ErrPastDate
	}

	payload := map[string]any{"date": date.String()}
	if reason != nil {
		payload["reason"] = *reason
	}
	var body struct {
		Override *models.AvailabilityOverride `json:"override"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/availability/overrides", payload, &body); err != nil {
		return nil, err
	}
	if body.Override == nil {
		return nil, errors.New("partnerclient: empty override response")
	}

	if _, err := c.RefreshOverrides(ctx); err != nil {
		return body.Override, err
	}
	return body.Override, nil
}

// RemoveOverride deletes an override, then refetches the full list instead
// of pruning the cache locally.
func (c *Client) RemoveOverride(ctx context.Context, overrideID int64) error {
	path := fmt.Sprintf("/api/v1/availability/overrides/%d", overrideID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	_, err := c.RefreshOverrides(ctx)
	return err
}

// RefreshOverrides replaces the local override cache with the server's list.
func (c *Client) RefreshOverrides(ctx context.Context) ([]models.AvailabilityOverride, error) {
	var body struct {
		Overrides []models.AvailabilityOverride `json:"overrides"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/availability/overrides", nil, &body); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.overrides = body.Overrides
	c.mu.Unlock()

	return body.Overrides, nil
}

// Overrides returns the cached override list.
func (c *Client) Overrides() []models.AvailabilityOverride {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.AvailabilityOverride(nil), c.overrides...)
}

type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("partnerclient: server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var reqBody *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &apiError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
