package partnerclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/availability"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type scriptedDoer struct {
	mu        sync.Mutex
	responses []*http.Response
	errs      []error
	requests  []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	index := len(d.requests) - 1
	if index < len(d.errs) && d.errs[index] != nil {
		return nil, d.errs[index]
	}
	if index < len(d.responses) {
		return d.responses[index], nil
	}
	return jsonResponse(http.StatusOK, `{}`), nil
}

func (d *scriptedDoer) requestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func (d *scriptedDoer) requestAt(index int) *http.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[index]
}

const profileBody = `{"profile":{"id":1,"user_id":7,"type":"guide","weekly_availability":["Monday","Wednesday"],"onboarding_complete":true}}`

func newLoadedClient(t *testing.T, doer doer) *Client {
	t.Helper()
	client := newClient(doer, "http://localhost:8080", "token")
	if _, err := client.LoadProfile(context.Background()); err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	return client
}

func TestToggleWeeklyDayAppliesOptimisticallyThenAdoptsServerState(t *testing.T) {
	doer := &scriptedDoer{
		responses: []*http.Response{
			jsonResponse(http.StatusOK, profileBody),
			jsonResponse(http.StatusOK, `{"weekly_availability":["Monday","Wednesday","Friday"]}`),
		},
	}
	client := newLoadedClient(t, doer)

	if err := client.ToggleWeeklyDay(context.Background(), "Friday"); err != nil {
		t.Fatalf("ToggleWeeklyDay: %v", err)
	}

	days := client.WeeklyAvailability()
	if len(days) != 3 || days[2] != "Friday" {
		t.Fatalf("expected server pattern adopted, got %v", days)
	}
}

func TestToggleWeeklyDayRollsBackOnFailure(t *testing.T) {
	var patternDuringFlight []string
	var client *Client

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet {
			return jsonResponse(http.StatusOK, profileBody), nil
		}
		patternDuringFlight = client.WeeklyAvailability()
		return jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})
	client = newLoadedClient(t, doer)

	err := client.ToggleWeeklyDay(context.Background(), "Friday")
	if err == nil {
		t.Fatal("expected error from failed toggle")
	}

	// The optimistic flip must have been visible while the request ran.
	if len(patternDuringFlight) != 3 {
		t.Fatalf("expected Friday present during flight, got %v", patternDuringFlight)
	}

	days := client.WeeklyAvailability()
	if len(days) != 2 || days[0] != "Monday" || days[1] != "Wednesday" {
		t.Fatalf("expected rollback to [Monday Wednesday], got %v", days)
	}
}

func TestToggleWeeklyDayRejectsConcurrentToggleOnSameDay(t *testing.T) {
	release := make(chan struct{})
	var client *Client

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet {
			return jsonResponse(http.StatusOK, profileBody), nil
		}
		<-release
		return jsonResponse(http.StatusOK, `{"weekly_availability":["Monday","Wednesday","Friday"]}`), nil
	})
	client = newLoadedClient(t, doer)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- client.ToggleWeeklyDay(context.Background(), "Friday")
	}()

	// Wait for the first toggle to take the in-flight slot.
	deadline := time.Now().Add(time.Second)
	for {
		if err := client.ToggleWeeklyDay(context.Background(), "Friday"); errors.Is(err, ErrToggleInFlight) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second toggle was never rejected as in flight")
		}
		time.Sleep(time.Millisecond)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first toggle: %v", err)
	}
}

func TestToggleWeeklyDayKeepsOtherInFlightToggle(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet {
			return jsonResponse(http.StatusOK, profileBody), nil
		}
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		var body struct {
			Day string `json:"day"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		if body.Day == "Friday" {
			close(entered)
			<-release
			return jsonResponse(http.StatusOK, `{"weekly_availability":["Monday","Wednesday","Friday","Saturday"]}`), nil
		}
		// The Saturday response lands while Friday is still unresolved, so
		// it cannot know about Friday yet.
		return jsonResponse(http.StatusOK, `{"weekly_availability":["Monday","Wednesday","Saturday"]}`), nil
	})
	client := newLoadedClient(t, doer)

	fridayDone := make(chan error, 1)
	go func() {
		fridayDone <- client.ToggleWeeklyDay(context.Background(), "Friday")
	}()
	<-entered

	if err := client.ToggleWeeklyDay(context.Background(), "Saturday"); err != nil {
		t.Fatalf("ToggleWeeklyDay Saturday: %v", err)
	}
	if days := client.WeeklyAvailability(); !containsDay(days, "Friday") || !containsDay(days, "Saturday") {
		t.Fatalf("expected Friday's in-flight flip to survive Saturday's response, got %v", days)
	}

	close(release)
	if err := <-fridayDone; err != nil {
		t.Fatalf("ToggleWeeklyDay Friday: %v", err)
	}
	if days := client.WeeklyAvailability(); len(days) != 4 {
		t.Fatalf("expected four days once both toggles settled, got %v", days)
	}
}

func containsDay(days []string, day string) bool {
	for _, candidate := range days {
		if candidate == day {
			return true
		}
	}
	return false
}

func TestAddOverrideRejectsPastDateWithoutNetwork(t *testing.T) {
	doer := &scriptedDoer{
		responses: []*http.Response{jsonResponse(http.StatusOK, profileBody)},
	}
	client := newLoadedClient(t, doer)
	requestsAfterLoad := doer.requestCount()

	yesterday := availability.Today().AddDays(-1)
	_, err := client.AddOverride(context.Background(), yesterday, nil)
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
	if doer.requestCount() != requestsAfterLoad {
		t.Fatal("expected past date to be rejected before any request")
	}
}

func TestAddOverrideRefetchesFullList(t *testing.T) {
	// The refetch response carries override 9, created from another device.
	// A local append would never surface it.
	doer := &scriptedDoer{
		responses: []*http.Response{
			jsonResponse(http.StatusOK, profileBody),
			jsonResponse(http.StatusCreated, `{"override":{"id":4,"partner_id":7,"date":"2026-12-24","type":"unavailable"}}`),
			jsonResponse(http.StatusOK, `{"overrides":[{"id":4,"partner_id":7,"date":"2026-12-24","type":"unavailable"},{"id":9,"partner_id":7,"date":"2026-12-31","type":"unavailable"}]}`),
		},
	}
	client := newLoadedClient(t, doer)

	created, err := client.AddOverride(context.Background(), availability.Today().AddDays(30), nil)
	if err != nil {
		t.Fatalf("AddOverride: %v", err)
	}
	if created.ID != 4 {
		t.Fatalf("unexpected override: %+v", created)
	}

	if got := doer.requestAt(2); got.Method != http.MethodGet || got.URL.Path != "/api/v1/availability/overrides" {
		t.Fatalf("expected a full refetch after create, got %s %s", got.Method, got.URL.Path)
	}
	cached := client.Overrides()
	if len(cached) != 2 || cached[0].ID != 4 || cached[1].ID != 9 {
		t.Fatalf("expected cache to mirror the server list, got %v", cached)
	}
}

func TestRemoveOverrideRefetchesFullList(t *testing.T) {
	doer := &scriptedDoer{
		responses: []*http.Response{
			jsonResponse(http.StatusOK, profileBody),
			jsonResponse(http.StatusOK, `{"overrides":[{"id":4,"partner_id":7,"date":"2026-12-24","type":"unavailable"},{"id":5,"partner_id":7,"date":"2026-12-26","type":"unavailable"}]}`),
			jsonResponse(http.StatusOK, `{"success":true}`),
			jsonResponse(http.StatusOK, `{"overrides":[{"id":5,"partner_id":7,"date":"2026-12-26","type":"unavailable"},{"id":6,"partner_id":7,"date":"2026-12-28","type":"unavailable"}]}`),
		},
	}
	client := newLoadedClient(t, doer)

	if _, err := client.RefreshOverrides(context.Background()); err != nil {
		t.Fatalf("RefreshOverrides: %v", err)
	}
	if err := client.RemoveOverride(context.Background(), 4); err != nil {
		t.Fatalf("RemoveOverride: %v", err)
	}

	if got := doer.requestAt(3); got.Method != http.MethodGet || got.URL.Path != "/api/v1/availability/overrides" {
		t.Fatalf("expected a full refetch after delete, got %s %s", got.Method, got.URL.Path)
	}
	// Override 6 appeared server-side between delete and refetch; the cache
	// must carry the server list verbatim, not a local prune.
	cached := client.Overrides()
	if len(cached) != 2 || cached[0].ID != 5 || cached[1].ID != 6 {
		t.Fatalf("expected cache to mirror the server list, got %v", cached)
	}
}
