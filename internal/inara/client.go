package inara

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/elite-status-check/backend/internal/models"
)

// Options configures the live client. Zero fields fall back to the
// defaults below.
type Options struct {
	APIURL        string
	APIKey        string
	AppName       string
	AppVersion    string
	CommanderName string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	BackoffFactor float64
	RateLimit     int
	RateWindow    time.Duration
	CacheTTL      time.Duration
}

func (o *Options) fillDefaults() {
	if o.APIURL == "" {
		o.APIURL = "https://inara.cz/inapi/v1/"
	}
	if o.AppName == "" {
		o.AppName = "EliteStatusCheck"
	}
	if o.AppVersion == "" {
		o.AppVersion = "1.1.0"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = 2.0
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 100
	}
	if o.RateWindow <= 0 {
		o.RateWindow = time.Hour
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
}

// Client is the live Inara API client.
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *slidingWindow
	cache      *responseCache
}

// NewClient creates a live client from opts.
func NewClient(opts Options) *Client {
	opts.fillDefaults()
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    newSlidingWindow(opts.RateLimit, opts.RateWindow),
		cache:      newResponseCache(opts.CacheTTL),
	}
}

// Mode identifies the client flavor in health output.
func (c *Client) Mode() string { return "live" }

// ClearCache drops all cached responses.
func (c *Client) ClearCache() {
	c.cache.clear()
	fmt.Printf("[Inara] Response cache cleared\n")
}

// Wire envelope. Field names follow the Inara API exactly.

type requestHeader struct {
	AppName       string `json:"appName"`
	AppVersion    string `json:"appVersion"`
	IsDeveloped   bool   `json:"isDeveloped"`
	APIKey        string `json:"APIkey"`
	CommanderName string `json:"commanderName,omitempty"`
}

type requestEvent struct {
	EventName      string `json:"eventName"`
	EventTimestamp string `json:"eventTimestamp"`
	EventData      any    `json:"eventData,omitempty"`
}

type apiRequest struct {
	Header requestHeader  `json:"header"`
	Events []requestEvent `json:"events"`
}

type responseHeader struct {
	EventStatus     int    `json:"eventStatus"`
	EventStatusText string `json:"eventStatusText"`
}

type eventResponse struct {
	EventStatus     int             `json:"eventStatus"`
	EventStatusText string          `json:"eventStatusText"`
	EventData       json.RawMessage `json:"eventData"`
}

type apiResponse struct {
	Header responseHeader  `json:"header"`
	Events []eventResponse `json:"events"`
}

func newEvent(name string, data any) requestEvent {
	return requestEvent{
		EventName:      name,
		EventTimestamp: time.Now().UTC().Format(time.RFC3339),
		EventData:      data,
	}
}

// sendEvents posts one envelope, consulting the cache first and recording
// the response on success.
func (c *Client) sendEvents(ctx context.Context, commander string, events []requestEvent) (*apiResponse, error) {
	if commander == "" {
		commander = c.opts.CommanderName
	}

	key := cacheKey(commander, events)
	if resp, ok := c.cache.get(key); ok {
		return resp, nil
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	req := apiRequest{
		Header: requestHeader{
			AppName:       c.opts.AppName,
			AppVersion:    c.opts.AppVersion,
			IsDeveloped:   true,
			APIKey:        c.opts.APIKey,
			CommanderName: commander,
		},
		Events: events,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal inara request: %w", err)
	}

	resp, err := c.postWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, resp)
	return resp, nil
}

// postWithRetry retries network failures with exponential backoff. HTTP
// and API level errors are final.
func (c *Client) postWithRetry(ctx context.Context, body []byte) (*apiResponse, error) {
	var lastErr error
	delay := c.opts.RetryDelay

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			fmt.Printf("[Inara] Request failed, retrying in %s: %v\n", delay, lastErr)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			delay = time.Duration(float64(delay) * c.opts.BackoffFactor)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build inara request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("User-Agent", fmt.Sprintf("%s/%s", c.opts.AppName, c.opts.AppVersion))

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := decodeResponse(httpResp)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	return nil, fmt.Errorf("inara request failed after %d retries: %w", c.opts.MaxRetries, lastErr)
}

func decodeResponse(httpResp *http.Response) (*apiResponse, error) {
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case httpResp.StatusCode == http.StatusUnauthorized:
		return nil, ErrAuthentication
	case httpResp.StatusCode < 200 || httpResp.StatusCode > 299:
		return nil, &APIError{Code: httpResp.StatusCode, Text: httpResp.Status}
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode inara response: %w", err)
	}

	// Error envelope: a header status with no events.
	if len(resp.Events) == 0 && resp.Header.EventStatus != 0 && resp.Header.EventStatus != 200 {
		if resp.Header.EventStatus == 400 {
			return nil, fmt.Errorf("%w: %s", ErrAuthentication, resp.Header.EventStatusText)
		}
		return nil, &APIError{Code: resp.Header.EventStatus, Text: resp.Header.EventStatusText}
	}

	for _, ev := range resp.Events {
		switch {
		case ev.EventStatus == 202:
			return nil, fmt.Errorf("%w: %s", ErrAuthentication, ev.EventStatusText)
		case ev.EventStatus >= 400:
			return nil, &APIError{Code: ev.EventStatus, Text: ev.EventStatusText}
		case ev.EventStatus > 200:
			fmt.Printf("[Inara] API warning %d: %s\n", ev.EventStatus, ev.EventStatusText)
		}
	}

	return &resp, nil
}

func firstEventData(resp *apiResponse) (json.RawMessage, error) {
	if len(resp.Events) == 0 || len(resp.Events[0].EventData) == 0 ||
		string(resp.Events[0].EventData) == "null" {
		return nil, ErrNoData
	}
	return resp.Events[0].EventData, nil
}

// CommanderProfile looks up a commander's public profile. An empty name
// uses the configured commander.
func (c *Client) CommanderProfile(ctx context.Context, name string) (*models.CommanderProfile, error) {
	resp, err := c.sendEvents(ctx, name, []requestEvent{newEvent("getCommanderProfile", nil)})
	if err != nil {
		return nil, err
	}
	data, err := firstEventData(resp)
	if err != nil {
		return nil, err
	}
	var profile models.CommanderProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse commander profile: %w", err)
	}
	return &profile, nil
}

// CommanderShips lists a commander's ships.
func (c *Client) CommanderShips(ctx context.Context, name string) ([]models.ShipLoadout, error) {
	resp, err := c.sendEvents(ctx, name, []requestEvent{newEvent("getCommanderShips", nil)})
	if err != nil {
		return nil, err
	}
	data, err := firstEventData(resp)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Ships []models.ShipLoadout `json:"ships"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse ships: %w", err)
	}
	return payload.Ships, nil
}

// CurrentShip returns the ship flagged as currently flown.
func (c *Client) CurrentShip(ctx context.Context, name string) (*models.ShipLoadout, error) {
	ships, err := c.CommanderShips(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range ships {
		if ships[i].IsCurrentShip {
			return &ships[i], nil
		}
	}
	return nil, ErrNoData
}

// SystemFactions lists the factions present in a star system.
func (c *Client) SystemFactions(ctx context.Context, system string) ([]models.SystemFaction, error) {
	ev := newEvent("getSystemFactions", map[string]string{"systemName": system})
	resp, err := c.sendEvents(ctx, "", []requestEvent{ev})
	if err != nil {
		return nil, err
	}
	data, err := firstEventData(resp)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Factions []models.SystemFaction `json:"factions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse system factions: %w", err)
	}
	return payload.Factions, nil
}

// SystemStations lists the stations in a star system.
func (c *Client) SystemStations(ctx context.Context, system string) ([]models.Station, error) {
	ev := newEvent("getSystemStations", map[string]string{"systemName": system})
	resp, err := c.sendEvents(ctx, "", []requestEvent{ev})
	if err != nil {
		return nil, err
	}
	data, err := firstEventData(resp)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Stations []models.Station `json:"stations"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse system stations: %w", err)
	}
	return payload.Stations, nil
}

// StationMarket returns the commodity market of one station.
func (c *Client) StationMarket(ctx context.Context, stationID int) (*models.StationMarket, error) {
	ev := newEvent("getStationMarket", map[string]int{"stationID": stationID})
	resp, err := c.sendEvents(ctx, "", []requestEvent{ev})
	if err != nil {
		return nil, err
	}
	data, err := firstEventData(resp)
	if err != nil {
		return nil, err
	}
	var market models.StationMarket
	if err := json.Unmarshal(data, &market); err != nil {
		return nil, fmt.Errorf("parse station market: %w", err)
	}
	return &market, nil
}

// slidingWindow enforces a request budget over a moving time window.
// Acquire blocks until a slot frees up or ctx is done.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	sent   []time.Time
	now    func() time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{limit: limit, window: window, now: time.Now}
}

func (w *slidingWindow) Acquire(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := w.now()
		cutoff := now.Add(-w.window)
		drop := 0
		for drop < len(w.sent) && !w.sent[drop].After(cutoff) {
			drop++
		}
		w.sent = w.sent[drop:]

		if len(w.sent) < w.limit {
			w.sent = append(w.sent, now)
			w.mu.Unlock()
			return nil
		}
		wait := w.sent[0].Add(w.window).Sub(now)
		w.mu.Unlock()

		fmt.Printf("[Inara] Rate limit reached, waiting %s\n", wait.Round(time.Millisecond))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// responseCache is a TTL cache over decoded responses.
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	at   time.Time
	resp *apiResponse
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *responseCache) get(key string) (*apiResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.at) >= c.ttl {
		return nil, false
	}
	// Hand out a copy; the cached envelope is shared across hits.
	resp := *entry.resp
	resp.Events = make([]eventResponse, len(entry.resp.Events))
	copy(resp.Events, entry.resp.Events)
	return &resp, true
}

func (c *responseCache) set(key string, resp *apiResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{at: c.now(), resp: resp}
}

func (c *responseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func cacheKey(commander string, events []requestEvent) string {
	var b bytes.Buffer
	b.WriteString(commander)
	for _, ev := range events {
		b.WriteByte(':')
		b.WriteString(ev.EventName)
		if ev.EventData != nil {
			if data, err := json.Marshal(ev.EventData); err == nil {
				b.WriteByte(':')
				b.Write(data)
			}
		}
	}
	return b.String()
}
