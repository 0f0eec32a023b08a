// Package idealservice is the HTTP client for the IdealService waste calendar API.
package idealservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

const (
	DefaultBaseURL = "http://idealservice.infofactory.it/it/api"
	DefaultTimeout = 10 * time.Second

	calendarPath = "/comune/%s/calendario/%s"
	maxBodyBytes = 4 << 20
)

// Client fetches the pickup calendar of one place/calendar pair.
type Client struct {
	key     domain.CalendarKey
	baseURL string
	session *http.Client
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithSession makes the client reuse a shared, pooled *http.Client. The
// client never closes a shared session.
func WithSession(session *http.Client) Option {
	return func(c *Client) { c.session = session }
}

// WithBaseURL overrides the API root (tests, mirrors).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout bounds every request. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock used to decide which pickups are upcoming.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a Client for key.
func NewClient(key domain.CalendarKey, opts ...Option) *Client {
	c := &Client{
		key:     key,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.CalendarClient = (*Client)(nil)

// FetchEvents requests the calendar and returns its non-empty pickup days in
// ascending date order. The days/offset query is only sent when both are set.
func (c *Client) FetchEvents(ctx context.Context, opts ports.FetchOptions) ([]domain.PickupEvent, error) {
	body, err := c.get(ctx, c.calendarURL(opts))
	if err != nil {
		return nil, err
	}
	return parseCalendar(body)
}

// NextEvent returns the first pickup dated today or later.
func (c *Client) NextEvent(ctx context.Context) (domain.PickupEvent, error) {
	events, err := c.FetchEvents(ctx, ports.FetchOptions{})
	if err != nil {
		return domain.PickupEvent{}, err
	}
	next, ok := domain.NextPickup(events, c.now())
	if !ok {
		return domain.PickupEvent{}, fmt.Errorf("%w: %w", domain.ErrData, domain.ErrNoUpcomingPickup)
	}
	return next, nil
}

func (c *Client) calendarURL(opts ports.FetchOptions) string {
	u := c.baseURL + fmt.Sprintf(calendarPath, url.PathEscape(c.key.PlaceID), url.PathEscape(c.key.CalendarID))
	if opts.Days != 0 && opts.Offset != 0 {
		q := url.Values{}
		q.Set("days", strconv.Itoa(opts.Days))
		q.Set("offset", strconv.Itoa(opts.Offset))
		u += "?" + q.Encode()
	}
	return u
}

// get performs the GET and returns the raw body of a 2xx response.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	session := c.session
	if session == nil {
		// One-off session, released on every return path.
		transport := http.DefaultTransport.(*http.Transport).Clone()
		defer transport.CloseIdleConnections()
		session = &http.Client{Transport: transport}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrRequest, c.key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Bytes("body", truncate(body, 512)).
			Msg("unexpected response from IdealService")
		return nil, fmt.Errorf("%w: %s: unexpected status %d", domain.ErrRequest, c.key, resp.StatusCode)
	}

	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// --- Vendor payload ---

type calendarResponse struct {
	Legend   map[string]legendEntry `json:"legenda"`
	Calendar []monthEntry           `json:"calendario"`
}

type legendEntry struct {
	Icon        string `json:"icona"`
	Title       string `json:"titolo"`
	Description string `json:"occhiello"`
}

type monthEntry struct {
	Days []dayEntry `json:"events"`
}

type dayEntry struct {
	Date    string        `json:"date"`
	Pickups []pickupEntry `json:"events"`
}

type pickupEntry struct {
	Legend json.RawMessage `json:"legenda"`
}

// parseCalendar converts the vendor payload into pickup events. Any unknown
// legend id or bad date fails the whole parse.
func parseCalendar(body []byte) ([]domain.PickupEvent, error) {
	var payload calendarResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode calendar: %w", domain.ErrData, err)
	}

	var events []domain.PickupEvent
	for _, month := range payload.Calendar {
		for _, d := range month.Days {
			if len(d.Pickups) == 0 {
				continue
			}

			date, err := time.Parse(time.DateOnly, d.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid date %q: %w", domain.ErrData, d.Date, err)
			}

			types := make([]domain.PickupType, 0, len(d.Pickups))
			for _, p := range d.Pickups {
				id, err := legendID(p.Legend)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", domain.ErrData, d.Date, err)
				}
				legend, ok := payload.Legend[id]
				if !ok {
					return nil, fmt.Errorf("%w: %s: unknown legend id %q", domain.ErrData, d.Date, id)
				}
				types = append(types, domain.PickupType{
					Icon:        legend.Icon,
					Title:       legend.Title,
					Description: legend.Description,
				})
			}

			events = append(events, domain.PickupEvent{Date: date, PickupTypes: types})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// legendID stringifies a legend reference, which the API sends as a number
// or as a string.
func legendID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("missing legend id")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid legend id %s", raw)
	}
	return n.String(), nil
}
