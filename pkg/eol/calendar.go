package eol

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

// Date is a bare ISO calendar date (no time component) as serialized by the
// endoflife.date API.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a JSON string of the form "2006-01-02".
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("calendar date must be a string, got %s", string(data))
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date back to its wire form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// CycleRecord is one release cycle from a vendor's EOL calendar.
type CycleRecord struct {
	Cycle             string `json:"cycle"`
	LTS               bool   `json:"lts"`
	ReleaseDate       Date   `json:"releaseDate"`
	Latest            string `json:"latest"`
	Support           Date   `json:"support"`
	EOL               Date   `json:"eol"`
	LatestReleaseDate *Date  `json:"latestReleaseDate,omitempty"`
}

// FetchError reports a failed calendar fetch for one product. Calendar
// fetches are fatal to a run: classification is meaningless without them.
type FetchError struct {
	Product string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching EOL calendar for %s: %v", e.Product, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// calendarEntry holds the fetch-once state for a single product.
type calendarEntry struct {
	once    sync.Once
	records []CycleRecord
	err     error
}

// Client fetches release-support calendars from the endoflife.date API and
// caches each product's calendar for the lifetime of the client, so every
// vendor costs at most one round trip per run.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger

	mu      sync.Mutex
	entries map[string]*calendarEntry
}

// NewClient creates a calendar client against the given API base URL,
// e.g. "https://endoflife.date/api".
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: cleanhttp.DefaultClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		entries:    make(map[string]*calendarEntry),
	}
}

// Calendar returns the release cycles for the given product, fetching them
// on first use. Concurrent callers for the same product share one fetch.
func (c *Client) Calendar(ctx context.Context, product string) ([]CycleRecord, error) {
	c.mu.Lock()
	entry, ok := c.entries[product]
	if !ok {
		entry = &calendarEntry{}
		c.entries[product] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.records, entry.err = c.fetch(ctx, product)
	})
	return entry.records, entry.err
}

// Prefetch fetches the calendars for all given products concurrently and
// returns the first failure, if any.
func (c *Client) Prefetch(ctx context.Context, products ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, product := range products {
		g.Go(func() error {
			_, err := c.Calendar(ctx, product)
			return err
		})
	}
	return g.Wait()
}

func (c *Client) fetch(ctx context.Context, product string) ([]CycleRecord, error) {
	url := fmt.Sprintf("%s/%s.json", c.baseURL, product)
	c.logger.Debugf("Fetching EOL calendar from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Product: product, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Product: product, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Product: product, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var records []CycleRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &FetchError{Product: product, Err: fmt.Errorf("decoding calendar: %w", err)}
	}

	c.logger.Debugf("Fetched %d release cycles for %s", len(records), product)
	return records, nil
}
