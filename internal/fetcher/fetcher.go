// Package fetcher is the upstream catalog API collaborator. It materializes
// the full raw record collection before any pipeline stage runs; per-set
// failures are logged and skipped here and never reach the reconciliation
// core.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrevinB/InkwellKeeper/internal/config"
	"github.com/BrevinB/InkwellKeeper/internal/models"
)

const userAgent = "InkwellKeeper/1.0"

// SetInfo is one entry from the upstream set listing.
type SetInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ReleasedAt string `json:"released_at,omitempty"`
}

// Client fetches raw card records from a Lorcast-style API.
type Client struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
	cfg     config.FetchConfig
}

func New(cfg config.FetchConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		cfg:     cfg,
	}
}

// FetchSets returns the upstream set listing. A failure here aborts the run:
// without the listing no raw collection can be built at all.
func (c *Client) FetchSets(ctx context.Context) ([]SetInfo, error) {
	var resp struct {
		Results []SetInfo `json:"results"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/sets", c.baseURL), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch set listing: %w", err)
	}
	c.logger.Infof("Fetched %d sets", len(resp.Results))
	return resp.Results, nil
}

// FetchSetCards returns every print in a set, including foil and enchanted
// variants.
func (c *Client) FetchSetCards(ctx context.Context, code string) ([]models.RawCard, error) {
	query := url.QueryEscape(fmt.Sprintf("set:%s", code))
	u := fmt.Sprintf("%s/cards/search?q=%s&unique=prints", c.baseURL, query)

	var resp struct {
		Results []models.RawCard `json:"results"`
	}
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch cards for set %s: %w", code, err)
	}
	return resp.Results, nil
}

// FetchRarity returns all cards of one rarity across sets. Epic and Iconic
// prints are not included in the per-set queries and need this.
func (c *Client) FetchRarity(ctx context.Context, rarity string) ([]models.RawCard, error) {
	query := url.QueryEscape(fmt.Sprintf("rarity:%s", rarity))
	u := fmt.Sprintf("%s/cards/search?q=%s", c.baseURL, query)

	var resp struct {
		Results []models.RawCard `json:"results"`
	}
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s cards: %w", rarity, err)
	}
	return resp.Results, nil
}

// FetchSetCardCount returns the upstream card count for one set. Used by the
// update check, which only compares counts.
func (c *Client) FetchSetCardCount(ctx context.Context, code string) (int, error) {
	var cards []json.RawMessage
	u := fmt.Sprintf("%s/sets/%s/cards", c.baseURL, url.PathEscape(code))
	if err := c.getJSON(ctx, u, &cards); err != nil {
		return 0, fmt.Errorf("failed to fetch card count for set %s: %w", code, err)
	}
	return len(cards), nil
}

// FetchAllCards materializes the complete raw collection: every set's prints
// via a bounded worker pool, then the Epic and Iconic supplemental searches.
// Results are assembled in set-listing order so one run's input order is
// stable regardless of which worker finished first.
func (c *Client) FetchAllCards(ctx context.Context) ([]models.RawCard, error) {
	sets, err := c.FetchSets(ctx)
	if err != nil {
		return nil, err
	}

	workers := c.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	perSet := make([][]models.RawCard, len(sets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				set := sets[i]
				cards, err := c.FetchSetCards(ctx, set.Code)
				if err != nil {
					c.logger.WithError(err).Errorf("Skipping set %s (%s)", set.Name, set.Code)
					continue
				}
				c.logger.Infof("Fetched %d cards for %s", len(cards), set.Name)
				perSet[i] = cards
				if c.cfg.RequestGap > 0 {
					select {
					case <-time.After(c.cfg.RequestGap):
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	for i := range sets {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []models.RawCard
	for _, cards := range perSet {
		all = append(all, cards...)
	}

	for _, rarity := range []string{"epic", "iconic"} {
		cards, err := c.FetchRarity(ctx, rarity)
		if err != nil {
			c.logger.WithError(err).Errorf("Skipping %s cards", rarity)
			continue
		}
		c.logger.Infof("Fetched %d %s cards", len(cards), rarity)
		all = append(all, cards...)
	}

	c.logger.Infof("Fetched %d raw records total", len(all))
	return all, nil
}

// getJSON performs one GET with retries and decodes the response body.
func (c *Client) getJSON(ctx context.Context, u string, target interface{}) error {
	retries := c.cfg.Retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			c.logger.Debugf("Retry %d/%d for %s", attempt, retries, u)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = c.getJSONOnce(ctx, u, target)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) getJSONOnce(ctx context.Context, u string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
