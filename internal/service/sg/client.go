package sg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"InlineRank/internal/domain/models"
	"InlineRank/internal/domain/repository"
	"InlineRank/internal/service/ratelimit"
	xhttp "InlineRank/pkg/http"
	"InlineRank/pkg/logger"
)

const (
	// inline warrants in the provider's product classification
	inlineWarrantClassification = "8"

	searchPath   = "ProductSearch/Search"
	historyPath  = "Prices/History"
	intradayPath = "Prices/Intraday"
)

var _ repository.MarketData = (*Client)(nil)

type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
	RPS      float64
	Burst    int

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	BreakerInterval    time.Duration
}

// Client talks to the market-data provider. Every call waits for a rate-limit
// token and runs through one circuit breaker.
type Client struct {
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
	breaker  *gobreaker.CircuitBreaker
	host     string
	pageSize int
	now      func() time.Time
	log      *logger.Logger
}

type Option func(*Client)

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHTTPClient replaces the transport-level client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}

	c := &Client{
		http:     xhttp.NewClient(xhttp.WithBaseURL(cfg.BaseURL), xhttp.WithTimeout(cfg.Timeout)),
		limiter:  ratelimit.New(cfg.RPS, cfg.Burst),
		host:     u.Host,
		pageSize: cfg.PageSize,
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	maxFailures := cfg.BreakerMaxFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "sg:" + u.Host,
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("upstream breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// isHealthy keeps client-side failures from tripping the breaker.
func isHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
	}
	return false
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.http.GetJSON(ctx, path, q, dest)
	})
	return err
}

// FetchProductBatch pages through the product search until a short page or
// the filter's page limit, dropping products already seen.
func (c *Client) FetchProductBatch(ctx context.Context, f repository.ProductFilter) ([]models.ProductSnapshot, error) {
	f = f.Normalize(c.now())

	var out []models.ProductSnapshot
	seen := make(map[int64]struct{})
	for page := 0; page < f.MaxPages; page++ {
		q := url.Values{
			"PageNum":                 {strconv.Itoa(page)},
			"PageSize":                {strconv.Itoa(c.pageSize)},
			"ProductClassificationId": {inlineWarrantClassification},
			"CalcDateFrom":            {f.CalcDateFrom.Format(time.DateOnly)},
			"CalcDateTo":              {f.CalcDateTo.Format(time.DateOnly)},
		}
		if f.AssetID != "" {
			q.Set("AssetId", f.AssetID)
		}

		var resp searchResponse
		if err := c.get(ctx, searchPath, q, &resp); err != nil {
			return nil, fmt.Errorf("product search page %d: %w", page, err)
		}
		for _, p := range resp.Products {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p.toModel())
		}
		c.log.Debug("product page fetched",
			logger.Int("page", page),
			logger.Int("count", len(resp.Products)),
			logger.String("filter", f.CacheKey()),
		)
		if len(resp.Products) < c.pageSize {
			break
		}
	}
	return out, nil
}

// FetchPriceHistory returns the daily history in ascending date order.
// Rows with unparseable dates are skipped.
func (c *Client) FetchPriceHistory(ctx context.Context, productID int64) (models.PriceHistory, error) {
	rows, err := c.prices(ctx, historyPath, productID)
	if err != nil {
		return nil, fmt.Errorf("history %d: %w", productID, err)
	}
	if !sort.IsSorted(rows) {
		sort.Stable(rows)
	}
	return rows, nil
}

// FetchLatestUnderlyingPrice reads the most recent intraday tick. No ticks yields nil.
func (c *Client) FetchLatestUnderlyingPrice(ctx context.Context, productID int64) (*float64, error) {
	rows, err := c.prices(ctx, intradayPath, productID)
	if err != nil {
		return nil, fmt.Errorf("intraday %d: %w", productID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if !r.Date.Before(latest.Date) {
			latest = r
		}
	}
	v := latest.UnderlyingPrice
	return &v, nil
}

func (c *Client) prices(ctx context.Context, path string, productID int64) (models.PriceHistory, error) {
	var raw []priceDTO
	q := url.Values{"productId": {strconv.FormatInt(productID, 10)}}
	if err := c.get(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	out := make(models.PriceHistory, 0, len(raw))
	for _, p := range raw {
		if o, ok := p.toModel(); ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// BreakerState exposes the breaker for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
