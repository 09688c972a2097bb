package omsu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
	"github.com/pwlgk/s13-backend/pkg/circuitbreaker"
	"github.com/pwlgk/s13-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Feed endpoint paths.
const (
	pathGroups     = "dict/groups"
	pathTutors     = "dict/tutors"
	pathAuditories = "dict/auditories"
	pathSchedule   = "schedule/group/%d"
)

// ErrAPIFailure is returned when the feed answered but flagged the response
// as unsuccessful. For the sync core this is indistinguishable from a
// transport failure: the group (or dictionary) is skipped this cycle.
var ErrAPIFailure = errors.New("omsu: api reported failure")

// ClientConfig contains configuration for the feed client.
type ClientConfig struct {
	// BaseURL of the schedule backend, with trailing slash,
	// e.g. "https://eservice.omsu.ru/schedule/backend/".
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RateLimiterConfig paces outbound calls.
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults for the public feed.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		Timeout:           30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the schedule feed client. It implements sync.Fetcher.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
	mapper      *Mapper
}

// NewClient creates a new feed client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		breaker: circuitbreaker.FeedBreaker(func(name string, from, to circuitbreaker.State) {
			config.Logger.Warn("feed circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
		retrier: retry.FeedRetrier(),
		mapper:  NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// FETCH OPERATIONS (sync.Fetcher)
// ══════════════════════════════════════════════════════════════════════════════

// Groups fetches the group dictionary.
func (c *Client) Groups(ctx context.Context) ([]schedule.Group, error) {
	var response APIResponse[[]GroupDTO]
	if err := c.doRequest(ctx, pathGroups, &response); err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}
	return c.mapper.Groups(response.Data), nil
}

// Tutors fetches the tutor dictionary.
func (c *Client) Tutors(ctx context.Context) ([]schedule.Tutor, error) {
	var response APIResponse[[]TutorDTO]
	if err := c.doRequest(ctx, pathTutors, &response); err != nil {
		return nil, fmt.Errorf("get tutors: %w", err)
	}
	return c.mapper.Tutors(response.Data), nil
}

// Rooms fetches the auditory dictionary.
func (c *Client) Rooms(ctx context.Context) ([]schedule.Room, error) {
	var response APIResponse[[]AuditoryDTO]
	if err := c.doRequest(ctx, pathAuditories, &response); err != nil {
		return nil, fmt.Errorf("get auditories: %w", err)
	}
	return c.mapper.Rooms(response.Data), nil
}

// GroupSchedule fetches the full day-partitioned schedule of one group.
// An error means the feed is unavailable for this group this cycle; an empty
// slice is a valid "no lessons" answer.
func (c *Client) GroupSchedule(ctx context.Context, groupID int) ([]schedule.FetchedDay, error) {
	var response APIResponse[[]DayDTO]
	if err := c.doRequest(ctx, fmt.Sprintf(pathSchedule, groupID), &response); err != nil {
		return nil, fmt.Errorf("get schedule for group %d: %w", groupID, err)
	}
	return c.mapper.Schedule(response.Data), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST PLUMBING
// ══════════════════════════════════════════════════════════════════════════════

// envelope lets doRequest check the success flag without knowing the
// concrete payload type.
type envelope interface {
	ok() bool
	message() string
}

func (r *APIResponse[T]) ok() bool        { return r.Success }
func (r *APIResponse[T]) message() string { return r.Message }

// doRequest performs a GET with rate limiting, circuit breaking and retries,
// then decodes the envelope into result.
func (c *Client) doRequest(ctx context.Context, path string, result envelope) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			if err := c.rateLimiter.Allow(ctx); err != nil {
				return retry.Permanent(fmt.Errorf("rate limiter: %w", err))
			}
			return c.doSingleRequest(ctx, path, result)
		})
	})
}

// doSingleRequest performs one HTTP round trip. Transport errors and 5xx
// responses are marked retryable; everything else is permanent.
func (c *Client) doSingleRequest(ctx context.Context, path string, result envelope) error {
	fullURL := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("feed request",
		"path", path,
		"status", resp.StatusCode,
		"took", time.Since(start).String(),
	)

	switch {
	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("server error %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return retry.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return retry.Permanent(fmt.Errorf("parse response: %w", err))
	}

	if !result.ok() {
		if msg := result.message(); msg != "" {
			return retry.Permanent(fmt.Errorf("%w: %s", ErrAPIFailure, msg))
		}
		return retry.Permanent(ErrAPIFailure)
	}

	return nil
}
