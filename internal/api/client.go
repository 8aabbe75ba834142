package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookwidget/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Client calls the public booking endpoints on behalf of one widget embed.
// Paths and query parameter names follow the backend contract verbatim.
type Client struct {
	baseURL    string
	clientID   string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration

	availLimiter *rate.Limiter
}

// NewClient constructs a client bound to a backend base URL and client ID.
func NewClient(baseURL, clientID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures optional Redis caching for catalog GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseAvailabilityLimit throttles the availability endpoints, which are hit
// on every calendar navigation.
func (c *Client) UseAvailabilityLimit(rps float64, burst int) {
	if rps <= 0 || burst <= 0 {
		c.availLimiter = nil
		return
	}
	c.availLimiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// GetSettings fetches the per-client widget configuration.
func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	endpoint := fmt.Sprintf("%s/public/booking/settings?client_id=%s", c.baseURL, url.QueryEscape(c.clientID))
	cacheKey := fmt.Sprintf("widget:settings:%s", c.clientID)

	if c.readCache(ctx, cacheKey, &settings) {
		return settings, nil
	}
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(body, &settings); err != nil {
		return settings, fmt.Errorf("decode settings: %w", err)
	}
	c.writeCache(ctx, cacheKey, settings)
	return settings, nil
}

// GetLocations fetches the branch list.
func (c *Client) GetLocations(ctx context.Context) ([]models.Location, error) {
	endpoint := fmt.Sprintf("%s/public/booking/locations?client_id=%s", c.baseURL, url.QueryEscape(c.clientID))
	return cachedList[models.Location](c, ctx, endpoint, "locations", fmt.Sprintf("widget:locations:%s", c.clientID))
}

// GetServices fetches the bookable service catalog.
func (c *Client) GetServices(ctx context.Context) ([]models.Service, error) {
	endpoint := fmt.Sprintf("%s/public/booking/services?client_id=%s", c.baseURL, url.QueryEscape(c.clientID))
	return cachedList[models.Service](c, ctx, endpoint, "services", fmt.Sprintf("widget:services:%s", c.clientID))
}

// GetRentalItems fetches the rentable bike catalog.
func (c *Client) GetRentalItems(ctx context.Context) ([]models.RentalItem, error) {
	endpoint := fmt.Sprintf("%s/public/rental/bikes?client_id=%s", c.baseURL, url.QueryEscape(c.clientID))
	return cachedList[models.RentalItem](c, ctx, endpoint, "bikes", fmt.Sprintf("widget:bikes:%s", c.clientID))
}

// GetDayAvailability fetches per-day availability of a displayed month for a
// location. Not cached: it changes with every confirmed booking.
func (c *Client) GetDayAvailability(ctx context.Context, locationCode string, year, month int) ([]models.DayAvailability, error) {
	if err := c.waitAvailability(ctx); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/public/booking/availability/days?client_id=%s&location=%s&year=%d&month=%d",
		c.baseURL, url.QueryEscape(c.clientID), url.QueryEscape(locationCode), year, month)
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeList[models.DayAvailability](body, "days")
}

// GetTimeSlots fetches the bookable slots of one day at a location.
func (c *Client) GetTimeSlots(ctx context.Context, locationCode, date string) ([]models.TimeSlot, error) {
	if err := c.waitAvailability(ctx); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/public/booking/availability?client_id=%s&location=%s&date=%s",
		c.baseURL, url.QueryEscape(c.clientID), url.QueryEscape(locationCode), url.QueryEscape(date))
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeList[models.TimeSlot](body, "slots")
}

func (c *Client) waitAvailability(ctx context.Context) error {
	if c.availLimiter == nil {
		return nil
	}
	return c.availLimiter.Wait(ctx)
}

func cachedList[T any](c *Client, ctx context.Context, endpoint, field, cacheKey string) ([]T, error) {
	var cached []T
	if c.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}
	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	list, err := decodeList[T](body, field)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, list)
	return list, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, nil
}
