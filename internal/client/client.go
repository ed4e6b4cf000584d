// Package client talks to the FeastFox meal API over HTTP+JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"feastfox/internal/models"
)

const DefaultBaseURL = "http://localhost:8000"

// Provider is the set of meal operations the views depend on. It is
// implemented by *Client and by the in-process mock provider.
type Provider interface {
	FetchDecision(ctx context.Context) (models.DinnerDecision, error)
	ListMeals(ctx context.Context) ([]models.Meal, error)
	CreateMeal(ctx context.Context, meal models.MealCreate) (models.Meal, error)
	UpdateMeal(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error)
	DeleteMeal(ctx context.Context, id string) error
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ Provider = &Client{}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestFailedError is returned for any response outside the 2xx range.
type RequestFailedError struct {
	StatusCode int
	Status     string
	// Message is the server's error text, when it sent one.
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.StatusCode, e.Status)
}

// Is lets callers test a 404 with errors.Is against the model sentinels.
func (e *RequestFailedError) Is(target error) bool {
	if e.StatusCode != http.StatusNotFound {
		return false
	}
	noMeals := strings.EqualFold(e.Message, models.ErrNoMeals.Error())
	switch target {
	case models.ErrNoMeals:
		return noMeals
	case models.ErrMealNotFound:
		return !noMeals
	}
	return false
}

func (c *Client) FetchDecision(ctx context.Context) (models.DinnerDecision, error) {
	var out models.DinnerDecision
	err := c.do(ctx, http.MethodGet, "/api/dinner/decision", nil, &out)
	return out, err
}

func (c *Client) ListMeals(ctx context.Context) ([]models.Meal, error) {
	var out []models.Meal
	if err := c.do(ctx, http.MethodGet, "/api/meals", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMeal(ctx context.Context, id string) (models.Meal, error) {
	var out models.Meal
	err := c.do(ctx, http.MethodGet, mealPath(id), nil, &out)
	return out, err
}

func (c *Client) CreateMeal(ctx context.Context, meal models.MealCreate) (models.Meal, error) {
	var out models.Meal
	err := c.do(ctx, http.MethodPost, "/api/meals", meal, &out)
	return out, err
}

func (c *Client) UpdateMeal(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error) {
	var out models.Meal
	err := c.do(ctx, http.MethodPut, mealPath(id), meal, &out)
	return out, err
}

func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, mealPath(id), nil, nil)
}

func (c *Client) ListCuisines(ctx context.Context) (models.CuisineList, error) {
	var out models.CuisineList
	err := c.do(ctx, http.MethodGet, "/api/dinner/cuisines", nil, &out)
	return out, err
}

// Health returns the status string reported by the server.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out.Status, err
}

func mealPath(id string) string {
	return "/api/meals/" + url.PathEscape(id)
}

// do performs exactly one request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestFailed(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newRequestFailed(resp *http.Response) *RequestFailedError {
	status := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}

	e := &RequestFailedError{StatusCode: resp.StatusCode, Status: status}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Detail
		}
	}
	return e
}
