package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gymplan/internal/models"
)

// Client is the authoritative remote store contract: a per-user collection
// of workout documents keyed by workout id. The remote wins on reload; the
// schedule store decides when to call it and how to reconcile.
type Client interface {
	FetchAll(ctx context.Context, userID string) ([]models.Workout, error)
	Fetch(ctx context.Context, userID, workoutID string) (*models.Workout, error)
	Set(ctx context.Context, userID string, workout *models.Workout) error
	Patch(ctx context.Context, userID, workoutID string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, workoutID string) error
}

// RetryPolicy retries transient remote failures with exponential backoff.
// It holds no mutable state; the same value can be shared by any number of
// concurrent calls.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		Multiplier:     2.0,
	}
}

// Do runs op up to MaxAttempts times, sleeping between attempts. It returns
// the last error when every attempt fails, or the context error if the
// context is cancelled mid-backoff.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.InitialBackoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * p.Multiplier)
	}
	return fmt.Errorf("remote call failed after %d attempt(s): %w", attempts, err)
}

// HTTPClient talks JSON to the remote workout collection at
// {baseURL}/users/{userID}/workouts[/{workoutID}].
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
}

func NewHTTPClient(baseURL string, retry RetryPolicy) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retry:      retry,
	}
}

func (c *HTTPClient) collectionURL(userID string) string {
	return fmt.Sprintf("%s/users/%s/workouts", c.baseURL, userID)
}

func (c *HTTPClient) documentURL(userID, workoutID string) string {
	return fmt.Sprintf("%s/users/%s/workouts/%s", c.baseURL, userID, workoutID)
}

func (c *HTTPClient) FetchAll(ctx context.Context, userID string) ([]models.Workout, error) {
	var workouts []models.Workout
	err := c.retry.Do(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, c.collectionURL(userID), nil, &workouts)
	})
	if err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) Fetch(ctx context.Context, userID, workoutID string) (*models.Workout, error) {
	var workout models.Workout
	err := c.retry.Do(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, c.documentURL(userID, workoutID), nil, &workout)
	})
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

func (c *HTTPClient) Set(ctx context.Context, userID string, workout *models.Workout) error {
	return c.retry.Do(ctx, func() error {
		return c.doJSON(ctx, http.MethodPut, c.documentURL(userID, workout.ID), workout, nil)
	})
}

func (c *HTTPClient) Patch(ctx context.Context, userID, workoutID string, fields map[string]interface{}) error {
	return c.retry.Do(ctx, func() error {
		return c.doJSON(ctx, http.MethodPatch, c.documentURL(userID, workoutID), fields, nil)
	})
}

func (c *HTTPClient) Delete(ctx context.Context, userID, workoutID string) error {
	return c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.documentURL(userID, workoutID), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("delete request failed: %w", err)
		}
		defer resp.Body.Close()

		// A document already gone is a successful delete.
		if resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return checkStatus(resp)
	})
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("remote store returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
}
