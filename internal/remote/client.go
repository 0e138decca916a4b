// Package remote is the HTTP client for the shared event store.
//
// Every call either returns the store's answer or one of three errors:
// *model.ValidationError (400), model.ErrNotFound (404), or an error
// wrapping model.ErrRemoteUnavailable for anything else, including
// network failures and bodies that do not decode.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client talks to the /events endpoint of one store.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for the store rooted at baseURL, e.g.
// "http://localhost:8080". A non-positive timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/events",
		http:     &http.Client{Timeout: timeout},
	}
}

// List returns the collection, narrowed by f. With f.ID set the result
// holds exactly one record, or the call fails with model.ErrNotFound.
func (c *Client) List(ctx context.Context, f model.Filter) ([]model.Event, error) {
	if f.ID != "" {
		ev, err := c.Get(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		return []model.Event{ev}, nil
	}

	q := url.Values{}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}

	var events []model.Event
	if err := c.do(ctx, http.MethodGet, q, nil, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// Get returns the record with the given id.
func (c *Client) Get(ctx context.Context, id string) (model.Event, error) {
	var ev model.Event
	if err := c.do(ctx, http.MethodGet, url.Values{"id": {id}}, nil, &ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// Create sends ev to the store and returns the record as stored. The
// store validates again and may rewrite sanitized fields.
func (c *Client) Create(ctx context.Context, ev model.Event) (model.Event, error) {
	var resp model.CreateEventResponse
	if err := c.do(ctx, http.MethodPost, nil, ev.Request(), &resp); err != nil {
		return model.Event{}, err
	}
	if !resp.Success {
		return model.Event{}, fmt.Errorf("%w: create not acknowledged", model.ErrRemoteUnavailable)
	}
	return resp.Event, nil
}

// Delete removes the record with the given id and returns the id the
// store reports as removed.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var resp model.DeleteEventResponse
	if err := c.do(ctx, http.MethodDelete, url.Values{"id": {id}}, nil, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: delete not acknowledged", model.ErrRemoteUnavailable)
	}
	return resp.EventID, nil
}

func (c *Client) do(ctx context.Context, method string, q url.Values, body, out any) error {
	target := c.endpoint
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Debug("remote request", "method", method, "url", target)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", model.ErrRemoteUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return model.ParseValidationMessage(errorMessage(data))
	case resp.StatusCode == http.StatusNotFound:
		return model.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s", model.ErrRemoteUnavailable, resp.Status)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", model.ErrRemoteUnavailable, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var e model.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		return "Invalid request"
	}
	return e.Error
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, model.ErrRemoteUnavailable)
}
