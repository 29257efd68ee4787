// Package api talks to the queue service's event-log HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Event is one delivery-log record reported by the queue service.
type Event struct {
	Time       int64               `json:"time"` // unix milliseconds
	MessageID  string              `json:"messageId"`
	State      string              `json:"state"`
	URL        string              `json:"url"`
	QueueName  string              `json:"queueName,omitempty"`
	Header     map[string][]string `json:"header,omitempty"`
	Body       string              `json:"body,omitempty"` // base64-encoded payload
	Method     string              `json:"method,omitempty"`
	MaxRetries int                 `json:"maxRetries,omitempty"`
}

// Timestamp converts the millisecond epoch time to a time.Time.
func (e Event) Timestamp() time.Time {
	return time.UnixMilli(e.Time)
}

// HTTPError is a non-2xx response from the log endpoint.
type HTTPError struct {
	Status     int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Status, e.StatusText)
}

// Client talks to the event-log endpoint of a queue service.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client for the given API base URL. An empty token
// means unauthenticated requests: no Authorization header is sent at all.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchEvents retrieves the recent delivery events from {baseURL}/v2/logs,
// sorted descending by event time (stable, ties keep response order).
func (c *Client) FetchEvents(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/logs", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	events := decodeEvents(data)
	sortEventsDesc(events)
	return events, nil
}

// decodeEvents pulls the events array out of a log response. A missing or
// non-list "events" field and a malformed body all normalize to an empty
// list; the endpoint's shape is not trusted.
func decodeEvents(data []byte) []Event {
	var envelope struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return []Event{}
	}

	var events []Event
	if err := json.Unmarshal(envelope.Events, &events); err != nil {
		return []Event{}
	}
	if events == nil {
		events = []Event{}
	}
	return events
}

func sortEventsDesc(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time > events[j].Time
	})
}
