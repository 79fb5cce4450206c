package meetingsim

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// HTTPClient wraps http.Client with a timeout and a bearer token.
type HTTPClient struct {
	client *http.Client
	token  string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration, token string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		token: token,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.client.Do(req)
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// assignWeek posts one meeting request and decodes the staffed meeting.
func assignWeek(ctx context.Context, client *HTTPClient, baseURL string, req MeetingRequest) (MeetingResponse, error) {
	resp, err := client.Post(ctx, baseURL+"/v1/assign_meeting", req)
	if err != nil {
		return MeetingResponse{}, fmt.Errorf("assign request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return MeetingResponse{}, fmt.Errorf("failed to read assign response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return MeetingResponse{}, fmt.Errorf("assign returned status %d: %s", resp.StatusCode, string(body))
	}

	var meeting MeetingResponse
	if err := unmarshalJSON(body, &meeting); err != nil {
		return MeetingResponse{}, fmt.Errorf("failed to decode assign response: %w", err)
	}
	return meeting, nil
}

// sendFeedback posts one verdict and decodes the receipt.
func sendFeedback(ctx context.Context, client *HTTPClient, baseURL string, fb FeedbackRequest) (Receipt, error) {
	resp, err := client.Post(ctx, baseURL+"/v1/feedback", fb)
	if err != nil {
		return Receipt{}, fmt.Errorf("feedback request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read feedback response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return Receipt{}, fmt.Errorf("feedback returned status %d: %s", resp.StatusCode, string(body))
	}

	var receipt Receipt
	if err := unmarshalJSON(body, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("failed to decode feedback response: %w", err)
	}
	return receipt, nil
}
