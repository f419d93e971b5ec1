package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
)

// Client performs authenticated HTTP calls against the JobTrail backend.
//
// A single Client is shared by all components so the credential transport
// and cookie jar apply uniformly.
type Client struct {
	endpoints  shared.EndpointsConfig
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a Client whose requests carry stored credentials via
// [CredentialTransport] and whose cookies persist across calls. invalidate
// is invoked whenever any response comes back 401.
func NewClient(endpoints shared.EndpointsConfig, state store.Store, logger *log.Logger, invalidate func()) *Client {
	// cookiejar.New never fails with nil options
	jar, _ := cookiejar.New(nil)

	return &Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Transport: NewCredentialTransport(state, nil, logger, invalidate),
			Jar:       jar,
		},
		logger: logger,
	}
}

// NewClientWithHTTP creates a Client around an existing [http.Client].
// Used by tests to substitute transports.
func NewClientWithHTTP(endpoints shared.EndpointsConfig, httpClient *http.Client, logger *log.Logger) *Client {
	return &Client{endpoints: endpoints, httpClient: httpClient, logger: logger}
}

// errorBody is the error payload shape the backend uses on non-200 responses.
type errorBody struct {
	Message string `json:"message"`
}

// do performs a request against a fully-qualified endpoint URL and decodes a
// JSON response into result when it is non-nil.
func (c *Client) do(ctx context.Context, method, url string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, eb.Message, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile fetches the user profile. Used for session verification and by
// the dashboard.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	if c.endpoints.ProfileURL == "" {
		return nil, fmt.Errorf("%w: profile endpoint", shared.ErrMissingConfig)
	}

	var profile Profile
	if err := c.do(ctx, http.MethodGet, c.endpoints.ProfileURL, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SubmitScan starts the email scan job and returns the backend task id.
func (c *Client) SubmitScan(ctx context.Context) (string, error) {
	if c.endpoints.ScanURL == "" {
		return "", fmt.Errorf("%w: scan endpoint", shared.ErrMissingConfig)
	}

	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoints.ScanURL, nil, &resp); err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("%w: no task id in response", shared.ErrAPIRequest)
	}

	return resp.TaskID, nil
}

// TaskStatus fetches the raw status string for a task id.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (string, error) {
	if c.endpoints.TaskStatusURL == "" {
		return "", fmt.Errorf("%w: task status endpoint", shared.ErrMissingConfig)
	}

	url := fmt.Sprintf("%s/%s/", strings.TrimRight(c.endpoints.TaskStatusURL, "/"), taskID)

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}

	return resp.Status, nil
}

// AddFetchLog records the first-run starting point before the first scan.
func (c *Client) AddFetchLog(ctx context.Context, lastFetchDate string) error {
	if c.endpoints.FetchLogURL == "" {
		return fmt.Errorf("%w: fetch log endpoint", shared.ErrMissingConfig)
	}

	body := map[string]string{"last_fetch_date": lastFetchDate}
	return c.do(ctx, http.MethodPost, c.endpoints.FetchLogURL, body, nil)
}

// ConnectSheet links a spreadsheet URL to the account.
func (c *Client) ConnectSheet(ctx context.Context, sheetURL string) error {
	if c.endpoints.SheetUpdateURL == "" {
		return fmt.Errorf("%w: sheet update endpoint", shared.ErrMissingConfig)
	}

	body := map[string]string{"google_sheet_url": sheetURL}
	return c.do(ctx, http.MethodPost, c.endpoints.SheetUpdateURL, body, nil)
}
