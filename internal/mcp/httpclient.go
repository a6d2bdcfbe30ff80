package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives on the remote server. The bearer token identifies the user, so the
// userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL,
// authenticating with the given API token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiEnvelope mirrors the REST API's uniform response shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("httpclient: decode %s data: %w", path, err)
		}
	}
	return nil
}

func monthQuery(year, month int) url.Values {
	v := url.Values{}
	if year > 0 {
		v.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		v.Set("month", strconv.Itoa(month))
	}
	return v
}

func (c *HTTPClient) VolumeOverTime(ctx context.Context, _ int64, year, month int) ([]models.DailyVolume, error) {
	var out []models.DailyVolume
	if err := c.get(ctx, "/api/workout-logs/volume", monthQuery(year, month), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) VolumeByMuscle(ctx context.Context, _ int64, year, month int) ([]models.MuscleVolume, error) {
	var out []models.MuscleVolume
	if err := c.get(ctx, "/api/workout-logs/muscle", monthQuery(year, month), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListWorkoutSets(ctx context.Context, _ int64) ([]models.WorkoutSet, error) {
	var out []models.WorkoutSet
	if err := c.get(ctx, "/api/workout-sets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetWorkoutSet(ctx context.Context, id, _ int64) (*models.WorkoutSet, error) {
	var out models.WorkoutSet
	if err := c.get(ctx, "/api/workout-sets/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RecentWorkoutLogs(ctx context.Context, _ int64, limit int) ([]models.WorkoutLog, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []models.WorkoutLog
	if err := c.get(ctx, "/api/workout-logs/recent", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
