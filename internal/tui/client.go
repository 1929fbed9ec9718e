package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fentz26/breakroom/internal/models"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the breakroom API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// Send posts a chat message on behalf of an agent.
func (c *Client) Send(agentID, displayName, text string) (*Reply, error) {
	body := map[string]string{
		"agent_id":     agentID,
		"display_name": displayName,
		"text":         text,
	}
	resp, err := c.post("/messages", body)
	if err != nil {
		return nil, err
	}

	var reply Reply
	if err := json.Unmarshal(resp, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Snapshot fetches the current board.
func (c *Client) Snapshot() (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.getJSON("/snapshot?format=json", &snap)
	return snap, err
}

// Absences lists logged absences, newest first. An empty agentID lists everyone.
func (c *Client) Absences(agentID string, openOnly bool, limit int) ([]models.Absence, error) {
	q := url.Values{}
	if agentID != "" {
		q.Set("agent", agentID)
	}
	if openOnly {
		q.Set("open", "true")
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/absences"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var absences []models.Absence
	if err := c.getJSON(path, &absences); err != nil {
		return nil, err
	}
	return absences, nil
}

// CheckHealth checks if the daemon is healthy
func (c *Client) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var health struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, err
	}

	return health.OK, nil
}

func (c *Client) getJSON(path string, v interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	return body, nil
}
