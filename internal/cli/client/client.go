// Package client is the HTTP client for the Podium API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents an HTTP client for the Podium API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// APIError is a non-success response from the server, carrying the server's
// error message when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// apiError extracts the {"error": "..."} body shape into an APIError.
func apiError(statusCode int, body []byte) *APIError {
	var parsed struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)
	return &APIError{StatusCode: statusCode, Message: parsed.Error}
}

// do issues a request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// User is the profile record returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is the response shape of signup, login and verify.
type AuthResult struct {
	User    *User `json:"user"`
	Session *struct {
		AccessToken string `json:"access_token"`
	} `json:"session"`
	IsAdmin bool `json:"is_admin"`
}

// Signup registers a new account
func (c *Client) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates and returns the session token with the admin flag
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout notifies the server that the session is over
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Verify validates the token and returns the fresh profile and admin flag
func (c *Client) Verify(ctx context.Context, token string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodGet, "/auth/verify", token, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Event is a competition category
type Event struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameNepali string `json:"name_nepali"`
}

// ListEvents returns all events (public)
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/api/events", "", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventSession is one term of an event
type EventSession struct {
	ID            string `json:"id"`
	EventID       string `json:"event_id"`
	Name          string `json:"name"`
	SessionNumber int    `json:"session_number"`
	Language      string `json:"language"`
	IsActive      bool   `json:"is_active"`
}

// ListSessions returns the sessions of an event
func (c *Client) ListSessions(ctx context.Context, token, eventID string) ([]EventSession, error) {
	var sessions []EventSession
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+eventID, token, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Week is one round within a session
type Week struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	WeekNumber int    `json:"week_number"`
	Topic      string `json:"topic"`
	IsPartial  bool   `json:"is_partial"`
}

// ListWeeks returns the weeks of a session
func (c *Client) ListWeeks(ctx context.Context, token, sessionID string) ([]Week, error) {
	var weeks []Week
	if err := c.do(ctx, http.MethodGet, "/api/weeks/"+sessionID, token, nil, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

// Student is a roster entry
type Student struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Grade    *int   `json:"grade"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// ListStudents returns the student roster (admin)
func (c *Client) ListStudents(ctx context.Context, token string) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/admin/api/students", token, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// CreateStudent adds a roster entry (admin)
func (c *Client) CreateStudent(ctx context.Context, token, fullName string, grade *int, email string) (*Student, error) {
	var student Student
	err := c.do(ctx, http.MethodPost, "/admin/api/students", token, map[string]interface{}{
		"full_name": fullName,
		"grade":     grade,
		"email":     email,
	}, &student)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ImportSummary reports the outcome of a CSV import
type ImportSummary struct {
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
	Success   bool     `json:"success"`
}

// ImportCSV uploads CSV content for roster import (admin)
func (c *Client) ImportCSV(ctx context.Context, token, content string) (*ImportSummary, error) {
	var summary ImportSummary
	err := c.do(ctx, http.MethodPost, "/admin/api/import-csv", token, map[string]string{
		"content": content,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Judge is a display judge
type Judge struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// ListJudges returns all judges (admin)
func (c *Client) ListJudges(ctx context.Context, token string) ([]Judge, error) {
	var judges []Judge
	if err := c.do(ctx, http.MethodGet, "/admin/api/judges", token, nil, &judges); err != nil {
		return nil, err
	}
	return judges, nil
}

// Winner is one published winner on the public board
type Winner struct {
	WeekID      string `json:"week_id"`
	WeekNumber  int    `json:"week_number"`
	Topic       string `json:"topic"`
	SessionName string `json:"session_name"`
	EventName   string `json:"event_name"`
	StudentName string `json:"student_name"`
	Grade       *int   `json:"grade"`
	Position    int    `json:"position"`
	Score       int    `json:"score"`
}

// ListWinners returns published winners (public), optionally filtered by event
func (c *Client) ListWinners(ctx context.Context, eventID string) ([]Winner, error) {
	path := "/api/winners"
	if eventID != "" {
		path += "?event_id=" + eventID
	}
	var winners []Winner
	if err := c.do(ctx, http.MethodGet, path, "", nil, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

// RandomSelection is the outcome of a random participant draw
type RandomSelection struct {
	Selected       []Student `json:"selected"`
	Requested      int       `json:"requested"`
	AvailableCount int       `json:"available_count"`
	IsPartial      bool      `json:"is_partial"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

// AddRandomParticipants draws random unspoken students into a week (admin)
func (c *Client) AddRandomParticipants(ctx context.Context, token, weekID string, count int, grade *int, acceptPartial bool) (*RandomSelection, error) {
	var selection RandomSelection
	err := c.do(ctx, http.MethodPost, "/admin/api/weeks/"+weekID+"/add-random-participants", token,
		map[string]interface{}{
			"count":          count,
			"grade":          grade,
			"accept_partial": acceptPartial,
		}, &selection)
	if err != nil {
		return nil, err
	}
	return &selection, nil
}
