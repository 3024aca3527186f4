// Package api implements the HTTP client for the study backend, plus an
// in-process mock backend for standalone runs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the study backend. All methods take a context; callers
// set per-call timeouts.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) InitializeSession(ctx context.Context, req InitializeSessionRequest) (InitializeSessionResponse, error) {
	var out InitializeSessionResponse
	err := c.post(ctx, "/api/initialize-session", req, &out)
	return out, err
}

func (c *Client) StudyConfig(ctx context.Context) (StudyConfig, error) {
	var out StudyConfig
	err := c.get(ctx, "/api/study-config", nil, &out)
	return out, err
}

func (c *Client) TutorialInit(ctx context.Context, sessionID string) (TutorialInit, error) {
	var out TutorialInit
	err := c.get(ctx, "/api/tutorial/init", url.Values{"session_id": {sessionID}}, &out)
	return out, err
}

func (c *Client) TutorialComplete(ctx context.Context, req TutorialComplete) error {
	return c.post(ctx, "/api/tutorial/complete", req, nil)
}

func (c *Client) GameInit(ctx context.Context, sessionID string) (GameInit, error) {
	var out GameInit
	err := c.get(ctx, "/api/game/init", url.Values{"session_id": {sessionID}}, &out)
	return out, err
}

func (c *Client) NextRound(ctx context.Context, sessionID string, currentIndex int) (NextRound, error) {
	var out NextRound
	q := url.Values{
		"sessionId":    {sessionID},
		"currentIndex": {strconv.Itoa(currentIndex)},
	}
	err := c.get(ctx, "/api/game/next", q, &out)
	return out, err
}

func (c *Client) PostEvent(ctx context.Context, ev GameEvent) error {
	return c.post(ctx, "/api/game-events", ev, nil)
}

func (c *Client) SubmitWords(ctx context.Context, sub WordSubmission) error {
	return c.post(ctx, "/api/word-submissions", sub, nil)
}

func (c *Client) SubmitMeanings(ctx context.Context, sub MeaningSubmission) error {
	return c.post(ctx, "/api/meanings/submit", sub, nil)
}

func (c *Client) GameResults(ctx context.Context, sessionID, prolificID string) (GameResults, error) {
	var out GameResults
	q := url.Values{"sessionId": {sessionID}, "prolificId": {prolificID}}
	err := c.get(ctx, "/api/game-results", q, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, decodeError(resp))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// APIError is a non-2xx response with the backend's detail message, when
// one could be decoded.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// decodeError pulls the detail field out of an error body.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}

// ConvertSolutions turns the wire solutions map, keyed by stringified
// length, into the integer-keyed form the game package uses.
func ConvertSolutions(raw map[string][]string) (map[int][]string, error) {
	out := make(map[int][]string, len(raw))
	for k, words := range raw {
		length, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("solution set key %q: %w", k, err)
		}
		out[length] = words
	}
	return out, nil
}
