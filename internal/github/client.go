// Package github is a small REST client for the code-hosting API, authenticated
// with the provider token a user obtained at sign-in.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dimitrije/gatekeeper/internal/apperr"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://api.github.com"
	requestTimeout = 15 * time.Second
)

type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client that sends token as a bearer credential.
func NewClient(token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = requestTimeout
	return &Client{http: httpClient, baseURL: defaultBaseURL}
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	var out Repository
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var out PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(repo), number)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperr.Internal("failed to build GitHub request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.GitHub("GitHub request failed", apperr.RateLimit{}, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.GitHub("failed to decode GitHub response", apperr.RateLimit{}, err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

func responseError(resp *http.Response, path string) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	cause := fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body.Message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, "GitHub resource not found", cause)
	case isRateLimited(resp):
		return apperr.GitHub("GitHub rate limit exceeded", rateLimit(resp.Header), cause)
	}

	msg := body.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return apperr.GitHub("GitHub API error: "+msg, rateLimit(resp.Header), cause)
}

// isRateLimited matches 429 and the 403 GitHub returns once the quota is spent.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != ""
}

func rateLimit(h http.Header) apperr.RateLimit {
	return apperr.RateLimit{
		Limit:      headerInt(h, "X-RateLimit-Limit"),
		Remaining:  headerInt(h, "X-RateLimit-Remaining"),
		Reset:      headerInt(h, "X-RateLimit-Reset"),
		RetryAfter: headerInt(h, "Retry-After"),
	}
}

func headerInt(h http.Header, key string) *int64 {
	v := h.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
