// -----------------------------------------------------------------------
// Jenkins API client - job tree listing, job config, last-build lookup
// -----------------------------------------------------------------------

package jenkins

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	// A full run makes one listing call per folder plus three calls per
	// job; the limiter keeps ~900 jobs from hammering the server.
	DefaultRateLimit = 10

	// treeQuery asks the remote API for names and classes one level deep,
	// plus a nested jobs marker so folders can be told apart from leaves.
	treeQuery = "tree=jobs[name,url,jobs[name]]"
)

// Client talks to the Jenkins JSON and config.xml APIs. It implements
// interfaces.CIServer.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
	crumbField string
	crumbValue string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithInsecureTLS disables certificate verification. Internal Jenkins
// servers commonly run self-signed certificates.
func WithInsecureTLS() ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
}

// NewClient creates a Jenkins API client.
func NewClient(baseURL, username, apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = arbor.NewLogger()
	}

	return c
}

// FetchCrumb fetches the CSRF crumb and attaches it to subsequent requests.
// Servers with crumb issuing disabled return 404; that is not an error.
func (c *Client) FetchCrumb(ctx context.Context) error {
	body, err := c.get(ctx, "/crumbIssuer/api/json", "jenkins.fetch_crumb")
	if err != nil {
		if interfaces.IsNotFound(err) {
			c.logger.Debug().Msg("Crumb issuer disabled on server")
			return nil
		}
		return err
	}

	var crumb struct {
		Crumb             string `json:"crumb"`
		CrumbRequestField string `json:"crumbRequestField"`
	}
	if err := json.Unmarshal(body, &crumb); err != nil {
		return fmt.Errorf("failed to decode crumb response: %w", err)
	}

	c.crumbField = crumb.CrumbRequestField
	c.crumbValue = crumb.Crumb
	c.logger.Debug().Str("field", c.crumbField).Msg("Jenkins crumb fetched")
	return nil
}

// jobsResponse is the shape of api/json?tree=jobs[...]
type jobsResponse struct {
	Jobs []struct {
		Name  string `json:"name"`
		Class string `json:"_class"`
		URL   string `json:"url"`
		Jobs  []struct {
			Name string `json:"name"`
		} `json:"jobs"`
	} `json:"jobs"`
}

// ListChildren returns the items directly under a folder path.
func (c *Client) ListChildren(ctx context.Context, path []string) ([]models.ChildRef, error) {
	body, err := c.get(ctx, jobPath(path)+"/api/json?"+treeQuery, "jenkins.list_children")
	if err != nil {
		return nil, err
	}

	var resp jobsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode jobs listing for %q: %w", models.JoinPath(path), err)
	}

	children := make([]models.ChildRef, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		children = append(children, models.ChildRef{
			Name:        j.Name,
			Class:       j.Class,
			URL:         j.URL,
			HasChildren: j.Jobs != nil,
		})
	}
	return children, nil
}

// GetJobMetadata resolves pipeline type, SCM URL, Jenkinsfile path and
// branch specifier from the job's config.xml.
func (c *Client) GetJobMetadata(ctx context.Context, path []string) (*models.JobMetadata, error) {
	body, err := c.get(ctx, jobPath(path)+"/config.xml", "jenkins.get_job_config")
	if err != nil {
		return nil, err
	}

	md, err := parseJobConfig(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config.xml for %q: %w", models.JoinPath(path), err)
	}
	return md, nil
}

// lastBuildResponse is the shape of lastBuild/api/json
type lastBuildResponse struct {
	Timestamp int64 `json:"timestamp"` // Milliseconds since epoch
}

// GetLastBuildTimestamp returns the timestamp of the job's last build, or
// (nil, nil) when the job has never run. Jenkins answers 404 for a job with
// no builds, which is semantic absence, not a failure.
func (c *Client) GetLastBuildTimestamp(ctx context.Context, path []string) (*time.Time, error) {
	body, err := c.get(ctx, jobPath(path)+"/lastBuild/api/json", "jenkins.get_last_build")
	if err != nil {
		if interfaces.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var resp lastBuildResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode last build for %q: %w", models.JoinPath(path), err)
	}
	if resp.Timestamp == 0 {
		return nil, nil
	}

	ts := time.UnixMilli(resp.Timestamp).UTC()
	return &ts, nil
}

// get performs a rate-limited authenticated GET and maps HTTP failures onto
// the collaborator error taxonomy.
func (c *Client) get(ctx context.Context, apiPath, op string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	if c.crumbField != "" {
		req.Header.Set(c.crumbField, c.crumbValue)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &interfaces.TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &interfaces.TransientError{Op: op, Err: err}
		}
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %s: %w", op, apiPath, interfaces.ErrNotFound)

	default:
		// Auth, rate-limit and server errors are all recoverable from the
		// run's point of view: flag the job, keep the batch going.
		return nil, &interfaces.TransientError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status for %s", apiPath),
		}
	}
}

// jobPath renders hierarchy segments as the /job/a/job/b URL form.
func jobPath(path []string) string {
	var sb strings.Builder
	for _, segment := range path {
		sb.WriteString("/job/")
		sb.WriteString(url.PathEscape(segment))
	}
	return sb.String()
}
