// Package openqa wraps the narrow contracts this tool has with an openQA
// instance: HTTP reads of job and investigation documents, and the external
// helper CLIs used to clone jobs, adjust priorities and post comments.
package openqa

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// UserAgent identifies this tool on all HTTP reads.
const UserAgent = "openqa-trigger-bisect-jobs"

// jobURLRegex matches both the <host>/tests/<id> and <host>/t<id> page URL forms.
var jobURLRegex = regexp.MustCompile(`^(.+?)/(?:t|tests/)(\d+)`)

// ParseJobURL splits a test-job page URL into the instance base URL and the
// numeric job id.
func ParseJobURL(url string) (host string, id int64, err error) {
	match := jobURLRegex.FindStringSubmatch(url)
	if match == nil {
		return "", 0, fmt.Errorf("%q is not a test job URL", url)
	}
	id, err = strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid job id in URL %q", url)
	}
	return match[1], id, nil
}

// RetryConfig provides the retry policy for HTTP reads, such as the amount of
// retries or backoff duration.
type RetryConfig struct {
	Retries int // How many times a read is attempted until its failure is considered permanent

	Backoff time.Duration // How long to wait between attempts

	BackoffIncrement time.Duration // By how much to increment the backoff on each failed attempt
	MaxBackoff       time.Duration // The maximum duration the backoff may reach after incrementing
}

// A Client reads job and investigation documents from an openQA instance.
type Client struct {
	HTTPClient *http.Client // May be nil to use a default client

	Retry RetryConfig

	Log *logrus.Entry
}

// NewClient returns a client enforcing the passed timeout per request and
// performing each read up to retry.Retries times.
func NewClient(timeout time.Duration, retry RetryConfig, log *logrus.Entry) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Retry:      retry,
		Log:        log,
	}
}

// A Job is the read-only view of an openQA job document.
type Job struct {
	ID int64 `json:"id"`

	Result string `json:"result"`
	Test   string `json:"test"`

	Settings map[string]string `json:"settings"`

	Priority int `json:"priority"`

	Group       string `json:"group"`
	ParentGroup string `json:"parent_group"`

	CloneID *int64 `json:"clone_id"`

	Children map[string][]int64 `json:"children"`
	Parents  map[string][]int64 `json:"parents"`
}

// GroupName returns the job's group, qualified by the parent group if one exists.
func (j *Job) GroupName() string {
	if j.ParentGroup != "" {
		return j.ParentGroup + " / " + j.Group
	}
	return j.Group
}

// HasDependencies reports whether the job is part of any parallel or directly
// chained cluster, upwards or downwards.
func (j *Job) HasDependencies() bool {
	for _, dependencyType := range []string{"Parallel", "Directly chained"} {
		if len(j.Children[dependencyType]) > 0 || len(j.Parents[dependencyType]) > 0 {
			return true
		}
	}
	return false
}

// An Investigation is the platform-supplied investigation document of a job.
type Investigation struct {
	DiffToLastGood string `json:"diff_to_last_good"`
}

// Job fetches the job document with the passed id from the instance at host.
func (c *Client) Job(host string, id int64) (*Job, error) {
	var document struct {
		Job Job `json:"job"`
	}
	if err := c.getJSON(fmt.Sprintf("%s/api/v1/jobs/%d", host, id), &document); err != nil {
		return nil, errors.Join(fmt.Errorf("couldn't fetch job %d from %s", id, host), err)
	}
	return &document.Job, nil
}

// Investigation fetches the investigation document of the job with the passed id.
func (c *Client) Investigation(host string, id int64) (*Investigation, error) {
	var investigation Investigation
	if err := c.getJSON(fmt.Sprintf("%s/tests/%d/investigation_ajax", host, id), &investigation); err != nil {
		return nil, errors.Join(fmt.Errorf("couldn't fetch investigation of job %d from %s", id, host), err)
	}
	return &investigation, nil
}

// getJSON fetches the passed URL and decodes the response body into v,
// retrying transient failures with incrementing, capped backoff.
func (c *Client) getJSON(url string, v any) error {
	retries := c.Retry.Retries
	if retries < 1 {
		retries = 1
	}

	var lastError error
	backoffDuration := c.Retry.Backoff
	for i := 0; i < retries; i++ {
		lastError = c.getJSONOnce(url, v)
		if lastError == nil {
			return nil
		}

		// Manage backoff
		if i != retries-1 {
			c.Log.Debugf("GET %s failed (attempt %d/%d), retrying in %v - %v", url, i+1, retries, backoffDuration, lastError)
			time.Sleep(backoffDuration)
			backoffDuration += c.Retry.BackoffIncrement
			if backoffDuration > c.Retry.MaxBackoff {
				backoffDuration = c.Retry.MaxBackoff
			}
		}
	}

	return lastError
}

func (c *Client) getJSONOnce(url string, v any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %s: %s", url, resp.Status, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
