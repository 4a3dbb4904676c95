package testrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiPrefix = "/index.php?/api/v2/"

// Client implements API against the TestRail REST API v2.
type Client struct {
	baseURL string
	email   string
	key     string
	client  *http.Client
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New constructs a client authenticating with email and API key.
func New(baseURL, email, key string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		key:     key,
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, projectID int) (Project, error) {
	var project Project
	err := c.get(ctx, fmt.Sprintf("get_project/%d", projectID), &project)
	return project, err
}

// GetSuites lists the suites of a project.
func (c *Client) GetSuites(ctx context.Context, projectID int) ([]Suite, error) {
	return getList[Suite](ctx, c, fmt.Sprintf("get_suites/%d", projectID), "suites")
}

// AddSuite creates a suite.
func (c *Client) AddSuite(ctx context.Context, projectID int, suite Suite) (Suite, error) {
	var created Suite
	err := c.post(ctx, fmt.Sprintf("add_suite/%d", projectID), suite, &created)
	return created, err
}

// GetSections lists the sections of a suite.
func (c *Client) GetSections(ctx context.Context, projectID, suiteID int) ([]Section, error) {
	return getList[Section](ctx, c, fmt.Sprintf("get_sections/%d&suite_id=%d", projectID, suiteID), "sections")
}

// AddSection creates a section, nested when ParentID is set.
func (c *Client) AddSection(ctx context.Context, projectID int, section Section) (Section, error) {
	var created Section
	err := c.post(ctx, fmt.Sprintf("add_section/%d", projectID), section, &created)
	return created, err
}

// AddCase creates a case in a section.
func (c *Client) AddCase(ctx context.Context, sectionID int, tc Case) (Case, error) {
	var created Case
	err := c.post(ctx, fmt.Sprintf("add_case/%d", sectionID), tc, &created)
	return created, err
}

// UpdateCase overwrites an existing case.
func (c *Client) UpdateCase(ctx context.Context, caseID int, tc Case) (Case, error) {
	var updated Case
	err := c.post(ctx, fmt.Sprintf("update_case/%d", caseID), tc, &updated)
	return updated, err
}

// GetPlan fetches a plan with its entries and runs.
func (c *Client) GetPlan(ctx context.Context, planID int) (Plan, error) {
	var plan Plan
	err := c.get(ctx, fmt.Sprintf("get_plan/%d", planID), &plan)
	return plan, err
}

// AddPlanEntry adds a suite entry to a plan.
func (c *Client) AddPlanEntry(ctx context.Context, planID int, entry PlanEntry) (PlanEntry, error) {
	var created PlanEntry
	err := c.post(ctx, fmt.Sprintf("add_plan_entry/%d", planID), entry, &created)
	return created, err
}

// GetTests lists the tests of a run.
func (c *Client) GetTests(ctx context.Context, runID int) ([]Test, error) {
	return getList[Test](ctx, c, fmt.Sprintf("get_tests/%d", runID), "tests")
}

// AddResults submits a batch of results to a run.
func (c *Client) AddResults(ctx context.Context, runID int, results []Result) ([]Result, error) {
	var created []Result
	payload := struct {
		Results []Result `json:"results"`
	}{Results: results}
	err := c.post(ctx, fmt.Sprintf("add_results/%d", runID), payload, &created)
	return created, err
}

// GetConfigs lists the configuration groups of a project.
func (c *Client) GetConfigs(ctx context.Context, projectID int) ([]ConfigGroup, error) {
	var groups []ConfigGroup
	err := c.get(ctx, fmt.Sprintf("get_configs/%d", projectID), &groups)
	return groups, err
}

// GetStatuses lists the result statuses.
func (c *Client) GetStatuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	err := c.get(ctx, "get_statuses", &statuses)
	return statuses, err
}

// GetPriorities lists the case priorities.
func (c *Client) GetPriorities(ctx context.Context) ([]Priority, error) {
	var priorities []Priority
	err := c.get(ctx, "get_priorities", &priorities)
	return priorities, err
}

// GetCaseTypes lists the case types.
func (c *Client) GetCaseTypes(ctx context.Context) ([]CaseType, error) {
	var types []CaseType
	err := c.get(ctx, "get_case_types", &types)
	return types, err
}

// GetTemplates lists the case templates of a project.
func (c *Client) GetTemplates(ctx context.Context, projectID int) ([]Template, error) {
	var templates []Template
	err := c.get(ctx, fmt.Sprintf("get_templates/%d", projectID), &templates)
	return templates, err
}

// page is the paginated list envelope returned by newer TestRail versions.
type page struct {
	Links struct {
		Next *string `json:"next"`
	} `json:"_links"`
}

// getList reads a list endpoint, following pagination links when the
// response is an envelope instead of a bare array.
func getList[T any](ctx context.Context, c *Client, endpoint, key string) ([]T, error) {
	items := make([]T, 0)
	next := apiPrefix + endpoint
	for next != "" {
		body, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []T
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				return nil, fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return append(items, batch...), nil
		}
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode %s: %w", endpoint, err)
		}
		var batch []T
		if raw, ok := envelope[key]; ok {
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("decode %s: %w", endpoint, err)
			}
		}
		items = append(items, batch...)
		var p page
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", endpoint, err)
		}
		next = ""
		if p.Links.Next != nil && *p.Links.Next != "" {
			next = "/index.php?" + strings.TrimPrefix(*p.Links.Next, "/index.php?")
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", endpoint, err)
	}
	body, err := c.do(ctx, http.MethodPost, apiPrefix+endpoint, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.email, c.key)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("testrail %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read testrail response: %w", err)
	}
	c.logger.Debug("testrail request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeHTTPError(method, strings.TrimPrefix(path, apiPrefix), resp.StatusCode, body)
	}
	return body, nil
}
