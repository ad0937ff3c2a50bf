package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/myaicommunity/agenthub/api"
	"github.com/myaicommunity/agenthub/models"
)

// ErrSessionEnded is returned when the server rejects the current token.
// Callers should treat it as a signal to drop back to the login flow.
var ErrSessionEnded = errors.New("session ended")

// APIError carries the failure envelope of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client is a thin consumer of the REST surface. The bearer token is read
// from the injected TokenStore on every request.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

func New(baseURL string, httpClient *http.Client, tokens TokenStore) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *api.Pagination `json:"pagination"`
	Errors     []string        `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, _ := c.tokens.Load(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", env.Message, ErrSessionEnded)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}

	return &env, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) (*envelope, error) {
	env, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, err
		}
	}
	return env, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) (*envelope, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// ProjectPage is one page of the listing plus its pagination summary.
type ProjectPage struct {
	Projects   []models.Project
	Pagination api.Pagination
}

// ListOptions narrow the project listing.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
	Status   string
}

func (c *Client) ListProjects(ctx context.Context, opts ListOptions) (ProjectPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	path := "/api/projects"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var projects []models.Project
	env, err := c.getJSON(ctx, path, &projects)
	if err != nil {
		return ProjectPage{}, err
	}

	page := ProjectPage{Projects: projects}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (models.Project, error) {
	var project models.Project
	if _, err := c.getJSON(ctx, "/api/projects/"+id.String(), &project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (c *Client) CreateProject(ctx context.Context, draft Draft) (models.Project, error) {
	contentType, body, err := encodeDraft(draft)
	if err != nil {
		return models.Project{}, err
	}

	env, err := c.do(ctx, http.MethodPost, "/api/projects", contentType, body)
	if err != nil {
		return models.Project{}, err
	}

	var project models.Project
	if err := json.Unmarshal(env.Data, &project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, draft Draft) (models.Project, error) {
	contentType, body, err := encodeDraft(draft)
	if err != nil {
		return models.Project{}, err
	}

	env, err := c.do(ctx, http.MethodPut, "/api/projects/"+id.String(), contentType, body)
	if err != nil {
		return models.Project{}, err
	}

	var project models.Project
	if err := json.Unmarshal(env.Data, &project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/projects/"+id.String(), "", nil)
	return err
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if _, err := c.getJSON(ctx, "/api/projects/meta/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FileAttachment is the transient handle of an image chosen for upload.
type FileAttachment struct {
	Name     string
	MimeType string
	Reader   io.Reader
}

// encodeDraft serializes a draft into a multipart body: scalar fields as
// plain strings, categories/tools as JSON-encoded arrays, rating as its
// string representation, and the file attached only when one was chosen.
func encodeDraft(draft Draft) (contentType string, body io.Reader, err error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":                    draft.Name,
		"projectName":             draft.ProjectName,
		"projectDescription":      draft.ProjectDescription,
		"linkedProfile":           draft.LinkedProfile,
		"videoLink":               draft.VideoLink,
		"flowFileLink":            draft.FlowFileLink,
		"deployedLink":            draft.DeployedLink,
		"instructionDocumentLink": draft.InstructionDocumentLink,
		"rating":                  strconv.Itoa(draft.Rating),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", nil, err
		}
	}

	for name, values := range map[string][]string{
		"categories": draft.Categories,
		"tools":      draft.Tools,
	} {
		encoded, err := json.Marshal(values)
		if err != nil {
			return "", nil, err
		}
		if err := writer.WriteField(name, string(encoded)); err != nil {
			return "", nil, err
		}
	}

	if draft.File != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="backgroundImage"; filename="%s"`, draft.File.Name))
		header.Set("Content-Type", draft.File.MimeType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return "", nil, err
		}
		if _, err := io.Copy(part, draft.File.Reader); err != nil {
			return "", nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return "", nil, err
	}
	return writer.FormDataContentType(), &buf, nil
}
