// Package client talks to the toolshelf API over HTTP. It implements the
// catalog gateway, the delete authorizer and the form uploader for
// front-ends running outside the API process.
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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/internal/auth"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/mapper"
)

const apiPrefix = "/api/v1"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ErrNotAuthorized is returned by Delete when Authorize has not succeeded
// or the admin token was refused
var ErrNotAuthorized = errors.New("admin token missing or rejected")

// Client is safe for concurrent use
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080"
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// FetchAll returns every tool, newest first. Failures are logged and yield
// an empty list.
func (c *Client) FetchAll(ctx context.Context) []domain.Tool {
	tools, err := c.List(ctx)
	if err != nil {
		c.logger.Error("failed to fetch tools", zap.Error(err))
		return []domain.Tool{}
	}
	return tools
}

// List returns every tool, newest first
func (c *Client) List(ctx context.Context) ([]domain.Tool, error) {
	var dtos []domain.ToolDTO
	if err := c.doJSON(ctx, http.MethodGet, "/tools", nil, "", &dtos); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	tools := make([]domain.Tool, len(dtos))
	for i, dto := range dtos {
		tools[i] = mapper.FromToolDTO(dto)
	}
	return tools, nil
}

// Get returns one tool
func (c *Client) Get(ctx context.Context, id uuid.UUID) (*domain.Tool, error) {
	var dto domain.ToolDTO
	if err := c.doJSON(ctx, http.MethodGet, "/tools/"+id.String(), nil, "", &dto); err != nil {
		return nil, fmt.Errorf("get tool %s: %w", id, err)
	}
	tool := mapper.FromToolDTO(dto)
	return &tool, nil
}

// Create adds a tool and returns it as stored
func (c *Client) Create(ctx context.Context, input domain.ToolInput) (*domain.Tool, error) {
	var dto domain.ToolDTO
	if err := c.doJSON(ctx, http.MethodPost, "/tools", mapper.ToCreateToolRequest(input), "", &dto); err != nil {
		return nil, fmt.Errorf("create tool: %w", err)
	}
	tool := mapper.FromToolDTO(dto)
	return &tool, nil
}

// Update applies patch to the tool with id and returns it as stored
func (c *Client) Update(ctx context.Context, id uuid.UUID, patch domain.ToolPatch) (*domain.Tool, error) {
	var dto domain.ToolDTO
	if err := c.doJSON(ctx, http.MethodPatch, "/tools/"+id.String(), mapper.ToUpdateToolRequest(patch), "", &dto); err != nil {
		return nil, fmt.Errorf("update tool %s: %w", id, err)
	}
	tool := mapper.FromToolDTO(dto)
	return &tool, nil
}

// Delete removes a tool using the admin token obtained by Authorize. The
// server cleans up the tool's stored files.
func (c *Client) Delete(ctx context.Context, tool *domain.Tool) error {
	token, ok := c.adminToken()
	if !ok {
		return ErrNotAuthorized
	}

	err := c.doJSON(ctx, http.MethodDelete, "/tools/"+tool.ID.String(), nil, token, nil)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.clearToken()
		return fmt.Errorf("delete tool %s: %w: %v", tool.ID, ErrNotAuthorized, err)
	}
	if err != nil {
		return fmt.Errorf("delete tool %s: %w", tool.ID, err)
	}
	return nil
}

// Authorize exchanges the admin secret for a bearer token used by Delete.
// A refused secret yields auth.ErrInvalidSecret.
func (c *Client) Authorize(ctx context.Context, secret string) error {
	var resp domain.TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/token", domain.TokenRequest{Secret: secret}, "", &resp)
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
		return fmt.Errorf("%w: %s", auth.ErrInvalidSecret, apiErr.Error())
	}
	if err != nil {
		return fmt.Errorf("request admin token: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = resp.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return nil
}

// UploadFile stores file through the API and returns its public URL
func (c *Client) UploadFile(ctx context.Context, file domain.FileUpload, nameHint string) (*domain.UploadFileResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("nameHint", nameHint); err != nil {
		return nil, fmt.Errorf("write name hint: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Filename)))
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Data); err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/files", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var resp domain.UploadFileResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("upload %s: %w", file.Filename, err)
	}
	return &resp, nil
}

func (c *Client) adminToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.tokenExpiry) {
		return "", false
	}
	return c.token, true
}

func (c *Client) clearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, bearer string, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return c.do(req, out)
}

// do sends req and decodes a 2xx body into out. Other statuses become a
// *domain.APIError.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Title == "" {
			apiErr.Title = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
