// Package catalog drives the tool catalog: it loads the list once, filters
// it by the search text and merges the outcome of every write back into the
// loaded list without fetching it again.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/internal/auth"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/form"
)

// Messages shown to the user
const (
	MsgIncorrectPassword = "Incorrect password. Deletion cancelled."
	MsgDeleteFailed      = "Failed to delete tool"
)

var (
	// ErrCancelled is returned when the user dismisses the delete prompt
	ErrCancelled = errors.New("deletion cancelled")
	// ErrNotAuthorized is returned when the delete secret is rejected
	ErrNotAuthorized = errors.New("deletion not authorized")
)

// Gateway reads and writes tools
type Gateway interface {
	FetchAll(ctx context.Context) []domain.Tool
	Create(ctx context.Context, input domain.ToolInput) (*domain.Tool, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ToolPatch) (*domain.Tool, error)
	Delete(ctx context.Context, tool *domain.Tool) error
}

// Authorizer decides whether the secret typed into the delete prompt
// allows the deletion
type Authorizer interface {
	Authorize(ctx context.Context, secret string) error
}

// UI is what the controller needs from the front-end
type UI interface {
	form.Alerter
	// Prompt asks for a line of input. ok is false when the user dismissed it.
	Prompt(message string) (value string, ok bool)
	OpenURL(url string) error
}

// Controller owns the loaded tool list and the search text
type Controller struct {
	gateway    Gateway
	authorizer Authorizer
	ui         UI
	form       *form.Form
	logger     *zap.Logger

	mu      sync.Mutex
	cache   *Cache
	query   string
	loaded  bool
	loading bool
}

// NewController creates a controller. f is opened for add and edit.
func NewController(gateway Gateway, authorizer Authorizer, ui UI, f *form.Form, logger *zap.Logger) *Controller {
	return &Controller{
		gateway:    gateway,
		authorizer: authorizer,
		ui:         ui,
		form:       f,
		logger:     logger,
		cache:      NewCache(),
	}
}

// Load fetches the tool list. Only the first call fetches.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.loading = true
	c.mu.Unlock()

	tools := c.gateway.FetchAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Reset(tools)
	c.loading = false
	c.logger.Debug("loaded tools", zap.Int("count", c.cache.Len()))
}

// Loading reports whether the initial load is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetQuery sets the search text
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
}

// Query returns the search text
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Tools returns every loaded tool, newest first
func (c *Controller) Tools() []domain.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Items()
}

// Visible returns the loaded tools matching the search text
func (c *Controller) Visible() []domain.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.cache.Items(), c.query)
}

// Get returns a loaded tool by id
func (c *Controller) Get(id uuid.UUID) (domain.Tool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(id)
}

// Open shows the tool's URL in a new browser context
func (c *Controller) Open(tool *domain.Tool) error {
	return c.ui.OpenURL(tool.URL)
}

// Add opens the form in create mode
func (c *Controller) Add() {
	c.form.Open(nil)
}

// Edit opens the form in edit mode, seeded from tool
func (c *Controller) Edit(tool *domain.Tool) {
	c.form.Open(tool)
}

// Submit submits the form with Save as its save intent
func (c *Controller) Submit(ctx context.Context) error {
	return c.form.Submit(ctx, c.Save)
}

// Save persists a form submission. In create mode the new tool is put at
// the front of the list; in edit mode it replaces the edited tool in place.
// The list is left alone when the gateway fails.
func (c *Controller) Save(ctx context.Context, input domain.ToolInput) error {
	if editing := c.form.Editing(); editing != nil {
		updated, err := c.gateway.Update(ctx, editing.ID, input.Patch())
		if err != nil {
			return fmt.Errorf("update tool %s: %w", editing.ID, err)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.cache.Replace(*updated) {
			c.logger.Warn("updated tool is not in the list", zap.String("tool_id", updated.ID.String()))
		}
		return nil
	}

	created, err := c.gateway.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("create tool: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Prepend(*created)
	return nil
}

// Delete asks for the admin secret and deletes tool once it is accepted.
// The tool leaves the list only after the gateway confirms the deletion.
func (c *Controller) Delete(ctx context.Context, tool *domain.Tool) error {
	secret, ok := c.ui.Prompt(fmt.Sprintf("To delete %q, please enter the admin password:", tool.Title))
	if !ok {
		return ErrCancelled
	}

	if err := c.authorizer.Authorize(ctx, secret); err != nil {
		if errors.Is(err, auth.ErrInvalidSecret) {
			c.ui.Alert(MsgIncorrectPassword)
			return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
		}
		c.logger.Error("failed to authorize deletion", zap.Error(err))
		c.ui.Alert(MsgDeleteFailed)
		return fmt.Errorf("authorize deletion: %w", err)
	}

	if err := c.gateway.Delete(ctx, tool); err != nil {
		c.logger.Error("failed to delete tool",
			zap.String("tool_id", tool.ID.String()),
			zap.Error(err))
		c.ui.Alert(MsgDeleteFailed)
		return fmt.Errorf("delete tool %s: %w", tool.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(tool.ID)
	return nil
}
