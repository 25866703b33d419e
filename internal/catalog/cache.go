package catalog

import (
	"github.com/google/uuid"

	"github.com/straye-as/toolshelf/internal/domain"
)

// Cache is the loaded tool list, newest first, with at most one entry per
// id. Writes are merged in locally: created tools go to the front, updated
// tools are replaced where they stand, deleted tools are dropped. Relative
// order never changes otherwise. Cache is not safe for concurrent use.
type Cache struct {
	items []domain.Tool
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{}
}

// Reset replaces the contents with tools in the given order. Later
// duplicates of an id are dropped.
func (c *Cache) Reset(tools []domain.Tool) {
	seen := make(map[uuid.UUID]struct{}, len(tools))
	c.items = make([]domain.Tool, 0, len(tools))
	for _, t := range tools {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		c.items = append(c.items, t)
	}
}

// Prepend puts tool at the front, dropping any older entry with its id
func (c *Cache) Prepend(tool domain.Tool) {
	if i := c.indexOf(tool.ID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.items = append([]domain.Tool{tool}, c.items...)
}

// Replace swaps the entry with tool's id for tool. It returns false when
// no such entry exists.
func (c *Cache) Replace(tool domain.Tool) bool {
	i := c.indexOf(tool.ID)
	if i < 0 {
		return false
	}
	c.items[i] = tool
	return true
}

// Remove drops the entry with id and reports whether there was one
func (c *Cache) Remove(id uuid.UUID) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Get returns a copy of the entry with id
func (c *Cache) Get(id uuid.UUID) (domain.Tool, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return domain.Tool{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the entries in order
func (c *Cache) Items() []domain.Tool {
	out := make([]domain.Tool, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries
func (c *Cache) Len() int {
	return len(c.items)
}

func (c *Cache) indexOf(id uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Matches reports whether tool matches the search query: a case-folded
// substring of the title, the description or any tag.
func Matches(tool *domain.Tool, query string) bool {
	return tool.Matches(query)
}

// Filter returns the tools matching query, keeping their order
func Filter(tools []domain.Tool, query string) []domain.Tool {
	out := make([]domain.Tool, 0, len(tools))
	for i := range tools {
		if Matches(&tools[i], query) {
			out = append(out, tools[i])
		}
	}
	return out
}
