package domain

import "github.com/google/uuid"

// ToolDTO is the wire representation of a tool
type ToolDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// CreateToolRequest is the body of POST /tools
type CreateToolRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	URL         string   `json:"url" validate:"required"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
	Author      string   `json:"author,omitempty" validate:"max=255"`
}

// ToInput converts the request into a gateway input
func (r *CreateToolRequest) ToInput() ToolInput {
	return ToolInput{
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
		Author:      r.Author,
	}
}

// UpdateToolRequest is the body of PATCH /tools/{id}. Omitted fields are kept.
type UpdateToolRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	URL         *string   `json:"url,omitempty" validate:"omitempty,min=1"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,dive,max=100"`
	Author      *string   `json:"author,omitempty" validate:"omitempty,max=255"`
}

// ToPatch converts the request into a gateway patch
func (r *UpdateToolRequest) ToPatch() ToolPatch {
	return ToolPatch{
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
		Author:      r.Author,
	}
}

// UploadFileResponse is returned by POST /files
type UploadFileResponse struct {
	URL         string `json:"url"`
	ObjectName  string `json:"objectName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// TokenRequest exchanges the shared admin secret for a bearer token
type TokenRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// TokenResponse carries an admin bearer token
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
