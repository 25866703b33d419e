package mapper

import (
	"time"

	"github.com/straye-as/toolshelf/internal/domain"
)

// TimestampLayout is the wire format of every timestamp in the API
const TimestampLayout = time.RFC3339Nano

// ToToolDTO converts Tool to ToolDTO
func ToToolDTO(tool *domain.Tool) domain.ToolDTO {
	tags := tool.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.ToolDTO{
		ID:          tool.ID,
		Title:       tool.Title,
		Description: tool.Description,
		URL:         tool.URL,
		ImageURL:    tool.ImageURL,
		Tags:        tags,
		Author:      tool.Author,
		CreatedAt:   tool.CreatedAt.UTC().Format(TimestampLayout),
		UpdatedAt:   tool.UpdatedAt.UTC().Format(TimestampLayout),
	}
}

// ToToolDTOs converts a list of tools, keeping their order
func ToToolDTOs(tools []domain.Tool) []domain.ToolDTO {
	dtos := make([]domain.ToolDTO, len(tools))
	for i := range tools {
		dtos[i] = ToToolDTO(&tools[i])
	}
	return dtos
}

// FromToolDTO converts a ToolDTO received over the wire back into a Tool.
// Unparseable timestamps are left zero.
func FromToolDTO(dto domain.ToolDTO) domain.Tool {
	tool := domain.Tool{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		URL:         dto.URL,
		ImageURL:    dto.ImageURL,
		Tags:        domain.NormalizeTags(dto.Tags),
		Author:      dto.Author,
	}
	if t, err := time.Parse(TimestampLayout, dto.CreatedAt); err == nil {
		tool.CreatedAt = t
	}
	if t, err := time.Parse(TimestampLayout, dto.UpdatedAt); err == nil {
		tool.UpdatedAt = t
	}
	return tool
}

// ToCreateToolRequest converts a gateway input into the create request body
func ToCreateToolRequest(in domain.ToolInput) domain.CreateToolRequest {
	return domain.CreateToolRequest{
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		ImageURL:    in.ImageURL,
		Tags:        domain.NormalizeTags(in.Tags),
		Author:      in.Author,
	}
}

// ToUpdateToolRequest converts a patch into the update request body
func ToUpdateToolRequest(p domain.ToolPatch) domain.UpdateToolRequest {
	req := domain.UpdateToolRequest{
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
		ImageURL:    p.ImageURL,
		Author:      p.Author,
	}
	if p.Tags != nil {
		tags := domain.NormalizeTags(*p.Tags)
		req.Tags = &tags
	}
	return req
}
