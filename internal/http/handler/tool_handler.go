package handler

import (
	"net/http"

	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/mapper"
	"github.com/straye-as/toolshelf/internal/service"
	"go.uber.org/zap"
)

type ToolHandler struct {
	toolService *service.ToolService
	logger      *zap.Logger
}

func NewToolHandler(toolService *service.ToolService, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
		logger:      logger,
	}
}

// List godoc
// @Summary List tools
// @Description Get every tool, newest first. A backend read failure yields an empty list.
// @Tags Tools
// @Produce json
// @Success 200 {array} domain.ToolDTO
// @Router /tools [get]
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	tools := h.toolService.FetchAll(r.Context())
	respondJSON(w, http.StatusOK, mapper.ToToolDTOs(tools))
}

// GetByID godoc
// @Summary Get tool
// @Tags Tools
// @Produce json
// @Param id path string true "Tool ID"
// @Success 200 {object} domain.ToolDTO
// @Failure 404 {object} domain.APIError
// @Router /tools/{id} [get]
func (h *ToolHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseToolID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tool ID: must be a valid UUID")
		return
	}

	tool, err := h.toolService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get tool")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToToolDTO(tool))
}

// Create godoc
// @Summary Create tool
// @Tags Tools
// @Accept json
// @Produce json
// @Param request body domain.CreateToolRequest true "Tool data"
// @Success 201 {object} domain.ToolDTO
// @Failure 400 {object} domain.APIError
// @Router /tools [post]
func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	tool, err := h.toolService.Create(r.Context(), req.ToInput())
	if err != nil {
		respondServiceError(w, h.logger, err, "create tool")
		return
	}

	w.Header().Set("Location", "/api/v1/tools/"+tool.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToToolDTO(tool))
}

// Update godoc
// @Summary Update tool
// @Description Partial update; omitted fields are kept. id and createdAt never change.
// @Tags Tools
// @Accept json
// @Produce json
// @Param id path string true "Tool ID"
// @Param request body domain.UpdateToolRequest true "Fields to change"
// @Success 200 {object} domain.ToolDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /tools/{id} [patch]
func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseToolID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tool ID: must be a valid UUID")
		return
	}

	var req domain.UpdateToolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	patch := req.ToPatch()
	if patch.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	tool, err := h.toolService.Update(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, h.logger, err, "update tool")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToToolDTO(tool))
}

// Delete godoc
// @Summary Delete tool
// @Description Removes the tool's stored files (best effort) and then the tool
// @Tags Tools
// @Param id path string true "Tool ID"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tools/{id} [delete]
func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseToolID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tool ID: must be a valid UUID")
		return
	}

	if err := h.toolService.DeleteByID(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete tool")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
