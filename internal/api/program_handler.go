package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- Request/Response Structs ---

type CreateTemplateRequest struct {
	Slug       string                   `json:"slug" binding:"required"`
	Name       string                   `json:"name" binding:"required"`
	Type       domain.ProgramType       `json:"type" binding:"omitempty,oneof=LOGIC MANUAL"`
	Visibility domain.Visibility        `json:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	Tags       []string                 `json:"tags"`
	Definition domain.ProgramDefinition `json:"definition" binding:"required"`
	Defaults   map[string]any           `json:"defaults"`
}

type AppendVersionRequest struct {
	Definition domain.ProgramDefinition `json:"definition" binding:"required"`
	Defaults   map[string]any           `json:"defaults"`
	Changelog  string                   `json:"changelog"`
}

type ForkRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type TemplateResponse struct {
	ID               string             `json:"id"`
	Slug             string             `json:"slug"`
	Name             string             `json:"name"`
	Type             domain.ProgramType `json:"type"`
	Visibility       domain.Visibility  `json:"visibility"`
	OwnerUserID      *string            `json:"ownerUserId,omitempty"`
	ParentTemplateID *string            `json:"parentTemplateId,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	LatestVersion    *VersionResponse   `json:"latestVersion,omitempty"`
}

type VersionResponse struct {
	ID              string                   `json:"id"`
	TemplateID      string                   `json:"templateId"`
	Version         int                      `json:"version"`
	ParentVersionID *string                  `json:"parentVersionId,omitempty"`
	Definition      domain.ProgramDefinition `json:"definition"`
	Defaults        map[string]any           `json:"defaults,omitempty"`
	Changelog       string                   `json:"changelog,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// --- Handler Methods ---

// CreateTemplate creates a template and its first version.
func (h *ProgramHandler) CreateTemplate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, version, err := h.programService.CreateTemplate(
		c.Request.Context(), userID, req.Slug, req.Name, req.Type, req.Visibility, req.Tags, req.Definition, req.Defaults,
	)
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(template, version))
}

// ListTemplates returns every template visible to the caller.
func (h *ProgramHandler) ListTemplates(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	templates, err := h.programService.ListTemplates(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list program templates")
		return
	}

	resp := make([]TemplateResponse, len(templates))
	for i := range templates {
		resp[i] = MapTemplateToResponse(&templates[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// GetTemplate returns one template with its latest version.
func (h *ProgramHandler) GetTemplate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	template, latest, err := h.programService.GetTemplate(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTemplateToResponse(template, latest))
}

// AppendVersion appends a new immutable version to an owned template.
func (h *ProgramHandler) AppendVersion(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var req AppendVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	version, err := h.programService.AppendVersion(c.Request.Context(), userID, c.Param("slug"), req.Definition, req.Defaults, req.Changelog)
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapVersionToResponse(version))
}

// ListVersions returns a template's version history.
func (h *ProgramHandler) ListVersions(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	versions, err := h.programService.ListVersions(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		handleProgramError(c, err)
		return
	}

	resp := make([]VersionResponse, len(versions))
	for i := range versions {
		resp[i] = MapVersionToResponse(&versions[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Fork copies a visible template into a private one owned by the caller.
func (h *ProgramHandler) Fork(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	// Body is optional for forks; missing fields fall back to derived names.
	var req ForkRequest
	_ = c.ShouldBindJSON(&req)

	fork, version, err := h.programService.Fork(c.Request.Context(), userID, c.Param("slug"), req.Slug, req.Name)
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTemplateToResponse(fork, version))
}

func handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound), errors.Is(err, service.ErrVersionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProgramSlugTaken):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrProgramVersionRace):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrProgramAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidProgramInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// MapTemplateToResponse converts a domain ProgramTemplate to its DTO.
func MapTemplateToResponse(template *domain.ProgramTemplate, latest *domain.ProgramVersion) TemplateResponse {
	if template == nil {
		return TemplateResponse{}
	}
	resp := TemplateResponse{
		ID:         template.ID.Hex(),
		Slug:       template.Slug,
		Name:       template.Name,
		Type:       template.Type,
		Visibility: template.Visibility,
		Tags:       template.Tags,
		CreatedAt:  template.CreatedAt,
	}
	if template.OwnerUserID != nil {
		hex := template.OwnerUserID.Hex()
		resp.OwnerUserID = &hex
	}
	if template.ParentTemplateID != nil {
		hex := template.ParentTemplateID.Hex()
		resp.ParentTemplateID = &hex
	}
	if latest != nil {
		version := MapVersionToResponse(latest)
		resp.LatestVersion = &version
	}
	return resp
}

// MapVersionToResponse converts a domain ProgramVersion to its DTO.
func MapVersionToResponse(version *domain.ProgramVersion) VersionResponse {
	if version == nil {
		return VersionResponse{}
	}
	resp := VersionResponse{
		ID:         version.ID.Hex(),
		TemplateID: version.TemplateID.Hex(),
		Version:    version.Version,
		Definition: version.Definition,
		Defaults:   version.Defaults,
		Changelog:  version.Changelog,
		CreatedAt:  version.CreatedAt,
	}
	if version.ParentVersionID != nil {
		hex := version.ParentVersionID.Hex()
		resp.ParentVersionID = &hex
	}
	return resp
}
