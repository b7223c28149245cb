package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request/Response Structs ---

type CreatePlanRequest struct {
	Name                 string            `json:"name" binding:"required"`
	Type                 domain.PlanType   `json:"type" binding:"required,oneof=SINGLE COMPOSITE MANUAL"`
	RootProgramVersionID *string           `json:"rootProgramVersionId"`
	Params               map[string]any    `json:"params"`
	KeyMode              domain.KeyMode    `json:"keyMode" binding:"omitempty,oneof=LEGACY DATE"`
	Modules              []PlanModuleInput `json:"modules"`
}

type PlanModuleInput struct {
	Target           string         `json:"target" binding:"required"`
	ProgramVersionID string         `json:"programVersionId" binding:"required"`
	Priority         int            `json:"priority"`
	Params           map[string]any `json:"params"`
}

type AddOverrideRequest struct {
	Scope      domain.OverrideScope `json:"scope" binding:"required,oneof=PLAN WEEK SESSION"`
	WeekNumber *int                 `json:"weekNumber"`
	SessionKey *string              `json:"sessionKey"`
	Patch      domain.Patch         `json:"patch" binding:"required"`
	Note       string               `json:"note"`
}

type PlanResponse struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Type                 domain.PlanType      `json:"type"`
	RootProgramVersionID *string              `json:"rootProgramVersionId,omitempty"`
	Params               map[string]any       `json:"params,omitempty"`
	KeyMode              domain.KeyMode       `json:"keyMode"`
	CreatedAt            time.Time            `json:"createdAt"`
	Modules              []PlanModuleResponse `json:"modules,omitempty"`
}

type PlanModuleResponse struct {
	ID               string         `json:"id"`
	Target           string         `json:"target"`
	ProgramVersionID string         `json:"programVersionId"`
	Priority         int            `json:"priority"`
	Params           map[string]any `json:"params,omitempty"`
}

// --- Handler Methods ---

// CreatePlan creates a plan together with its modules.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.NewPlanInput{
		Name:    req.Name,
		Type:    req.Type,
		Params:  req.Params,
		KeyMode: req.KeyMode,
	}
	if req.RootProgramVersionID != nil {
		rootID, err := primitive.ObjectIDFromHex(*req.RootProgramVersionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid rootProgramVersionId format")
			return
		}
		input.RootProgramVersionID = &rootID
	}
	for _, m := range req.Modules {
		versionID, err := primitive.ObjectIDFromHex(m.ProgramVersionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid programVersionId for module %q", m.Target))
			return
		}
		input.Modules = append(input.Modules, service.NewPlanModuleInput{
			Target:           m.Target,
			ProgramVersionID: versionID,
			Priority:         m.Priority,
			Params:           m.Params,
		})
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, input)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan, nil))
}

// ListPlans returns the caller's plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = MapPlanToResponse(&plans[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// GetPlan returns one owned plan with its modules.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	plan, modules, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan, modules))
}

// DeletePlan removes an owned plan and everything it owns.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddOverride appends an override to an owned plan.
func (h *PlanHandler) AddOverride(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	var req AddOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	override, err := h.planService.AddOverride(c.Request.Context(), userID, planID, service.NewOverrideInput{
		Scope:      req.Scope,
		WeekNumber: req.WeekNumber,
		SessionKey: req.SessionKey,
		Patch:      req.Patch,
		Note:       req.Note,
	})
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, override)
}

// ListOverrides returns an owned plan's overrides in creation order.
func (h *PlanHandler) ListOverrides(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	overrides, err := h.planService.ListOverrides(c.Request.Context(), userID, planID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, overrides)
}

func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrVersionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidPlanInput), errors.Is(err, service.ErrInvalidOverride):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// MapPlanToResponse converts a domain Plan to its DTO.
func MapPlanToResponse(plan *domain.Plan, modules []domain.PlanModule) PlanResponse {
	if plan == nil {
		return PlanResponse{}
	}
	resp := PlanResponse{
		ID:        plan.ID.Hex(),
		Name:      plan.Name,
		Type:      plan.Type,
		Params:    plan.Params,
		KeyMode:   plan.KeyMode,
		CreatedAt: plan.CreatedAt,
	}
	if plan.RootProgramVersionID != nil {
		hex := plan.RootProgramVersionID.Hex()
		resp.RootProgramVersionID = &hex
	}
	for _, m := range modules {
		resp.Modules = append(resp.Modules, PlanModuleResponse{
			ID:               m.ID.Hex(),
			Target:           m.Target,
			ProgramVersionID: m.ProgramVersionID.Hex(),
			Priority:         m.Priority,
			Params:           m.Params,
		})
	}
	return resp
}
