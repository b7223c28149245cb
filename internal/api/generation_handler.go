package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/engine"
	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationHandler holds the generation service dependency.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// --- Request/Response Structs ---

type GenerateSessionRequest struct {
	Week        int        `json:"week"`
	Day         int        `json:"day"`
	SessionDate *time.Time `json:"sessionDate"`
	Timezone    string     `json:"timezone"`
}

type GeneratedSessionResponse struct {
	ID         string              `json:"id"`
	PlanID     string              `json:"planId"`
	SessionKey string              `json:"sessionKey"`
	Snapshot   domain.SessionDraft `json:"snapshot"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// --- Handler Methods ---

// Generate materializes one session for a plan. Regenerating the same
// (plan, sessionKey) overwrites the stored snapshot.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	var req GenerateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, warnings, err := h.generationService.GenerateAndSave(c.Request.Context(), userID, planID, service.GenerationInput{
		Week:        req.Week,
		Day:         req.Day,
		SessionDate: req.SessionDate,
		Timezone:    req.Timezone,
	})
	if err != nil {
		handleGenerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapGeneratedSessionToResponse(session, warnings))
}

// GetSession returns one materialized session by key.
func (h *GenerationHandler) GetSession(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}

	session, err := h.generationService.GetSession(c.Request.Context(), userID, planID, c.Param("sessionKey"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch generated session")
		return
	}
	c.JSON(http.StatusOK, MapGeneratedSessionToResponse(session, nil))
}

// ListSessions returns the caller's recently generated sessions, optionally
// scoped to one plan.
func (h *GenerationHandler) ListSessions(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var planID *primitive.ObjectID
	if raw := c.Query("planId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid planId format")
			return
		}
		planID = &id
	}

	sessions, err := h.generationService.ListRecentSessions(c.Request.Context(), userID, planID, intQuery(c, "limit", 0))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list generated sessions")
		return
	}

	resp := make([]GeneratedSessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = MapGeneratedSessionToResponse(&sessions[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// handleGenerationError translates pipeline failures. Malformed requests map
// to 400, plans that cannot produce the asked-for session map to 422.
func handleGenerationError(c *gin.Context, err error) {
	var (
		resolutionErr *engine.PlanResolutionError
		kindErr       *engine.UnsupportedDefinitionKindError
		contextErr    *engine.MissingContextError
		paramErr      *engine.MissingParamError
		notDefined    *engine.SessionNotDefinedError
	)
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &contextErr):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &resolutionErr), errors.As(err, &kindErr), errors.As(err, &paramErr), errors.As(err, &notDefined):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during generation")
	}
}

// MapGeneratedSessionToResponse converts a domain GeneratedSession to its DTO.
func MapGeneratedSessionToResponse(session *domain.GeneratedSession, warnings []string) GeneratedSessionResponse {
	if session == nil {
		return GeneratedSessionResponse{}
	}
	return GeneratedSessionResponse{
		ID:         session.ID.Hex(),
		PlanID:     session.PlanID.Hex(),
		SessionKey: session.SessionKey,
		Snapshot:   session.Snapshot,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
		Warnings:   warnings,
	}
}
