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

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type CreateLogRequest struct {
	PlanID             *string          `json:"planId"`
	GeneratedSessionID *string          `json:"generatedSessionId"`
	PerformedAt        *time.Time       `json:"performedAt"`
	Notes              string           `json:"notes"`
	Sets               []LoggedSetInput `json:"sets" binding:"required,min=1"`
}

type LoggedSetInput struct {
	ExerciseName string   `json:"exerciseName" binding:"required"`
	SortOrder    int      `json:"sortOrder"`
	SetNumber    int      `json:"setNumber"`
	Reps         int      `json:"reps" binding:"min=0"`
	WeightKg     *float64 `json:"weightKg"`
	RPE          *float64 `json:"rpe"`
}

type LogResponse struct {
	Log  *domain.WorkoutLog  `json:"log"`
	Sets []domain.WorkoutSet `json:"sets,omitempty"`
}

// --- Handler Methods ---

// CreateLog records a performed session with its sets.
func (h *WorkoutHandler) CreateLog(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.NewLogInput{
		PerformedAt: req.PerformedAt,
		Notes:       req.Notes,
	}
	if req.PlanID != nil {
		planID, err := primitive.ObjectIDFromHex(*req.PlanID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid planId format")
			return
		}
		input.PlanID = &planID
	}
	if req.GeneratedSessionID != nil {
		sessionID, err := primitive.ObjectIDFromHex(*req.GeneratedSessionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid generatedSessionId format")
			return
		}
		input.GeneratedSessionID = &sessionID
	}
	for _, set := range req.Sets {
		input.Sets = append(input.Sets, service.NewSetInput{
			ExerciseName: set.ExerciseName,
			SortOrder:    set.SortOrder,
			SetNumber:    set.SetNumber,
			Reps:         set.Reps,
			WeightKg:     set.WeightKg,
			RPE:          set.RPE,
		})
	}

	workoutLog, err := h.workoutService.CreateLog(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLogInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to record workout log")
		return
	}
	c.JSON(http.StatusCreated, LogResponse{Log: workoutLog})
}

// GetLog returns one owned log with its ordered sets.
func (h *WorkoutHandler) GetLog(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}
	logID, ok := parseObjectIDParam(c, "logId")
	if !ok {
		return
	}

	workoutLog, sets, err := h.workoutService.GetLog(c.Request.Context(), userID, logID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrLogAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch workout log")
		}
		return
	}
	c.JSON(http.StatusOK, LogResponse{Log: workoutLog, Sets: sets})
}

// ListLogs returns the caller's most recent logs.
func (h *WorkoutHandler) ListLogs(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	logs, err := h.workoutService.ListLogs(c.Request.Context(), userID, intQuery(c, "limit", 0))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workout logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}
