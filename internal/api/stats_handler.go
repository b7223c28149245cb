package api

import (
	"errors"
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsHandler holds the stats service dependency. Payloads come back from
// the service as pre-marshaled JSON (possibly straight from the cache), so
// handlers emit them verbatim.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// E1RM returns the per-day estimated one-rep max series for an exercise.
func (h *StatsHandler) E1RM(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	payload, err := h.statsService.E1RMSeries(c.Request.Context(), userID, c.Query("exercise"), intQuery(c, "days", 0))
	if err != nil {
		handleStatsError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// Volume returns tonnage grouped by exercise, or by time bucket when one is
// requested.
func (h *StatsHandler) Volume(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	payload, err := h.statsService.Volume(c.Request.Context(), userID, intQuery(c, "days", 0), c.Query("bucket"), c.Query("exercise"))
	if err != nil {
		handleStatsError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// Compliance reports planned vs. performed sessions over the range.
func (h *StatsHandler) Compliance(c *gin.Context) {
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

	payload, err := h.statsService.Compliance(c.Request.Context(), userID, planID, intQuery(c, "days", 0))
	if err != nil {
		handleStatsError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

func handleStatsError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidStatsParams) {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
}
