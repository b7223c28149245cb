package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	programService service.ProgramService,
	planService service.PlanService,
	generationService service.GenerationService,
	workoutService service.WorkoutService,
	statsService service.StatsService,
	exportService service.ExportService,
) {
	authHandler := NewAuthHandler(authService)
	programHandler := NewProgramHandler(programService)
	planHandler := NewPlanHandler(planService)
	generationHandler := NewGenerationHandler(generationService)
	workoutHandler := NewWorkoutHandler(workoutService)
	statsHandler := NewStatsHandler(statsService)
	exportHandler := NewExportHandler(exportService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := currentUserID(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		// --- Program Template Routes ---
		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", programHandler.CreateTemplate)
			programGroup.GET("", programHandler.ListTemplates)
			programGroup.GET("/:slug", programHandler.GetTemplate)
			programGroup.POST("/:slug/versions", programHandler.AppendVersion)
			programGroup.GET("/:slug/versions", programHandler.ListVersions)
			programGroup.POST("/:slug/fork", programHandler.Fork)
		}

		// --- Plan Routes ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)

			planGroup.POST("/:planId/overrides", planHandler.AddOverride)
			planGroup.GET("/:planId/overrides", planHandler.ListOverrides)

			planGroup.POST("/:planId/generate", generationHandler.Generate)
			planGroup.GET("/:planId/sessions/:sessionKey", generationHandler.GetSession)
		}

		// --- Generated Session Routes ---
		protected.GET("/sessions", generationHandler.ListSessions)

		// --- Workout Log Routes ---
		logGroup := protected.Group("/logs")
		{
			logGroup.POST("", workoutHandler.CreateLog)
			logGroup.GET("", workoutHandler.ListLogs)
			logGroup.GET("/:logId", workoutHandler.GetLog)
		}

		// --- Stats Routes ---
		statsGroup := protected.Group("/stats")
		{
			statsGroup.GET("/e1rm", statsHandler.E1RM)
			statsGroup.GET("/volume", statsHandler.Volume)
			statsGroup.GET("/compliance", statsHandler.Compliance)
		}

		// --- Export Routes ---
		protected.GET("/export/logs", exportHandler.ExportLogs)
	}
}
