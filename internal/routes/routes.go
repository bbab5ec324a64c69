package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"asthma-care-server/internal/config"
	"asthma-care-server/internal/handlers"
	"asthma-care-server/internal/middleware"
	"asthma-care-server/internal/service"
	"asthma-care-server/internal/session"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, clinic *service.Clinic, sessions *session.Registry, cfg *config.Config, logger *zap.Logger) error {
	authHandler, err := handlers.NewAuthHandler(cfg, sessions, logger)
	if err != nil {
		return err
	}
	patientHandler := handlers.NewPatientHandler(clinic, logger)
	dashboardHandler := handlers.NewDashboardHandler(clinic, logger)
	publicHandler := handlers.NewPublicHandler(clinic, logger)

	// Patient link printed on the asthma card
	router.GET("/", publicHandler.GetSummary)
	router.GET("/chart", publicHandler.GetChart)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.GET("/public/patients/:hn", publicHandler.GetSummary)
		public.GET("/public/patients/:hn/chart", publicHandler.GetChart)
	}

	// Staff routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, sessions))
	{
		authRoutes := private.Group("/auth")
		{
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/session", authHandler.GetSession)
		}

		dashboardRoutes := private.Group("/dashboard")
		{
			dashboardRoutes.GET("", dashboardHandler.GetDashboard)
			dashboardRoutes.GET("/charts/control", dashboardHandler.ControlChart)
			dashboardRoutes.GET("/charts/age", dashboardHandler.AgeChart)
			dashboardRoutes.GET("/charts/trend", dashboardHandler.TrendChart)
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", patientHandler.ListPatients)
			patientRoutes.POST("", patientHandler.RegisterPatient)
			patientRoutes.GET("/:hn", patientHandler.GetPatient)
			patientRoutes.GET("/:hn/chart", patientHandler.PatientChart)
			patientRoutes.POST("/:hn/visits", patientHandler.RecordVisit)
			patientRoutes.GET("/:hn/card", patientHandler.GetCard)
			patientRoutes.GET("/:hn/card/qr.png", patientHandler.GetCardQR)
		}

		private.GET("/export.xlsx", dashboardHandler.Export)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
	return nil
}
