package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/preuniversitario/assessment-analysis-service/internal/services"
	"github.com/preuniversitario/assessment-analysis-service/internal/utils"
	"github.com/preuniversitario/assessment-analysis-service/internal/validator"
)

type HandlerManager struct {
	analysisHandler *AnalysisHandler
	reportHandler   *ReportHandler
}

func NewHandlerManager(
	analysisService services.AnalysisService,
	bankService services.BankService,
	reportService services.ReportService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		analysisHandler: NewAnalysisHandler(analysisService, bankService, v, logger),
		reportHandler:   NewReportHandler(reportService, v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "assessment-analysis-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Scoring routes
		analyses := v1.Group("/analyses")
		{
			analyses.POST("", hm.analysisHandler.Analyze)
		}

		// Question bank routes
		banks := v1.Group("/question-banks")
		{
			banks.POST("/parse", hm.analysisHandler.ParseBank)
		}

		// Run query routes
		runs := v1.Group("/runs")
		{
			runs.GET("", hm.analysisHandler.ListRuns)
			runs.GET("/stats", hm.analysisHandler.GetStats)
			runs.GET("/:run_id", hm.analysisHandler.GetRun)
			runs.DELETE("/:run_id", hm.analysisHandler.DeleteRun)
		}

		// User-centric routes
		users := v1.Group("/users")
		{
			users.GET("/:user_id/latest-run", hm.analysisHandler.GetLatestRun)
		}

		// Study plan lookup
		v1.GET("/plans", hm.analysisHandler.GetPlan)

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.POST("/render", hm.reportHandler.Render)
			reports.POST("/deliver", hm.reportHandler.Deliver)
		}
	}
}
