package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/preuniversitario/assessment-analysis-service/internal/analyzer"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/preuniversitario/assessment-analysis-service/internal/repositories"
	"github.com/preuniversitario/assessment-analysis-service/internal/services"
	"github.com/preuniversitario/assessment-analysis-service/internal/utils"
	"github.com/preuniversitario/assessment-analysis-service/internal/validator"
)

type AnalysisHandler struct {
	BaseHandler
	analysisService services.AnalysisService
	bankService     services.BankService
	validator       *validator.Validator
}

func NewAnalysisHandler(
	analysisService services.AnalysisService,
	bankService services.BankService,
	v *validator.Validator,
	logger utils.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
		bankService:     bankService,
		validator:       v,
	}
}

// AnalyzeHTTPRequest is the payload for scoring one submission. The question
// bank travels inline so a single call is self-contained.
type AnalyzeHTTPRequest struct {
	UserID          string                     `json:"user_id" validate:"required"`
	AssessmentTitle string                     `json:"assessment_title" validate:"required"`
	AssessmentType  models.AssessmentType      `json:"assessment_type" validate:"required,assessment_type"`
	Answers         []string                   `json:"answers" validate:"required"`
	Bank            []models.QuestionBankEntry `json:"bank" validate:"required,min=1"`
}

// Analyze scores a submission against its question bank
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Analyzing submission",
		"user_id", req.UserID,
		"assessment_title", req.AssessmentTitle,
		"assessment_type", req.AssessmentType)

	bank, err := models.NewQuestionBank(req.Bank)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	run, err := h.analysisService.Analyze(c.Request.Context(), bank, &services.AnalyzeRequest{
		UserID:          req.UserID,
		AssessmentTitle: req.AssessmentTitle,
		AssessmentType:  req.AssessmentType,
		Answers:         req.Answers,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, run)
}

// ParseBank normalizes an uploaded question bank file and returns its entries
func (h *AnalysisHandler) ParseBank(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Parsing question bank", "filename", header.Filename)

	var bank *models.QuestionBank
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		bank, err = h.bankService.LoadFromCSV(c.Request.Context(), file)
	case ".xlsx", ".xls":
		bank, err = h.bankService.LoadFromExcel(c.Request.Context(), file)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported question bank format",
			Details: header.Filename,
		})
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bank)
}

// GetRun retrieves an analysis run by its run identifier
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	runID := pathParam(c, "run_id")
	if runID == "" {
		return
	}

	run, err := h.analysisService.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// DeleteRun removes a stored analysis run
func (h *AnalysisHandler) DeleteRun(c *gin.Context) {
	runID := pathParam(c, "run_id")
	if runID == "" {
		return
	}

	if err := h.analysisService.DeleteRun(c.Request.Context(), runID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Analysis run deleted"})
}

// GetLatestRun retrieves the newest run for a user and assessment
func (h *AnalysisHandler) GetLatestRun(c *gin.Context) {
	userID := pathParam(c, "user_id")
	if userID == "" {
		return
	}
	assessmentTitle := c.Query("assessment_title")
	if assessmentTitle == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "assessment_title query parameter is required",
		})
		return
	}

	run, err := h.analysisService.GetLatestRun(c.Request.Context(), userID, assessmentTitle)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListRuns lists analysis runs with filters and pagination
func (h *AnalysisHandler) ListRuns(c *gin.Context) {
	filters := repositories.AnalysisRunFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("user_id"); v != "" {
		filters.UserID = &v
	}
	if v := c.Query("assessment_title"); v != "" {
		filters.AssessmentTitle = &v
	}
	if v := c.Query("assessment_type"); v != "" {
		typ := models.AssessmentType(v)
		filters.AssessmentType = &typ
	}
	if v := c.Query("level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid level filter", Details: v})
			return
		}
		filters.Level = &level
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid date_from filter", Details: v})
			return
		}
		filters.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid date_to filter", Details: v})
			return
		}
		filters.DateTo = &t
	}

	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, total, err := h.analysisService.ListRuns(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{Data: runs, Total: total})
}

// GetStats returns aggregate statistics for one assessment
func (h *AnalysisHandler) GetStats(c *gin.Context) {
	assessmentTitle := c.Query("assessment_title")
	if assessmentTitle == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "assessment_title query parameter is required",
		})
		return
	}

	stats, err := h.analysisService.GetStats(c.Request.Context(), assessmentTitle)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// PlanHTTPRequest selects one cell of the study-plan table.
type PlanHTTPRequest struct {
	LectureLevel    int    `json:"lecture_level" form:"lecture_level" validate:"required,level"`
	PercentageLevel int    `json:"percentage_level" form:"percentage_level" validate:"required,level"`
	Month           string `json:"month" form:"month" validate:"required,plan_month"`
}

// GetPlan resolves the monthly study-plan recommendation for a level pair
func (h *AnalysisHandler) GetPlan(c *gin.Context) {
	var req PlanHTTPRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid plan query",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	plan, err := analyzer.MonthlyPlan(
		models.Level(req.LectureLevel),
		models.Level(req.PercentageLevel),
		models.Month(req.Month))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Plan lookup failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lecture_level":    req.LectureLevel,
		"percentage_level": req.PercentageLevel,
		"month":            req.Month,
		"plan":             plan,
	})
}

// handleServiceError maps service errors to HTTP responses
func (h *AnalysisHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Internal server error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
