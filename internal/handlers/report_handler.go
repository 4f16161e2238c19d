package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/preuniversitario/assessment-analysis-service/internal/services"
	"github.com/preuniversitario/assessment-analysis-service/internal/utils"
	"github.com/preuniversitario/assessment-analysis-service/internal/validator"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
	validator     *validator.Validator
}

func NewReportHandler(
	reportService services.ReportService,
	v *validator.Validator,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
		validator:     v,
	}
}

// ReportHTTPRequest carries the user and their per-assessment results.
type ReportHTTPRequest struct {
	UserID      string                              `json:"user_id" validate:"required"`
	UserName    string                              `json:"user_name" validate:"required"`
	UserEmail   string                              `json:"user_email" validate:"omitempty,email"`
	ReportTitle string                              `json:"report_title" validate:"required"`
	Results     map[string]*models.AssessmentResult `json:"results"`
}

func (r *ReportHTTPRequest) toInput() *services.ReportInput {
	return &services.ReportInput{
		UserID:      r.UserID,
		UserName:    r.UserName,
		UserEmail:   r.UserEmail,
		ReportTitle: r.ReportTitle,
		Results:     r.Results,
	}
}

// Render substitutes the report tokens and returns the result without
// delivering anything
func (h *ReportHandler) Render(c *gin.Context) {
	req, ok := h.bindReportRequest(c)
	if !ok {
		return
	}

	rendered, err := h.reportService.Render(req.toInput())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"html":          rendered.HTML,
		"lecture_level": int(rendered.LectureLevel),
		"cl_level":      int(rendered.CLLevel),
		"overall_level": int(rendered.OverallLevel),
		"monthly_plans": rendered.MonthlyPlans,
	})
}

// Deliver renders the report and emails it, once per user and report
func (h *ReportHandler) Deliver(c *gin.Context) {
	req, ok := h.bindReportRequest(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Delivering report",
		"user_id", req.UserID,
		"report", req.ReportTitle)

	if err := h.reportService.Deliver(c.Request.Context(), req.toInput()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Report delivered"})
}

func (h *ReportHandler) bindReportRequest(c *gin.Context) (*ReportHTTPRequest, bool) {
	var req ReportHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return &req, true
}

func (h *ReportHandler) handleServiceError(c *gin.Context, err error) {
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
