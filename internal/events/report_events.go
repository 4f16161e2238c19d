package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// EventType represents the kinds of events the analysis pipeline emits
type EventType string

const (
	// Analysis events
	EventAnalysisCompleted EventType = "analysis.completed"
	EventAnalysisFailed    EventType = "analysis.failed"

	// Report events
	EventReportReady   EventType = "report.ready"
	EventReportSkipped EventType = "report.skipped"
)

const eventSource = "assessment-analysis-service"

// ReportEvent is the base event structure for all pipeline events
type ReportEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AnalysisCompletedEvent is emitted after a submission is scored and the run
// is persisted.
type AnalysisCompletedEvent struct {
	RunID             string                `json:"run_id"`
	UserID            string                `json:"user_id"`
	AssessmentTitle   string                `json:"assessment_title"`
	AssessmentType    models.AssessmentType `json:"assessment_type"`
	OverallPercentage float64               `json:"overall_percentage"`
	Level             int                   `json:"level"`
	CompletedAt       time.Time             `json:"completed_at"`
}

// AnalysisFailedEvent is emitted when a submission could not be scored.
type AnalysisFailedEvent struct {
	UserID          string    `json:"user_id"`
	AssessmentTitle string    `json:"assessment_title"`
	Reason          string    `json:"reason"`
	FailedAt        time.Time `json:"failed_at"`
}

// ReportReadyEvent is emitted once a study-plan report has been rendered and
// handed to delivery.
type ReportReadyEvent struct {
	UserID       string            `json:"user_id"`
	LectureLevel int               `json:"lecture_level"`
	CLLevel      int               `json:"cl_level"`
	OverallLevel int               `json:"overall_level"`
	MonthlyPlans map[string]string `json:"monthly_plans"`
	RenderedAt   time.Time         `json:"rendered_at"`
}

// ReportSkippedEvent is emitted when delivery was suppressed by the
// processed ledger.
type ReportSkippedEvent struct {
	UserID          string    `json:"user_id"`
	AssessmentTitle string    `json:"assessment_title"`
	SkippedAt       time.Time `json:"skipped_at"`
}

// Event factory functions

func NewAnalysisCompletedEvent(run *models.AnalysisRun) *ReportEvent {
	return &ReportEvent{
		ID:        GenerateEventID(),
		Type:      EventAnalysisCompleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: AnalysisCompletedEvent{
			RunID:             run.RunID,
			UserID:            run.UserID,
			AssessmentTitle:   run.AssessmentTitle,
			AssessmentType:    run.AssessmentType,
			OverallPercentage: run.OverallPercentage,
			Level:             run.Level,
			CompletedAt:       run.CreatedAt,
		},
	}
}

func NewAnalysisFailedEvent(userID, title, reason string) *ReportEvent {
	return &ReportEvent{
		ID:        GenerateEventID(),
		Type:      EventAnalysisFailed,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: AnalysisFailedEvent{
			UserID:          userID,
			AssessmentTitle: title,
			Reason:          reason,
			FailedAt:        time.Now(),
		},
	}
}

func NewReportReadyEvent(userID string, lectureLevel, clLevel, overallLevel models.Level, plans map[string]string) *ReportEvent {
	return &ReportEvent{
		ID:        GenerateEventID(),
		Type:      EventReportReady,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ReportReadyEvent{
			UserID:       userID,
			LectureLevel: int(lectureLevel),
			CLLevel:      int(clLevel),
			OverallLevel: int(overallLevel),
			MonthlyPlans: plans,
			RenderedAt:   time.Now(),
		},
	}
}

func NewReportSkippedEvent(userID, title string) *ReportEvent {
	return &ReportEvent{
		ID:        GenerateEventID(),
		Type:      EventReportSkipped,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ReportSkippedEvent{
			UserID:          userID,
			AssessmentTitle: title,
			SkippedAt:       time.Now(),
		},
	}
}

// GenerateEventID returns a unique event identifier
func GenerateEventID() string {
	return uuid.NewString()
}
