package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AnalysisRunStatus string

const (
	RunCompleted AnalysisRunStatus = "Completed"
	RunFailed    AnalysisRunStatus = "Failed"
)

// AnalysisRun is the persisted record of one scoring run. The nested lecture
// and materia breakdowns are stored as JSON; the scalar aggregates are kept
// as columns so runs can be filtered and reported without unpacking.
type AnalysisRun struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	RunID           string            `json:"run_id" gorm:"not null;size:36;uniqueIndex"`
	UserID          string            `json:"user_id" gorm:"not null;size:100;index"`
	AssessmentTitle string            `json:"assessment_title" gorm:"not null;size:200;index"`
	AssessmentType  AssessmentType    `json:"assessment_type" gorm:"not null;size:40"`
	Status          AnalysisRunStatus `json:"status" gorm:"default:Completed;index"`

	TotalQuestions    int     `json:"total_questions" gorm:"not null"`
	CorrectQuestions  int     `json:"correct_questions" gorm:"not null"`
	LecturesAnalyzed  int     `json:"lectures_analyzed"`
	LecturesPassed    int     `json:"lectures_passed"`
	OverallPercentage float64 `json:"overall_percentage" gorm:"not null"`
	Level             int     `json:"level"`

	// Full AssessmentResult as produced by the analyzer.
	Result datatypes.JSON `json:"result" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
