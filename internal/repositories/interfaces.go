package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AnalysisRunFilters struct {
	UserID          *string                `json:"user_id"`
	AssessmentTitle *string                `json:"assessment_title"`
	AssessmentType  *models.AssessmentType `json:"assessment_type"`
	Level           *int                   `json:"level"`
	DateFrom        *time.Time             `json:"date_from"`
	DateTo          *time.Time             `json:"date_to"`
	Limit           int                    `json:"limit"`
	Offset          int                    `json:"offset"`
	SortBy          string                 `json:"sort_by"`    // "created_at", "overall_percentage"
	SortOrder       string                 `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type AnalysisRunStats struct {
	TotalRuns         int                           `json:"total_runs"`
	RunsByType        map[models.AssessmentType]int `json:"runs_by_type"`
	RunsByLevel       map[int]int                   `json:"runs_by_level"`
	AveragePercentage float64                       `json:"average_percentage"`
	DistinctUsers     int                           `json:"distinct_users"`
}

// ===== REPOSITORY INTERFACES =====

// AnalysisRunRepository persists completed (or failed) scoring runs.
type AnalysisRunRepository interface {
	Create(ctx context.Context, run *models.AnalysisRun) error
	GetByRunID(ctx context.Context, runID string) (*models.AnalysisRun, error)
	GetLatestForUser(ctx context.Context, userID, assessmentTitle string) (*models.AnalysisRun, error)
	List(ctx context.Context, filters AnalysisRunFilters) ([]*models.AnalysisRun, int64, error)
	GetStats(ctx context.Context, assessmentTitle string) (*AnalysisRunStats, error)
	Delete(ctx context.Context, runID string) error
}

// Repository aggregates the persistence layer behind one handle.
type Repository interface {
	AnalysisRun() AnalysisRunRepository
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
