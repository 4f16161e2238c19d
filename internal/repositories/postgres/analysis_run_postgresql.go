package postgres

import (
	"context"
	"fmt"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/preuniversitario/assessment-analysis-service/internal/repositories"
	"gorm.io/gorm"
)

type AnalysisRunPostgreSQL struct {
	db *gorm.DB
}

func NewAnalysisRunPostgreSQL(db *gorm.DB) repositories.AnalysisRunRepository {
	return &AnalysisRunPostgreSQL{db: db}
}

// Create persists a completed scoring run
func (r *AnalysisRunPostgreSQL) Create(ctx context.Context, run *models.AnalysisRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run by its external run identifier
func (r *AnalysisRunPostgreSQL) GetByRunID(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetLatestForUser retrieves the most recent run for a (user, assessment) pair
func (r *AnalysisRunPostgreSQL) GetLatestForUser(ctx context.Context, userID, assessmentTitle string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_title = ?", userID, assessmentTitle).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List retrieves runs matching the filters, with total count for pagination
func (r *AnalysisRunPostgreSQL) List(ctx context.Context, filters repositories.AnalysisRunFilters) ([]*models.AnalysisRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AnalysisRun{})
	query = r.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count analysis runs: %w", err)
	}

	query = r.applySorting(query, filters)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var runs []*models.AnalysisRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list analysis runs: %w", err)
	}

	return runs, total, nil
}

// GetStats computes aggregate statistics for one assessment title
func (r *AnalysisRunPostgreSQL) GetStats(ctx context.Context, assessmentTitle string) (*repositories.AnalysisRunStats, error) {
	stats := &repositories.AnalysisRunStats{
		RunsByType:  make(map[models.AssessmentType]int),
		RunsByLevel: make(map[int]int),
	}

	base := r.db.WithContext(ctx).Model(&models.AnalysisRun{}).
		Where("assessment_title = ?", assessmentTitle)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	stats.TotalRuns = int(total)

	type typeCount struct {
		AssessmentType models.AssessmentType
		Count          int
	}
	var byType []typeCount
	if err := base.Session(&gorm.Session{}).
		Select("assessment_type, COUNT(*) as count").
		Group("assessment_type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to count runs by type: %w", err)
	}
	for _, tc := range byType {
		stats.RunsByType[tc.AssessmentType] = tc.Count
	}

	type levelCount struct {
		Level int
		Count int
	}
	var byLevel []levelCount
	if err := base.Session(&gorm.Session{}).
		Select("level, COUNT(*) as count").
		Group("level").
		Scan(&byLevel).Error; err != nil {
		return nil, fmt.Errorf("failed to count runs by level: %w", err)
	}
	for _, lc := range byLevel {
		stats.RunsByLevel[lc.Level] = lc.Count
	}

	var avg *float64
	if err := base.Session(&gorm.Session{}).
		Select("AVG(overall_percentage)").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average percentages: %w", err)
	}
	if avg != nil {
		stats.AveragePercentage = *avg
	}

	var distinct int64
	if err := base.Session(&gorm.Session{}).
		Distinct("user_id").
		Count(&distinct).Error; err != nil {
		return nil, fmt.Errorf("failed to count distinct users: %w", err)
	}
	stats.DistinctUsers = int(distinct)

	return stats, nil
}

// Delete soft-deletes a run by its run identifier
func (r *AnalysisRunPostgreSQL) Delete(ctx context.Context, runID string) error {
	result := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Delete(&models.AnalysisRun{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AnalysisRunPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AnalysisRunFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.AssessmentTitle != nil {
		query = query.Where("assessment_title = ?", *filters.AssessmentTitle)
	}
	if filters.AssessmentType != nil {
		query = query.Where("assessment_type = ?", *filters.AssessmentType)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (r *AnalysisRunPostgreSQL) applySorting(query *gorm.DB, filters repositories.AnalysisRunFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "overall_percentage", "level":
	default:
		sortBy = "created_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, order))
}
