package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/preuniversitario/assessment-analysis-service/internal/analyzer"
	"github.com/preuniversitario/assessment-analysis-service/internal/cache"
	"github.com/preuniversitario/assessment-analysis-service/internal/events"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/preuniversitario/assessment-analysis-service/internal/repositories"
	"github.com/preuniversitario/assessment-analysis-service/internal/validator"
	"gorm.io/datatypes"
)

const (
	analysisCacheKeyPrefix = "analysis:run:"
	statsCacheKeyPrefix    = "analysis:stats:"
	analysisCacheTTL       = 15 * time.Minute
	statsCacheTTL          = 5 * time.Minute
)

// AnalyzeRequest is one submission to score.
type AnalyzeRequest struct {
	UserID          string                `json:"user_id" validate:"required"`
	AssessmentTitle string                `json:"assessment_title" validate:"required"`
	AssessmentType  models.AssessmentType `json:"assessment_type" validate:"required,assessment_type"`
	Answers         []string              `json:"answers" validate:"required"`
}

// AnalysisService scores submissions against a question bank, derives the
// user's level, persists the run and emits pipeline events.
type AnalysisService interface {
	Analyze(ctx context.Context, bank *models.QuestionBank, req *AnalyzeRequest) (*models.AnalysisRun, error)
	GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error)
	GetLatestRun(ctx context.Context, userID, assessmentTitle string) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context, filters repositories.AnalysisRunFilters) ([]*models.AnalysisRun, int64, error)
	GetStats(ctx context.Context, assessmentTitle string) (*repositories.AnalysisRunStats, error)
	DeleteRun(ctx context.Context, runID string) error
}

type analysisService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewAnalysisService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
) AnalysisService {
	return &analysisService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		validator: v,
		logger:    logger,
		ops:       NewServiceLogger(logger, "analysis"),
	}
}

func (s *analysisService) Analyze(ctx context.Context, bank *models.QuestionBank, req *AnalyzeRequest) (*models.AnalysisRun, error) {
	done := s.ops.TrackOperation(ctx, "analyze", req.UserID, req.AssessmentTitle)

	if err := s.validator.ValidateStruct(req); err != nil {
		if ve, ok := err.(ValidationErrors); ok {
			s.ops.LogValidationError(ctx, "analyze", req.UserID, ve)
		}
		done(err)
		return nil, err
	}

	resp := &models.UserResponse{UserID: req.UserID}
	for _, a := range req.Answers {
		resp.Answers = append(resp.Answers, models.Answer{Answer: a})
	}

	result, err := analyzer.Analyze(req.AssessmentType, bank, resp, req.AssessmentTitle)
	if err != nil {
		s.publishEvent(ctx, events.NewAnalysisFailedEvent(req.UserID, req.AssessmentTitle, err.Error()))
		done(err)
		return nil, err
	}

	level, err := analyzer.DeriveLevel(result)
	if err != nil {
		s.publishEvent(ctx, events.NewAnalysisFailedEvent(req.UserID, req.AssessmentTitle, err.Error()))
		done(err)
		return nil, fmt.Errorf("failed to derive level: %w", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to serialize result: %w", err)
	}

	run := &models.AnalysisRun{
		RunID:             uuid.NewString(),
		UserID:            req.UserID,
		AssessmentTitle:   req.AssessmentTitle,
		AssessmentType:    req.AssessmentType,
		Status:            models.RunCompleted,
		TotalQuestions:    result.TotalQuestions,
		CorrectQuestions:  result.CorrectQuestions,
		LecturesAnalyzed:  result.LecturesAnalyzed,
		LecturesPassed:    result.LecturesPassed,
		OverallPercentage: result.OverallPercentage,
		Level:             int(level),
		Result:            datatypes.JSON(resultJSON),
	}

	if err := s.repo.AnalysisRun().Create(ctx, run); err != nil {
		done(err)
		return nil, fmt.Errorf("failed to persist analysis run: %w", err)
	}

	s.publishEvent(ctx, events.NewAnalysisCompletedEvent(run))

	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, statsCacheKeyPrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate cached stats", "error", err)
		}
	}

	s.logger.Info("analysis run completed",
		"run_id", run.RunID,
		"assessment_type", run.AssessmentType,
		"overall_percentage", run.OverallPercentage,
		"level", run.Level)

	done(nil)
	return run, nil
}

func (s *analysisService) GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	cacheKey := analysisCacheKeyPrefix + runID

	var cached models.AnalysisRun
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	run, err := s.repo.AnalysisRun().GetByRunID(ctx, runID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, run, analysisCacheTTL); err != nil {
			s.logger.Warn("failed to cache analysis run", "run_id", runID, "error", err)
		}
	}

	return run, nil
}

func (s *analysisService) GetLatestRun(ctx context.Context, userID, assessmentTitle string) (*models.AnalysisRun, error) {
	run, err := s.repo.AnalysisRun().GetLatestForUser(ctx, userID, assessmentTitle)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: user %s, assessment %q", ErrRunNotFound, userID, assessmentTitle)
		}
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

func (s *analysisService) ListRuns(ctx context.Context, filters repositories.AnalysisRunFilters) ([]*models.AnalysisRun, int64, error) {
	return s.repo.AnalysisRun().List(ctx, filters)
}

func (s *analysisService) GetStats(ctx context.Context, assessmentTitle string) (*repositories.AnalysisRunStats, error) {
	cacheKey := statsCacheKeyPrefix + assessmentTitle

	var cached repositories.AnalysisRunStats
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.repo.AnalysisRun().GetStats(ctx, assessmentTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to get run stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, statsCacheTTL); err != nil {
			s.logger.Warn("failed to cache run stats", "assessment_title", assessmentTitle, "error", err)
		}
	}

	return stats, nil
}

func (s *analysisService) DeleteRun(ctx context.Context, runID string) error {
	if err := s.repo.AnalysisRun().Delete(ctx, runID); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, analysisCacheKeyPrefix+runID); err != nil {
			s.logger.Warn("failed to evict cached analysis run", "run_id", runID, "error", err)
		}
	}

	return nil
}

// publishEvent logs publish failures instead of surfacing them; event
// delivery must not fail the scoring path.
func (s *analysisService) publishEvent(ctx context.Context, event *events.ReportEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.Type, "error", err)
	}
}
