package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, component string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", "assessment-analysis", "component", component),
	}
}

// ===== OPERATION LOGGING =====

// LogOperation records the outcome of one service operation. Validation and
// business rule failures log at warn; everything else that errors logs at
// error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, assessmentTitle string, duration time.Duration, err error) {
	status := "success"
	level := slog.LevelInfo

	if err != nil {
		switch {
		case IsValidation(err) || IsBusinessRule(err):
			status = "validation_error"
			level = slog.LevelWarn
		case IsNotFound(err):
			status = "not_found"
		case IsConflict(err):
			status = "conflict"
			level = slog.LevelWarn
		default:
			status = "error"
			level = slog.LevelError
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("assessment_title", assessmentTitle),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if validationErr, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		} else if businessErr, ok := err.(*BusinessRuleError); ok {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s %s", operation, status), attrs...)
}

// TrackOperation times an operation; call the returned func with the
// operation's final error.
func (l *ServiceLogger) TrackOperation(ctx context.Context, operation, userID, assessmentTitle string) func(err error) {
	start := time.Now()
	return func(err error) {
		l.LogOperation(ctx, operation, userID, assessmentTitle, time.Since(start), err)
	}
}

// LogValidationError logs field-level failures, capped to keep log volume
// bounded.
func (l *ServiceLogger) LogValidationError(ctx context.Context, operation, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i >= 5 {
			break
		}
		attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
			slog.String("field", err.Field),
			slog.String("message", err.Message),
			slog.Any("value", err.Value),
		))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}
