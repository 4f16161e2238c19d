package postgres

import (
	"context"
	"fmt"

	"github.com/preuniversitario/assessment-analysis-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db          *gorm.DB
	analysisRun repositories.AnalysisRunRepository
}

// NewRepository wires all PostgreSQL-backed repositories behind one handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:          db,
		analysisRun: NewAnalysisRunPostgreSQL(db),
	}
}

func (r *repository) AnalysisRun() repositories.AnalysisRunRepository {
	return r.analysisRun
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
