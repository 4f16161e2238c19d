package analyzer

import (
	"testing"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lectureResult(passed, analyzed int) *models.AssessmentResult {
	return &models.AssessmentResult{
		Type:              models.LectureBased,
		LecturesPassed:    passed,
		LecturesAnalyzed:  analyzed,
		OverallPercentage: ratio(passed, analyzed),
	}
}

func percentageResult(pct float64) *models.AssessmentResult {
	return &models.AssessmentResult{
		Type:              models.PercentageBased,
		OverallPercentage: pct,
	}
}

func TestDeriveLevel_LectureBased(t *testing.T) {
	tests := []struct {
		name     string
		passed   int
		analyzed int
		want     models.Level
	}{
		{"all lectures passed", 20, 20, models.Level3},
		{"just above level 3 band", 18, 20, models.Level3}, // 90%
		{"mid band", 15, 20, models.Level2},                // 75%
		{"exactly half", 10, 20, models.Level2},
		{"majority failed", 5, 20, models.Level1},
		{"none passed", 0, 20, models.Level1},
		{"no lectures at all", 0, 0, models.Level1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := DeriveLevel(lectureResult(tt.passed, tt.analyzed))
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestDeriveLevel_WithMateriaUsesLectureBand(t *testing.T) {
	result := &models.AssessmentResult{
		Type:             models.LectureBasedWithMateria,
		LecturesPassed:   2,
		LecturesAnalyzed: 3, // 66.7%
	}
	level, err := DeriveLevel(result)
	require.NoError(t, err)
	assert.Equal(t, models.Level2, level)
}

func TestDeriveLevel_PercentageBased(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want models.Level
	}{
		{"perfect score", 100.0, models.Level3},
		{"at level 3 boundary", 90.0, models.Level3},
		{"just below level 3 boundary", 87.5, models.Level2},
		{"mid band", 65.0, models.Level2},
		{"at level 2 boundary", 55.0, models.Level2},
		{"just below level 2 boundary", 54.9, models.Level1},
		{"low score", 50.0, models.Level1},
		{"zero", 0.0, models.Level1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := DeriveLevel(percentageResult(tt.pct))
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestDeriveLevel_TwoExamScenario(t *testing.T) {
	// Lecture exam at 15/20 lands mid band; percentage exam at 87.5 misses
	// the >=90 cutoff. Both resolve to level 2.
	levelA, err := DeriveLevel(lectureResult(15, 20))
	require.NoError(t, err)
	levelB, err := DeriveLevel(percentageResult(87.5))
	require.NoError(t, err)

	assert.Equal(t, models.Level2, levelA)
	assert.Equal(t, models.Level2, levelB)
}

func TestDeriveLevel_Errors(t *testing.T) {
	_, err := DeriveLevel(nil)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = DeriveLevel(&models.AssessmentResult{Type: "adaptive"})
	assert.Error(t, err)
}

func TestDeriveOverallLevel(t *testing.T) {
	tests := []struct {
		name    string
		results []*models.AssessmentResult
		want    models.Level
	}{
		{
			"high average",
			[]*models.AssessmentResult{percentageResult(90), percentageResult(80)},
			models.Level3,
		},
		{
			"mid average",
			[]*models.AssessmentResult{percentageResult(70), percentageResult(60)},
			models.Level2,
		},
		{
			"low average",
			[]*models.AssessmentResult{percentageResult(40), percentageResult(50)},
			models.Level1,
		},
		{
			"nil results are skipped",
			[]*models.AssessmentResult{nil, percentageResult(85)},
			models.Level3,
		},
		{
			"no results at all",
			nil,
			models.Level1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOverallLevel(tt.results))
		})
	}
}
