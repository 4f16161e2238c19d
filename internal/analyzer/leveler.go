package analyzer

import (
	"errors"
	"fmt"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// Level threshold bands. These are tunable policy constants over a
// continuous metric, not derived values: adjust them here, nowhere else.
const (
	// Lecture-based modes band over the lecture pass ratio (percent).
	LectureLevel3Threshold = 89.0
	LectureLevel2Threshold = 50.0

	// Percentage-based mode bands over the overall correct-question
	// percentage. 87.5 must resolve to level 2.
	PercentageLevel3Threshold = 90.0
	PercentageLevel2Threshold = 55.0
)

// Overall-level bands over the average percentage across assessments.
const (
	OverallLevel3Threshold = 80.0
	OverallLevel2Threshold = 60.0
)

var ErrNoResult = errors.New("no assessment result to derive a level from")

// DeriveLevel maps an assessment result to its ordinal level using the band
// matching the result's aggregation mode.
func DeriveLevel(result *models.AssessmentResult) (models.Level, error) {
	if result == nil {
		return 0, ErrNoResult
	}

	switch result.Type {
	case models.LectureBased, models.LectureBasedWithMateria:
		return bandLevel(ratio(result.LecturesPassed, result.LecturesAnalyzed),
			LectureLevel3Threshold, LectureLevel2Threshold), nil
	case models.PercentageBased:
		return bandLevel(result.OverallPercentage,
			PercentageLevel3Threshold, PercentageLevel2Threshold), nil
	default:
		return 0, fmt.Errorf("cannot derive level for assessment type %q", result.Type)
	}
}

// DeriveOverallLevel averages the overall percentages of the given results
// and bands the average. Results without data contribute nothing; with no
// usable result at all the overall level is the lowest band.
func DeriveOverallLevel(results []*models.AssessmentResult) models.Level {
	total := 0.0
	count := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		total += r.OverallPercentage
		count++
	}
	if count == 0 {
		return models.Level1
	}
	return bandLevel(total/float64(count), OverallLevel3Threshold, OverallLevel2Threshold)
}

func bandLevel(metric, level3, level2 float64) models.Level {
	switch {
	case metric >= level3:
		return models.Level3
	case metric >= level2:
		return models.Level2
	default:
		return models.Level1
	}
}
