package models

// AssessmentType selects the aggregation mode used by the scorer.
type AssessmentType string

const (
	// LectureBased: all questions of a lecture must be correct for the
	// lecture to pass; the assessment aggregates over lecture pass ratio.
	LectureBased AssessmentType = "lecture_based"

	// LectureBasedWithMateria: same per-lecture rule, with lectures grouped
	// under a materia for a second aggregation level.
	LectureBasedWithMateria AssessmentType = "lecture_based_with_materia"

	// PercentageBased: no per-lecture pass/fail; the assessment aggregates
	// over the ratio of correct questions.
	PercentageBased AssessmentType = "percentage_based"
)

// Lecture status labels for lecture-based modes.
const (
	StatusPassed = "Aprobado"
	StatusFailed = "Reprobado"
)

// LectureResult is the score of one lecture group.
type LectureResult struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"percentage"`
	// Status is "Aprobado"/"Reprobado" in lecture-based modes and a literal
	// percentage string such as "83.3%" in percentage-based mode.
	Status string `json:"status"`
}

// MateriaResult aggregates the lectures of one materia.
type MateriaResult struct {
	Lectures       []string                 `json:"lectures"`
	LectureResults map[string]LectureResult `json:"lecture_results"`
	TotalLectures  int                      `json:"total_lectures"`
	PassedLectures int                      `json:"passed_lectures"`
	Percentage     float64                  `json:"percentage"`
}

// AssessmentResult is the full analysis of one user's submission for one
// assessment. Which fields are populated depends on Type: lecture-based
// results carry LecturesAnalyzed/LecturesPassed, the materia variant
// additionally carries MateriaResults, and percentage-based results carry
// question totals only.
type AssessmentResult struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Type   AssessmentType `json:"type"`

	TotalQuestions   int `json:"total_questions"`
	CorrectQuestions int `json:"correct_questions"`

	LecturesAnalyzed int      `json:"lectures_analyzed,omitempty"`
	LecturesPassed   int      `json:"lectures_passed,omitempty"`
	Lectures         []string `json:"lectures,omitempty"`

	MateriasAnalyzed int                      `json:"materias_analyzed,omitempty"`
	Materias         []string                 `json:"materias,omitempty"`
	MateriaResults   map[string]MateriaResult `json:"materia_results,omitempty"`

	// OverallPercentage is the lecture pass ratio for lecture-based modes and
	// the correct-question ratio for percentage-based mode. The two bases
	// must never be conflated.
	OverallPercentage float64 `json:"overall_percentage"`

	LectureResults map[string]LectureResult `json:"lecture_results,omitempty"`
}
