// Package analyzer implements the scoring and level-derivation core: a pure,
// deterministic mapping from raw per-question answers to per-lecture results,
// aggregate percentages, proficiency levels and the monthly study plan.
// The package performs no I/O so it can be exercised directly by tests;
// loading, persistence and notification live in the surrounding services.
package analyzer

import (
	"fmt"

	apperrors "github.com/preuniversitario/assessment-analysis-service/internal/errors"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// Analyze scores one user's submission against a validated question bank
// using the aggregation mode selected by typ.
//
// The three modes share the per-lecture scoring pass and differ only in how
// results aggregate:
//
//   - lecture_based: a lecture passes iff every question in it is correct;
//     the overall percentage is the lecture pass ratio.
//   - lecture_based_with_materia: same per-lecture rule, lectures grouped
//     under a materia for a second aggregation level.
//   - percentage_based: no pass/fail; the overall percentage is the ratio of
//     correct questions over all bank questions.
//
// Identical inputs always produce identical output.
func Analyze(typ models.AssessmentType, bank *models.QuestionBank, resp *models.UserResponse, title string) (*models.AssessmentResult, error) {
	if bank == nil {
		return nil, fmt.Errorf("question bank is required")
	}
	if resp == nil {
		return nil, fmt.Errorf("user response is required")
	}

	switch typ {
	case models.LectureBased:
		return analyzeLectureBased(bank, resp, title), nil
	case models.LectureBasedWithMateria:
		// This mode aggregates lectures under materias, so every entry must
		// carry one; scoring without it would group everything under "".
		if !bank.HasMateria() {
			return nil, apperrors.ValidationErrors{
				*apperrors.NewValidationError(
					models.ColumnMateria,
					"is required for materia-based analysis",
					nil),
			}
		}
		return analyzeLectureBasedWithMateria(bank, resp, title), nil
	case models.PercentageBased:
		return analyzePercentageBased(bank, resp, title), nil
	default:
		return nil, fmt.Errorf("unknown assessment type %q", typ)
	}
}

func analyzeLectureBased(bank *models.QuestionBank, resp *models.UserResponse, title string) *models.AssessmentResult {
	lectures := bank.Lectures()
	lectureResults := scoreByLecture(bank, resp, lectures, true)

	passed := 0
	totalCorrect := 0
	for _, lr := range lectureResults {
		if lr.Status == models.StatusPassed {
			passed++
		}
		totalCorrect += lr.CorrectAnswers
	}

	return &models.AssessmentResult{
		UserID:            resp.UserID,
		Title:             title,
		Type:              models.LectureBased,
		TotalQuestions:    len(resp.Answers),
		CorrectQuestions:  totalCorrect,
		LecturesAnalyzed:  len(lectures),
		LecturesPassed:    passed,
		OverallPercentage: ratio(passed, len(lectures)),
		LectureResults:    lectureResults,
		Lectures:          lectures,
	}
}

func analyzeLectureBasedWithMateria(bank *models.QuestionBank, resp *models.UserResponse, title string) *models.AssessmentResult {
	materias := bank.Materias()

	materiaResults := make(map[string]models.MateriaResult, len(materias))
	totalLectures := 0
	totalPassed := 0
	totalCorrect := 0

	for _, materia := range materias {
		sub := bank.ByMateria(materia)
		lectures := sub.Lectures()
		lectureResults := scoreByLecture(sub, resp, lectures, true)

		passed := 0
		for _, lr := range lectureResults {
			if lr.Status == models.StatusPassed {
				passed++
			}
			totalCorrect += lr.CorrectAnswers
		}

		materiaResults[materia] = models.MateriaResult{
			Lectures:       lectures,
			LectureResults: lectureResults,
			TotalLectures:  len(lectures),
			PassedLectures: passed,
			Percentage:     ratio(passed, len(lectures)),
		}

		totalLectures += len(lectures)
		totalPassed += passed
	}

	return &models.AssessmentResult{
		UserID:            resp.UserID,
		Title:             title,
		Type:              models.LectureBasedWithMateria,
		TotalQuestions:    len(resp.Answers),
		CorrectQuestions:  totalCorrect,
		MateriasAnalyzed:  len(materias),
		Materias:          materias,
		MateriaResults:    materiaResults,
		LecturesAnalyzed:  totalLectures,
		LecturesPassed:    totalPassed,
		OverallPercentage: ratio(totalPassed, totalLectures),
	}
}

func analyzePercentageBased(bank *models.QuestionBank, resp *models.UserResponse, title string) *models.AssessmentResult {
	lectures := bank.Lectures()
	lectureResults := scoreByLecture(bank, resp, lectures, false)

	totalQuestions := 0
	totalCorrect := 0
	for _, lr := range lectureResults {
		totalQuestions += lr.TotalQuestions
		totalCorrect += lr.CorrectAnswers
	}

	return &models.AssessmentResult{
		UserID:           resp.UserID,
		Title:            title,
		Type:             models.PercentageBased,
		TotalQuestions:   totalQuestions,
		CorrectQuestions: totalCorrect,
		LecturesAnalyzed: len(lectures),
		// Correct-question ratio, not the average of per-lecture percentages.
		OverallPercentage: ratio(totalCorrect, totalQuestions),
		LectureResults:    lectureResults,
		Lectures:          lectures,
	}
}

// scoreByLecture produces a LectureResult per lecture. With passFail set the
// status is Aprobado only when every question in the lecture is correct;
// otherwise the status is the formatted percentage.
func scoreByLecture(bank *models.QuestionBank, resp *models.UserResponse, lectures []string, passFail bool) map[string]models.LectureResult {
	results := make(map[string]models.LectureResult, len(lectures))

	for _, lecture := range lectures {
		questions := bank.ByLecture(lecture)

		correct := 0
		for _, q := range questions {
			// Exact string equality; a missing or out-of-range answer never
			// matches.
			if answer, ok := resp.AnswerAt(q.QuestionNumber); ok && answer == q.CorrectAlternative {
				correct++
			}
		}

		total := len(questions)
		percentage := ratio(correct, total)

		var status string
		if passFail {
			status = models.StatusFailed
			if correct == total {
				status = models.StatusPassed
			}
		} else {
			status = fmt.Sprintf("%.1f%%", percentage)
		}

		results[lecture] = models.LectureResult{
			TotalQuestions: total,
			CorrectAnswers: correct,
			Percentage:     percentage,
			Status:         status,
		}
	}

	return results
}

// ratio returns part/whole as a percentage, 0 when whole is 0.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
