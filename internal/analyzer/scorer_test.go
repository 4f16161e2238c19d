package analyzer

import (
	"encoding/json"
	"testing"

	apperrors "github.com/preuniversitario/assessment-analysis-service/internal/errors"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBank(t *testing.T, entries []models.QuestionBankEntry) *models.QuestionBank {
	t.Helper()
	bank, err := models.NewQuestionBank(entries)
	require.NoError(t, err)
	return bank
}

func response(userID string, answers ...string) *models.UserResponse {
	resp := &models.UserResponse{UserID: userID}
	for _, a := range answers {
		resp.Answers = append(resp.Answers, models.Answer{Answer: a})
	}
	return resp
}

func TestAnalyze_LectureBased(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Lección 1"},
		{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "Lección 1"},
		{QuestionNumber: 3, CorrectAlternative: "C", Lecture: "Lección 1"},
	})

	t.Run("all correct passes the lecture", func(t *testing.T) {
		result, err := Analyze(models.LectureBased, bank, response("user-1", "A", "B", "C"), "M1")
		require.NoError(t, err)

		lr := result.LectureResults["Lección 1"]
		assert.Equal(t, 3, lr.TotalQuestions)
		assert.Equal(t, 3, lr.CorrectAnswers)
		assert.Equal(t, models.StatusPassed, lr.Status)
		assert.InDelta(t, 100.0, lr.Percentage, 0.001)

		assert.Equal(t, 1, result.LecturesAnalyzed)
		assert.Equal(t, 1, result.LecturesPassed)
		assert.InDelta(t, 100.0, result.OverallPercentage, 0.001)
	})

	t.Run("one wrong answer fails the lecture", func(t *testing.T) {
		result, err := Analyze(models.LectureBased, bank, response("user-1", "A", "B", "D"), "M1")
		require.NoError(t, err)

		lr := result.LectureResults["Lección 1"]
		assert.Equal(t, 3, lr.TotalQuestions)
		assert.Equal(t, 2, lr.CorrectAnswers)
		assert.Equal(t, models.StatusFailed, lr.Status)
		assert.InDelta(t, 66.7, lr.Percentage, 0.05)
		assert.Equal(t, 0, result.LecturesPassed)
		assert.InDelta(t, 0.0, result.OverallPercentage, 0.001)
	})

	t.Run("passed implies all correct", func(t *testing.T) {
		// Every answer combination over a 2-question lecture: Aprobado only
		// when both questions match.
		twoQ := mustBank(t, []models.QuestionBankEntry{
			{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L"},
			{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "L"},
		})
		for _, answers := range [][]string{{"A", "B"}, {"A", "C"}, {"C", "B"}, {"C", "C"}} {
			result, err := Analyze(models.LectureBased, twoQ, response("u", answers...), "M1")
			require.NoError(t, err)
			lr := result.LectureResults["L"]
			if lr.Status == models.StatusPassed {
				assert.Equal(t, lr.TotalQuestions, lr.CorrectAnswers)
			} else {
				assert.Less(t, lr.CorrectAnswers, lr.TotalQuestions)
			}
		}
	})
}

func TestAnalyze_PercentageBased(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Lección 1"},
		{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "Lección 1"},
		{QuestionNumber: 3, CorrectAlternative: "C", Lecture: "Lección 1"},
		{QuestionNumber: 4, CorrectAlternative: "D", Lecture: "Lección 1"},
	})

	result, err := Analyze(models.PercentageBased, bank, response("user-2", "A", "B", "C", "A"), "CL")
	require.NoError(t, err)

	lr := result.LectureResults["Lección 1"]
	assert.Equal(t, 4, lr.TotalQuestions)
	assert.Equal(t, 3, lr.CorrectAnswers)
	assert.InDelta(t, 75.0, lr.Percentage, 0.001)
	assert.Equal(t, "75.0%", lr.Status)

	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 3, result.CorrectQuestions)
	assert.InDelta(t, 75.0, result.OverallPercentage, 0.001)
}

func TestAnalyze_PercentageAggregationIsQuestionWeighted(t *testing.T) {
	// Two lectures of very different size: the overall percentage must be
	// sum(correct)/sum(total), not the average of per-lecture percentages.
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Grande"},
		{QuestionNumber: 2, CorrectAlternative: "A", Lecture: "Grande"},
		{QuestionNumber: 3, CorrectAlternative: "A", Lecture: "Grande"},
		{QuestionNumber: 4, CorrectAlternative: "A", Lecture: "Grande"},
		{QuestionNumber: 5, CorrectAlternative: "A", Lecture: "Chica"},
	})

	// 4/4 on the big lecture, 0/1 on the small one.
	result, err := Analyze(models.PercentageBased, bank, response("u", "A", "A", "A", "A", "B"), "CL")
	require.NoError(t, err)

	// Question-weighted: 4/5 = 80%. Lecture-averaged would be (100+0)/2 = 50%.
	assert.InDelta(t, 80.0, result.OverallPercentage, 0.001)
}

func TestAnalyze_LectureAggregationUsesPassRatio(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L1"},
		{QuestionNumber: 2, CorrectAlternative: "A", Lecture: "L2"},
		{QuestionNumber: 3, CorrectAlternative: "A", Lecture: "L2"},
	})

	// L1 passes (1/1), L2 fails (1/2): overall = 1/2 lectures = 50%, even
	// though 2/3 questions are correct.
	result, err := Analyze(models.LectureBased, bank, response("u", "A", "A", "B"), "M1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.LecturesAnalyzed)
	assert.Equal(t, 1, result.LecturesPassed)
	assert.InDelta(t, 50.0, result.OverallPercentage, 0.001)
	assert.Equal(t, 2, result.CorrectQuestions)
}

func TestAnalyze_WithMateria(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Biología 1", Materia: "Biología"},
		{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "Biología 1", Materia: "Biología"},
		{QuestionNumber: 3, CorrectAlternative: "C", Lecture: "Física 1", Materia: "Física"},
		{QuestionNumber: 4, CorrectAlternative: "D", Lecture: "Física 2", Materia: "Física"},
	})

	// Biología 1 passes; Física 1 passes; Física 2 fails.
	result, err := Analyze(models.LectureBasedWithMateria, bank, response("u", "A", "B", "C", "A"), "CIEN")
	require.NoError(t, err)

	assert.Equal(t, 2, result.MateriasAnalyzed)
	assert.Equal(t, []string{"Biología", "Física"}, result.Materias)

	bio := result.MateriaResults["Biología"]
	assert.Equal(t, 1, bio.TotalLectures)
	assert.Equal(t, 1, bio.PassedLectures)
	assert.InDelta(t, 100.0, bio.Percentage, 0.001)

	fis := result.MateriaResults["Física"]
	assert.Equal(t, 2, fis.TotalLectures)
	assert.Equal(t, 1, fis.PassedLectures)
	assert.InDelta(t, 50.0, fis.Percentage, 0.001)

	assert.Equal(t, 3, result.LecturesAnalyzed)
	assert.Equal(t, 2, result.LecturesPassed)
	assert.InDelta(t, 100.0*2/3, result.OverallPercentage, 0.001)
}

func TestAnalyze_WithMateriaRequiresMateriaColumn(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Biología 1"},
		{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "Física 1"},
	})

	result, err := Analyze(models.LectureBasedWithMateria, bank, response("u", "A", "B"), "CIEN")
	assert.Nil(t, result)
	require.Error(t, err)

	var ve apperrors.ValidationErrors
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve, 1)
	assert.Equal(t, models.ColumnMateria, ve[0].Field)

	t.Run("one unlabeled entry is enough to fail", func(t *testing.T) {
		mixed := mustBank(t, []models.QuestionBankEntry{
			{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "Biología 1", Materia: "Biología"},
			{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "Física 1"},
		})

		_, err := Analyze(models.LectureBasedWithMateria, mixed, response("u", "A", "B"), "CIEN")
		var ve apperrors.ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, models.ColumnMateria, ve[0].Field)
	})

	t.Run("other modes accept a materia-less bank", func(t *testing.T) {
		_, err := Analyze(models.LectureBased, bank, response("u", "A", "B"), "M1")
		assert.NoError(t, err)
		_, err = Analyze(models.PercentageBased, bank, response("u", "A", "B"), "CL")
		assert.NoError(t, err)
	})
}

func TestAnalyze_OutOfRangeAnswerIsIncorrect(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L"},
		{QuestionNumber: 5, CorrectAlternative: "B", Lecture: "L"},
	})

	// Only one answer submitted; question 5 is beyond the answer list and
	// must score as incorrect without raising.
	result, err := Analyze(models.LectureBased, bank, response("u", "A"), "M1")
	require.NoError(t, err)

	lr := result.LectureResults["L"]
	assert.Equal(t, 2, lr.TotalQuestions)
	assert.Equal(t, 1, lr.CorrectAnswers)
	assert.Equal(t, models.StatusFailed, lr.Status)
}

func TestAnalyze_EmptyAnswersDegradeToZero(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L"},
	})

	for _, typ := range []models.AssessmentType{models.LectureBased, models.PercentageBased} {
		result, err := Analyze(typ, bank, &models.UserResponse{UserID: "u"}, "X")
		require.NoError(t, err)
		assert.Equal(t, 0, result.CorrectQuestions)
		lr := result.LectureResults["L"]
		assert.InDelta(t, 0.0, lr.Percentage, 0.001)
	}
}

func TestAnalyze_AnswerComparisonIsExact(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L"},
	})

	// Case and whitespace are not normalized on the answer.
	for _, wrong := range []string{"a", " A", "A ", ""} {
		result, err := Analyze(models.LectureBased, bank, response("u", wrong), "M1")
		require.NoError(t, err)
		assert.Equal(t, 0, result.LectureResults["L"].CorrectAnswers, "answer %q must not match", wrong)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L1"},
		{QuestionNumber: 2, CorrectAlternative: "B", Lecture: "L2"},
		{QuestionNumber: 3, CorrectAlternative: "C", Lecture: "L2"},
	})
	resp := response("user-9", "A", "B", "D")

	first, err := Analyze(models.LectureBased, bank, resp, "M1")
	require.NoError(t, err)
	second, err := Analyze(models.LectureBased, bank, resp, "M1")
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestAnalyze_UnknownType(t *testing.T) {
	bank := mustBank(t, []models.QuestionBankEntry{
		{QuestionNumber: 1, CorrectAlternative: "A", Lecture: "L"},
	})

	_, err := Analyze(models.AssessmentType("weighted"), bank, response("u", "A"), "X")
	assert.Error(t, err)
}
