package analyzer

import (
	"fmt"

	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// Recommendation strings used by the plan table.
const (
	PlanM1           = "M1"
	PlanCL           = "CL"
	PlanElective     = "Electivo"
	PlanByCareer     = "Elije en base a tu carrera"
	PlanPersonalized = "Plan personalizado"
)

type levelPair struct {
	Lecture    models.Level // lecture-based exam (M1)
	Percentage models.Level // percentage-based exam (CL)
}

// planTable maps every (lecture level, percentage level) combination to its
// per-month recommendation. All 9 combinations times all 3 months are
// present; a missed lookup therefore signals a programming defect upstream,
// never a data condition.
var planTable = map[levelPair]map[models.Month]string{
	{models.Level1, models.Level1}: {
		models.MonthAugust:    PlanCL,
		models.MonthSeptember: PlanM1,
		models.MonthOctober:   PlanM1,
	},
	{models.Level1, models.Level2}: {
		models.MonthAugust:    PlanCL,
		models.MonthSeptember: PlanM1,
		models.MonthOctober:   PlanM1,
	},
	{models.Level1, models.Level3}: {
		models.MonthAugust:    PlanM1,
		models.MonthSeptember: PlanM1,
		models.MonthOctober:   PlanPersonalized,
	},
	{models.Level2, models.Level1}: {
		models.MonthAugust:    PlanByCareer,
		models.MonthSeptember: PlanByCareer,
		models.MonthOctober:   PlanByCareer,
	},
	{models.Level2, models.Level2}: {
		models.MonthAugust:    PlanCL,
		models.MonthSeptember: PlanM1,
		models.MonthOctober:   PlanPersonalized,
	},
	{models.Level2, models.Level3}: {
		models.MonthAugust:    PlanM1,
		models.MonthSeptember: PlanElective,
		models.MonthOctober:   PlanElective,
	},
	{models.Level3, models.Level1}: {
		models.MonthAugust:    PlanCL,
		models.MonthSeptember: PlanElective,
		models.MonthOctober:   PlanElective,
	},
	{models.Level3, models.Level2}: {
		models.MonthAugust:    PlanCL,
		models.MonthSeptember: PlanElective,
		models.MonthOctober:   PlanElective,
	},
	{models.Level3, models.Level3}: {
		models.MonthAugust:    PlanElective,
		models.MonthSeptember: PlanElective,
		models.MonthOctober:   PlanElective,
	},
}

// MonthlyPlan returns the study recommendation for the given level
// combination and month. Levels outside the 1-3 domain or a month outside
// the plan fail loudly: clamping or defaulting here would mask a
// level-computation bug upstream.
func MonthlyPlan(lectureLevel, percentageLevel models.Level, month models.Month) (string, error) {
	if !lectureLevel.Valid() {
		return "", fmt.Errorf("lecture exam level %d outside defined domain [1,3]", int(lectureLevel))
	}
	if !percentageLevel.Valid() {
		return "", fmt.Errorf("percentage exam level %d outside defined domain [1,3]", int(percentageLevel))
	}
	if !month.Valid() {
		return "", fmt.Errorf("month %q is not covered by the study plan", month)
	}

	months, ok := planTable[levelPair{lectureLevel, percentageLevel}]
	if !ok {
		return "", fmt.Errorf("no plan defined for level combination (%d, %d)", int(lectureLevel), int(percentageLevel))
	}
	plan, ok := months[month]
	if !ok {
		return "", fmt.Errorf("no plan defined for month %q at levels (%d, %d)", month, int(lectureLevel), int(percentageLevel))
	}
	return plan, nil
}
