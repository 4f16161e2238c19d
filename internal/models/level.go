package models

import "fmt"

// Level is the ordinal proficiency classification derived from an
// assessment's aggregate metric.
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

// Valid reports whether the level is inside the defined 1-3 domain.
func (l Level) Valid() bool {
	return l >= Level1 && l <= Level3
}

func (l Level) String() string {
	return fmt.Sprintf("Nivel %d", int(l))
}

// Month is a calendar month covered by the study plan.
type Month string

const (
	MonthAugust    Month = "agosto"
	MonthSeptember Month = "septiembre"
	MonthOctober   Month = "octubre"
)

// PlanMonths lists the months a study plan covers, in calendar order.
var PlanMonths = []Month{MonthAugust, MonthSeptember, MonthOctober}

// Valid reports whether the month is one of the plan months.
func (m Month) Valid() bool {
	for _, pm := range PlanMonths {
		if m == pm {
			return true
		}
	}
	return false
}
