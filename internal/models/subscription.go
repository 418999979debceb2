package models

import "time"

// ParsePlanType - пустой или неизвестный план считается семестровым.
func ParsePlanType(s string) PlanType {
	if PlanType(s) == PlanAnnual {
		return PlanAnnual
	}
	return PlanSemester
}

// DurationMonths - срок действия плана
func (p PlanType) DurationMonths() int {
	if p == PlanAnnual {
		return 12
	}
	return 6
}

// EndDate - дата окончания подписки, начатой в start
func (p PlanType) EndDate(start time.Time) time.Time {
	return start.AddDate(0, p.DurationMonths(), 0)
}
