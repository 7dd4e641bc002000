package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// DateConstraint 基于员工日期集合的约束
// 班次开始或结束日期落在集合内时命中，违反程度为班次在该日内的分钟数
type DateConstraint struct {
	*BaseConstraint
	dates func(emp *model.Employee) model.DateSet
	label string
}

// NewUnavailableEmployeeConstraint 员工不可用日期不得排班（硬约束）
func NewUnavailableEmployeeConstraint() *DateConstraint {
	return &DateConstraint{
		BaseConstraint: NewBaseConstraint(
			"Unavailable employee",
			constraint.TypeUnavailableEmployee,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
		dates: func(emp *model.Employee) model.DateSet { return emp.UnavailableDates },
		label: "不可用",
	}
}

// NewUndesiredDayConstraint 尽量避开员工不希望上班的日期
func NewUndesiredDayConstraint() *DateConstraint {
	return &DateConstraint{
		BaseConstraint: NewBaseConstraint(
			"Undesired day for employee",
			constraint.TypeUndesiredDay,
			constraint.CategorySoft,
			constraint.ImpactPenalize,
			1,
		),
		dates: func(emp *model.Employee) model.DateSet { return emp.UndesiredDates },
		label: "不希望上班",
	}
}

// NewDesiredDayConstraint 尽量满足员工希望上班的日期（奖励）
func NewDesiredDayConstraint() *DateConstraint {
	return &DateConstraint{
		BaseConstraint: NewBaseConstraint(
			"Desired day for employee",
			constraint.TypeDesiredDay,
			constraint.CategorySoft,
			constraint.ImpactReward,
			1,
		),
		dates: func(emp *model.Employee) model.DateSet { return emp.DesiredDates },
		label: "希望上班",
	}
}

// Match 对每个班次检查其开始或结束日期是否在日期集合中
func (c *DateConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil {
		return nil
	}
	dates := c.dates(emp)
	if len(dates) == 0 {
		return nil
	}

	candidates := dates.Sorted()
	var matches []constraint.Match
	for _, sh := range shifts {
		for _, date := range candidates {
			if !calendar.OverlapsDate(sh, date) {
				continue
			}
			minutes := calendar.OverlapDurationWithinDate(sh, date)
			if minutes <= 0 {
				continue
			}
			matches = append(matches, c.newMatch(minutes, emp, constraint.Justification{
				ShiftIDs: shiftIDs(sh),
				Date:     date,
				Message:  fmt.Sprintf("员工 %s 在%s日期 %s 有班次 %s（%d 分钟）", emp.Name, c.label, date, sh.ID, minutes),
			}))
		}
	}
	return matches
}
