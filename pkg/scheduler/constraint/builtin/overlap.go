package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// OverlappingShiftConstraint 同一员工的班次不得重叠
// 违反程度为重叠分钟数
type OverlappingShiftConstraint struct {
	*BaseConstraint
}

// NewOverlappingShiftConstraint 创建班次重叠约束
func NewOverlappingShiftConstraint() *OverlappingShiftConstraint {
	return &OverlappingShiftConstraint{
		BaseConstraint: NewBaseConstraint(
			"Overlapping shift",
			constraint.TypeOverlappingShift,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
	}
}

// Match 检查每对重叠班次
func (c *OverlappingShiftConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil || len(shifts) < 2 {
		return nil
	}

	var matches []constraint.Match
	calendar.OverlappingPairs(shifts, func(a, b *model.Shift) {
		minutes := calendar.OverlapMinutes(a.TimeRange(), b.TimeRange())
		if minutes <= 0 {
			return
		}
		matches = append(matches, c.newMatch(minutes, emp, constraint.Justification{
			ShiftIDs: shiftIDs(a, b),
			Date:     b.StartDate(),
			Message:  fmt.Sprintf("员工 %s 的班次 %s 与 %s 重叠 %d 分钟", emp.Name, a.ID, b.ID, minutes),
		}))
	})
	return matches
}

// OneShiftPerDayConstraint 同一员工每天至多一个班次（按开始日期）
type OneShiftPerDayConstraint struct {
	*BaseConstraint
}

// NewOneShiftPerDayConstraint 创建每日一班约束
func NewOneShiftPerDayConstraint() *OneShiftPerDayConstraint {
	return &OneShiftPerDayConstraint{
		BaseConstraint: NewBaseConstraint(
			"Max one shift per day",
			constraint.TypeOneShiftPerDay,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
	}
}

// Match 同一开始日期的每对班次计一次
func (c *OneShiftPerDayConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil || len(shifts) < 2 {
		return nil
	}

	var matches []constraint.Match
	calendar.UniquePairs(shifts, func(a, b *model.Shift) bool {
		return a.StartDate() == b.StartDate()
	}, func(a, b *model.Shift) {
		matches = append(matches, c.newMatch(1, emp, constraint.Justification{
			ShiftIDs: shiftIDs(a, b),
			Date:     a.StartDate(),
			Message:  fmt.Sprintf("员工 %s 在 %s 有多个班次", emp.Name, a.StartDate()),
		}))
	})
	return matches
}
