package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// 休息时间默认值（分钟）
const (
	DefaultRestThresholdMinutes = 180
	DefaultRestTargetMinutes    = 300
)

// MinRestBetweenShiftsConstraint 班次间最小休息时间约束
// 与紧邻前一班次的间隔小于阈值时触发，违反程度为 目标 - 间隔
type MinRestBetweenShiftsConstraint struct {
	*BaseConstraint
	thresholdMinutes int64
	targetMinutes    int64
}

// NewMinRestBetweenShiftsConstraint 创建班次间最小休息约束
func NewMinRestBetweenShiftsConstraint(thresholdMinutes, targetMinutes int) *MinRestBetweenShiftsConstraint {
	return &MinRestBetweenShiftsConstraint{
		BaseConstraint: NewBaseConstraint(
			"At least 5 hours between 2 shifts",
			constraint.TypeMinRestBetweenShifts,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
		thresholdMinutes: int64(thresholdMinutes),
		targetMinutes:    int64(targetMinutes),
	}
}

// Match 检查每个班次与其前一班次的间隔
func (c *MinRestBetweenShiftsConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil || len(shifts) < 2 {
		return nil
	}

	var matches []constraint.Match
	for i := 1; i < len(shifts); i++ {
		prev := calendar.Predecessor(shifts, i)
		if prev == nil {
			continue
		}
		current := shifts[i]
		gap := int64(current.Start.Sub(prev.End).Minutes())
		if gap >= c.thresholdMinutes {
			continue
		}
		matches = append(matches, c.newMatch(c.targetMinutes-gap, emp, constraint.Justification{
			ShiftIDs: shiftIDs(prev, current),
			Date:     current.StartDate(),
			Message: fmt.Sprintf(
				"员工 %s 班次 %s 与 %s 间隔仅 %d 分钟，少于要求的 %d 分钟",
				emp.Name, prev.ID, current.ID, gap, c.thresholdMinutes,
			),
		}))
	}
	return matches
}
