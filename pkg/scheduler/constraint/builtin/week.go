package builtin

import (
	"fmt"
	"slices"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// DefaultMaxShiftsPerWeek 每周最多班次数默认值
const DefaultMaxShiftsPerWeek = 5

// MaxShiftsPerWeekConstraint 每个 ISO 周（按开始时间）的班次数上限
// 违反程度为超出的班次数
type MaxShiftsPerWeekConstraint struct {
	*BaseConstraint
	maxShifts int
}

// NewMaxShiftsPerWeekConstraint 创建每周班次上限约束
func NewMaxShiftsPerWeekConstraint(maxShifts int) *MaxShiftsPerWeekConstraint {
	return &MaxShiftsPerWeekConstraint{
		BaseConstraint: NewBaseConstraint(
			"Minimum 2 rest days per week",
			constraint.TypeMaxShiftsPerWeek,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
		maxShifts: maxShifts,
	}
}

// Match 按周统计
func (c *MaxShiftsPerWeekConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil || len(shifts) <= c.maxShifts {
		return nil
	}

	weeks := calendar.GroupBy(shifts, func(sh *model.Shift) calendar.WeekKey {
		return calendar.ISOWeek(sh.Start)
	})
	keys := make([]calendar.WeekKey, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b calendar.WeekKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	var matches []constraint.Match
	for _, week := range keys {
		group := weeks[week]
		if len(group) <= c.maxShifts {
			continue
		}
		matches = append(matches, c.newMatch(int64(len(group)-c.maxShifts), emp, constraint.Justification{
			ShiftIDs: shiftIDs(group...),
			Week:     week.String(),
			Message:  fmt.Sprintf("员工 %s 在 %s 有 %d 个班次，超过上限 %d", emp.Name, week, len(group), c.maxShifts),
		}))
	}
	return matches
}
