package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// DefaultMaxConsecutiveNights 连续夜班天数默认上限
const DefaultMaxConsecutiveNights = 3

// MaxConsecutiveNightShiftsConstraint 连续夜班天数上限
// 以夜班开始日期计，连续天数超过上限时命中，违反程度为超出天数
type MaxConsecutiveNightShiftsConstraint struct {
	*BaseConstraint
	maxNights int
}

// NewMaxConsecutiveNightShiftsConstraint 创建连续夜班约束
func NewMaxConsecutiveNightShiftsConstraint(maxNights int) *MaxConsecutiveNightShiftsConstraint {
	return &MaxConsecutiveNightShiftsConstraint{
		BaseConstraint: NewBaseConstraint(
			"No more than three consecutive night shifts",
			constraint.TypeMaxConsecutiveNights,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
		maxNights: maxNights,
	}
}

// Match 找出所有超限的连续夜班区间
func (c *MaxConsecutiveNightShiftsConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil || len(shifts) <= c.maxNights {
		return nil
	}

	nights := make(map[string][]*model.Shift)
	for _, sh := range shifts {
		if calendar.IsNightShift(sh) {
			nights[sh.StartDate()] = append(nights[sh.StartDate()], sh)
		}
	}
	if len(nights) <= c.maxNights {
		return nil
	}

	var matches []constraint.Match
	dates := calendar.SortedKeys(nights)
	runStart := 0
	for i := 1; i <= len(dates); i++ {
		if i < len(dates) && calendar.NextDate(dates[i-1]) == dates[i] {
			continue
		}
		run := dates[runStart:i]
		if len(run) > c.maxNights {
			var runShifts []*model.Shift
			for _, d := range run {
				runShifts = append(runShifts, nights[d]...)
			}
			matches = append(matches, c.newMatch(int64(len(run)-c.maxNights), emp, constraint.Justification{
				ShiftIDs: shiftIDs(runShifts...),
				Date:     run[0],
				Message:  fmt.Sprintf("员工 %s 自 %s 起连续 %d 天夜班，超过上限 %d", emp.Name, run[0], len(run), c.maxNights),
			}))
		}
		runStart = i
	}
	return matches
}
