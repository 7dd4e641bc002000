package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// UnassignedShiftConstraint 每个未分配的班次罚一个硬分
type UnassignedShiftConstraint struct {
	*BaseConstraint
}

// NewUnassignedShiftConstraint 创建未分配班次约束
func NewUnassignedShiftConstraint() *UnassignedShiftConstraint {
	return &UnassignedShiftConstraint{
		BaseConstraint: NewBaseConstraint(
			"Unassigned shift",
			constraint.TypeUnassignedShift,
			constraint.CategoryHard,
			constraint.ImpactPenalize,
			1,
		),
	}
}

// Match 只作用于未分配池
func (c *UnassignedShiftConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp != nil {
		return nil
	}

	matches := make([]constraint.Match, 0, len(shifts))
	for _, sh := range shifts {
		matches = append(matches, c.newMatch(1, nil, constraint.Justification{
			ShiftIDs: shiftIDs(sh),
			Date:     sh.StartDate(),
			Message:  fmt.Sprintf("班次 %s 未分配", sh.ID),
		}))
	}
	return matches
}
