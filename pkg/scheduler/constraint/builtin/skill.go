package builtin

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// RequiredSkillConstraint 员工应具备班次要求的技能
// 班次未要求技能时不检查
type RequiredSkillConstraint struct {
	*BaseConstraint
}

// NewRequiredSkillConstraint 创建技能约束
func NewRequiredSkillConstraint() *RequiredSkillConstraint {
	return &RequiredSkillConstraint{
		BaseConstraint: NewBaseConstraint(
			"Missing required skill",
			constraint.TypeRequiredSkill,
			constraint.CategorySoft,
			constraint.ImpactPenalize,
			1,
		),
	}
}

// Match 每个技能不符的班次计一次
func (c *RequiredSkillConstraint) Match(emp *model.Employee, shifts []*model.Shift) []constraint.Match {
	if emp == nil {
		return nil
	}

	var matches []constraint.Match
	for _, sh := range shifts {
		if sh.RequiredSkill == "" || emp.HasSkill(sh.RequiredSkill) {
			continue
		}
		matches = append(matches, c.newMatch(1, emp, constraint.Justification{
			ShiftIDs: shiftIDs(sh),
			Date:     sh.StartDate(),
			Message:  fmt.Sprintf("员工 %s 缺少班次 %s 要求的技能 %s", emp.Name, sh.ID, sh.RequiredSkill),
		}))
	}
	return matches
}
