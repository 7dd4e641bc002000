// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/shopspring/decimal"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	name     string
	typ      constraint.Type
	category constraint.Category
	impact   constraint.Impact
	weight   int64
}

// NewBaseConstraint 创建基础约束
// 权重按类别落在硬分或软分上
func NewBaseConstraint(name string, typ constraint.Type, cat constraint.Category, impact constraint.Impact, weight int64) *BaseConstraint {
	return &BaseConstraint{
		name:     name,
		typ:      typ,
		category: cat,
		impact:   impact,
		weight:   weight,
	}
}

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Type 返回约束类型
func (c *BaseConstraint) Type() constraint.Type { return c.typ }

// Category 返回约束类别
func (c *BaseConstraint) Category() constraint.Category { return c.category }

// Impact 返回影响方向
func (c *BaseConstraint) Impact() constraint.Impact { return c.impact }

// Weight 返回约束权重
func (c *BaseConstraint) Weight() score.HardSoft {
	if c.category == constraint.CategoryHard {
		return score.Of(c.weight, 0)
	}
	return score.Of(0, c.weight)
}

// SetWeight 设置权重
func (c *BaseConstraint) SetWeight(weight int64) {
	c.weight = weight
}

// newMatch 以整数违反程度创建命中
func (c *BaseConstraint) newMatch(magnitude int64, emp *model.Employee, j constraint.Justification) constraint.Match {
	if emp != nil {
		j.Employee = emp.Name
	}
	return constraint.NewMatch(c, decimal.NewFromInt(magnitude), j)
}

// shiftIDs 提取班次ID
func shiftIDs(shifts ...*model.Shift) []string {
	ids := make([]string, len(shifts))
	for i, sh := range shifts {
		ids[i] = sh.ID
	}
	return ids
}
