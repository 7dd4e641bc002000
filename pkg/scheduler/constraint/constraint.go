// Package constraint 定义约束接口和管理器
package constraint

import (
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
	"github.com/shopspring/decimal"
)

// Type 约束类型标识
type Type string

const (
	// 硬约束类型
	TypeOverlappingShift     Type = "overlapping_shift"
	TypeMinRestBetweenShifts Type = "min_rest_between_shifts"
	TypeUnavailableEmployee  Type = "unavailable_employee"
	TypeMaxShiftsPerWeek     Type = "max_shifts_per_week"
	TypeUnassignedShift      Type = "unassigned_shift"
	TypeMaxConsecutiveNights Type = "max_consecutive_night_shifts"
	TypeOneShiftPerDay       Type = "one_shift_per_day"

	// 软约束类型
	TypeRequiredSkill   Type = "required_skill"
	TypeUndesiredDay    Type = "undesired_day"
	TypeDesiredDay      Type = "desired_day"
	TypeWorkloadBalance Type = "workload_balance"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（尽量满足）
)

// Impact 约束对分数的影响方向
type Impact string

const (
	ImpactPenalize Impact = "penalize"
	ImpactReward   Impact = "reward"
)

// Constraint 约束接口
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Impact 返回惩罚或奖励
	Impact() Impact

	// Weight 返回单位权重，硬约束为硬分、软约束为软分
	Weight() score.HardSoft
}

// EmployeeConstraint 只依赖单个员工所分配班次的约束
type EmployeeConstraint interface {
	Constraint

	// Match 评估一个员工的班次（已按时间排序）
	// emp 为 nil 时 shifts 是未分配班次
	Match(emp *model.Employee, shifts []*model.Shift) []Match
}

// LoadConstraint 依赖全体员工负载汇总的约束
type LoadConstraint interface {
	Constraint

	// Magnitude 由负载汇总计算违反程度，必须是汇总的纯函数
	Magnitude(summary stats.LoadSummary) decimal.Decimal
}

// Justification 匹配依据
type Justification struct {
	Employee string   `json:"employee,omitempty"`
	ShiftIDs []string `json:"shift_ids,omitempty"`
	Date     string   `json:"date,omitempty"`
	Week     string   `json:"week,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Match 一次约束命中
type Match struct {
	ConstraintType Type            `json:"constraint_type"`
	ConstraintName string          `json:"constraint_name"`
	Category       Category        `json:"category"`
	Impact         Impact          `json:"impact"`
	Magnitude      decimal.Decimal `json:"magnitude"`
	Score          score.HardSoft  `json:"score"`
	Justification  Justification   `json:"justification"`
}

// NewMatch 按约束的权重与方向计算命中得分
func NewMatch(c Constraint, magnitude decimal.Decimal, j Justification) Match {
	impact := c.Weight().Mul(magnitude)
	if c.Impact() == ImpactPenalize {
		impact = impact.Neg()
	}
	return Match{
		ConstraintType: c.Type(),
		ConstraintName: c.Name(),
		Category:       c.Category(),
		Impact:         c.Impact(),
		Magnitude:      magnitude,
		Score:          impact,
		Justification:  j,
	}
}

// SumMatches 汇总命中得分
func SumMatches(matches []Match) score.HardSoft {
	total := score.Zero
	for _, m := range matches {
		total = total.Add(m.Score)
	}
	return total
}

// Result 约束评估结果
type Result struct {
	Score       score.HardSoft `json:"score"`
	Feasible    bool           `json:"feasible"`
	Matches     []Match        `json:"matches"`
	HardMatches int            `json:"hard_matches"`
	SoftMatches int            `json:"soft_matches"`
}

// Summary 按约束类型汇总
type Summary struct {
	ConstraintType Type           `json:"constraint_type"`
	ConstraintName string         `json:"constraint_name"`
	Category       Category       `json:"category"`
	Count          int            `json:"count"`
	Score          score.HardSoft `json:"score"`
}

// Summaries 按约束类型汇总命中，顺序与命中首次出现的顺序一致
func (r *Result) Summaries() []Summary {
	index := make(map[Type]int)
	var result []Summary
	for _, m := range r.Matches {
		i, ok := index[m.ConstraintType]
		if !ok {
			i = len(result)
			index[m.ConstraintType] = i
			result = append(result, Summary{
				ConstraintType: m.ConstraintType,
				ConstraintName: m.ConstraintName,
				Category:       m.Category,
				Score:          score.Zero,
			})
		}
		result[i].Count++
		result[i].Score = result[i].Score.Add(m.Score)
	}
	return result
}
