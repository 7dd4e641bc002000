package builtin

import (
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
	"github.com/shopspring/decimal"
)

// WorkloadBalanceConstraint 工作量均衡约束
// 以全体员工班次数的不公平度为违反程度，未排班的员工负载为 0
type WorkloadBalanceConstraint struct {
	*BaseConstraint
}

// NewWorkloadBalanceConstraint 创建工作量均衡约束
func NewWorkloadBalanceConstraint() *WorkloadBalanceConstraint {
	return &WorkloadBalanceConstraint{
		BaseConstraint: NewBaseConstraint(
			"Balance employee shift assignments",
			constraint.TypeWorkloadBalance,
			constraint.CategorySoft,
			constraint.ImpactPenalize,
			1,
		),
	}
}

// Magnitude 返回不公平度
func (c *WorkloadBalanceConstraint) Magnitude(summary stats.LoadSummary) decimal.Decimal {
	return summary.Unfairness()
}
