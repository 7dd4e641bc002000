// Package swap 提供调班功能：评估改派或互换对排班分数的影响，并为班次推荐接替人选
package swap

import (
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
)

// Kind 调班方式
type Kind string

const (
	KindTakeOver Kind = "take_over" // 班次改派给目标员工
	KindExchange Kind = "exchange"  // 与目标员工的另一个班次互换
)

// Request 调班请求
type Request struct {
	ShiftID       string `json:"shift_id" validate:"required"`
	Employee      string `json:"employee" validate:"required"`
	ExchangeShift string `json:"exchange_shift,omitempty"` // 互换时目标员工让出的班次
}

// Kind 返回请求的调班方式
func (r Request) Kind() Kind {
	if r.ExchangeShift != "" {
		return KindExchange
	}
	return KindTakeOver
}

// Impact 单个约束的分数变化
type Impact struct {
	ConstraintType constraint.Type     `json:"constraint_type"`
	ConstraintName string              `json:"constraint_name"`
	Category       constraint.Category `json:"category"`
	Before         score.HardSoft      `json:"before"`
	After          score.HardSoft      `json:"after"`
}

// Evaluation 调班评估结果
type Evaluation struct {
	Kind           Kind           `json:"swap_type"`
	Before         score.HardSoft `json:"before"`
	After          score.HardSoft `json:"after"`
	Delta          score.HardSoft `json:"delta"`
	Feasible       bool           `json:"feasible"` // 调班后无硬约束违反
	Impacts        []Impact       `json:"impacts"`
	Recommendation string         `json:"recommendation"`
}

// Evaluator 调班评估器
type Evaluator struct {
	manager *constraint.Manager
}

// NewEvaluator 创建调班评估器
func NewEvaluator(manager *constraint.Manager) *Evaluator {
	return &Evaluator{manager: manager}
}

// Evaluate 评估调班，不修改输入排班
func (e *Evaluator) Evaluate(s *model.Schedule, req Request) (*Evaluation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	work := s.Clone()
	changes, err := resolve(work, req)
	if err != nil {
		return nil, err
	}

	before := e.manager.Evaluate(work)
	for _, c := range changes {
		c.Shift.Employee = c.To
	}
	after := e.manager.Evaluate(work)

	result := &Evaluation{
		Kind:     req.Kind(),
		Before:   before.Score,
		After:    after.Score,
		Delta:    after.Score.Sub(before.Score),
		Feasible: after.Score.IsFeasible(),
		Impacts:  diffSummaries(before.Summaries(), after.Summaries()),
	}
	result.Recommendation = recommendation(result)
	return result, nil
}

// resolve 将请求转换为改派列表
func resolve(s *model.Schedule, req Request) ([]constraint.Change, error) {
	shift := s.ShiftByID(req.ShiftID)
	if shift == nil {
		return nil, errors.NotFound("班次", req.ShiftID)
	}
	target := s.EmployeeByName(req.Employee)
	if target == nil {
		return nil, errors.UnknownEmployee(req.ShiftID, req.Employee)
	}
	if shift.Employee == target {
		return nil, errors.InvalidInput("employee", "目标员工已负责该班次")
	}

	changes := []constraint.Change{{Shift: shift, To: target}}
	if req.ExchangeShift == "" {
		return changes, nil
	}

	other := s.ShiftByID(req.ExchangeShift)
	if other == nil {
		return nil, errors.NotFound("班次", req.ExchangeShift)
	}
	if other.Employee != target {
		return nil, errors.InvalidInput("exchange_shift",
			fmt.Sprintf("班次 %s 不属于员工 %s", req.ExchangeShift, req.Employee))
	}
	return append(changes, constraint.Change{Shift: other, To: shift.Employee}), nil
}

// diffSummaries 按约束类型对比前后汇总，只保留有变化的约束
func diffSummaries(before, after []constraint.Summary) []Impact {
	index := make(map[constraint.Type]int)
	var impacts []Impact
	for _, s := range before {
		index[s.ConstraintType] = len(impacts)
		impacts = append(impacts, Impact{
			ConstraintType: s.ConstraintType,
			ConstraintName: s.ConstraintName,
			Category:       s.Category,
			Before:         s.Score,
			After:          score.Zero,
		})
	}
	for _, s := range after {
		if i, ok := index[s.ConstraintType]; ok {
			impacts[i].After = s.Score
			continue
		}
		impacts = append(impacts, Impact{
			ConstraintType: s.ConstraintType,
			ConstraintName: s.ConstraintName,
			Category:       s.Category,
			Before:         score.Zero,
			After:          s.Score,
		})
	}

	changed := impacts[:0]
	for _, imp := range impacts {
		if !imp.Before.Equal(imp.After) {
			changed = append(changed, imp)
		}
	}
	return changed
}

// recommendation 生成调班建议
func recommendation(e *Evaluation) string {
	switch {
	case !e.Feasible && e.Delta.Hard.IsNegative():
		return "不建议进行此调班，会引入硬约束冲突"
	case !e.Feasible:
		return "调班后仍存在硬约束冲突"
	case e.Delta.Compare(score.Zero) > 0:
		return "推荐，调班后整体分数提升"
	case e.Delta.IsZero():
		return "可以进行，对整体分数无影响"
	default:
		return "可以进行，但会降低软约束得分"
	}
}
