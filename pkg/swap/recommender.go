package swap

import (
	"fmt"
	"sort"

	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
)

// Recommendation 调班推荐
type Recommendation struct {
	Kind          Kind           `json:"swap_type"`
	Employee      string         `json:"employee"`
	ExchangeShift string         `json:"exchange_shift,omitempty"`
	Delta         score.HardSoft `json:"delta"`
	Score         score.HardSoft `json:"score"` // 调班后的总分
	Feasible      bool           `json:"feasible"`
	Reason        string         `json:"reason"`
	Rank          int            `json:"rank"`
}

// Options 推荐选项
type Options struct {
	MaxRecommendations int      `json:"max_recommendations" validate:"gte=0"` // 0 表示不限
	Exclude            []string `json:"exclude,omitempty"`
	AllowExchange      bool     `json:"allow_exchange"`
	FeasibleOnly       bool     `json:"feasible_only"`
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{
		MaxRecommendations: 5,
		AllowExchange:      true,
	}
}

// Recommender 调班推荐器
type Recommender struct {
	manager *constraint.Manager
}

// NewRecommender 创建调班推荐器
func NewRecommender(manager *constraint.Manager) *Recommender {
	return &Recommender{manager: manager}
}

// Recommend 为班次推荐接替人选，按分数变化从好到差排序
// 候选只做增量评估，不修改输入排班
func (r *Recommender) Recommend(s *model.Schedule, shiftID string, opts Options) ([]Recommendation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	shift := s.ShiftByID(shiftID)
	if shift == nil {
		return nil, errors.NotFound("班次", shiftID)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	session := r.manager.NewSession(s)
	base := session.Score()
	current := shift.Employee

	var candidates []Recommendation
	add := func(kind Kind, emp *model.Employee, exchange *model.Shift, changes []constraint.Change) {
		delta := session.Delta(changes)
		after := base.Add(delta)
		if opts.FeasibleOnly && !after.IsFeasible() {
			return
		}
		rec := Recommendation{
			Kind:     kind,
			Employee: emp.Name,
			Delta:    delta,
			Score:    after,
			Feasible: after.IsFeasible(),
		}
		if exchange != nil {
			rec.ExchangeShift = exchange.ID
		}
		rec.Reason = reason(rec)
		candidates = append(candidates, rec)
	}

	for _, emp := range s.Employees {
		if emp == current || excluded[emp.Name] {
			continue
		}
		add(KindTakeOver, emp, nil, []constraint.Change{{Shift: shift, To: emp}})

		if !opts.AllowExchange || current == nil {
			continue
		}
		for _, other := range s.Shifts {
			if other.Employee != emp {
				continue
			}
			add(KindExchange, emp, other, []constraint.Change{
				{Shift: shift, To: emp},
				{Shift: other, To: current},
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if c := a.Delta.Compare(b.Delta); c != 0 {
			return c > 0
		}
		if a.Kind != b.Kind {
			return a.Kind == KindTakeOver
		}
		if a.Employee != b.Employee {
			return a.Employee < b.Employee
		}
		return a.ExchangeShift < b.ExchangeShift
	})

	if opts.MaxRecommendations > 0 && len(candidates) > opts.MaxRecommendations {
		candidates = candidates[:opts.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// reason 生成推荐原因
func reason(r Recommendation) string {
	switch {
	case r.Delta.Hard.IsPositive():
		return fmt.Sprintf("减少硬约束违反 %s", r.Delta.Hard.String())
	case r.Delta.Hard.IsNegative():
		return "会引入硬约束冲突"
	case r.Delta.Soft.IsPositive():
		return "软约束得分提升"
	case r.Delta.Soft.IsZero():
		return "对整体分数无影响"
	default:
		return "软约束得分下降"
	}
}
