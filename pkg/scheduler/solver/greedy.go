// Package solver 提供排班求解器
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// Solver 求解器接口
type Solver interface {
	// Solve 就地修改排班，返回求解结果
	Solve(ctx context.Context, s *model.Schedule) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	Score    score.HardSoft `json:"score"`
	Assigned int            `json:"assigned"`
	Steps    int            `json:"steps"`
	Duration time.Duration  `json:"duration"`
}

// GreedySolver 贪心构造求解器
// 按时间顺序为每个未分配班次选择分数增量最好的员工
type GreedySolver struct {
	constraintManager *constraint.Manager
	logger            *logger.SchedulerLogger
	allowUnassigned   bool
}

// NewGreedySolver 创建贪心求解器
func NewGreedySolver(cm *constraint.Manager, allowUnassigned bool) *GreedySolver {
	return &GreedySolver{
		constraintManager: cm,
		logger:            logger.NewSchedulerLogger(),
		allowUnassigned:   allowUnassigned,
	}
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "GreedySolver"
}

// Solve 使用贪心算法分配未分配班次，已分配的班次保持不变
func (s *GreedySolver) Solve(ctx context.Context, sched *model.Schedule) (*Result, error) {
	startTime := time.Now()
	sess := s.constraintManager.NewSession(sched)
	result := &Result{}

	// 员工按姓名决胜
	candidates := make([]*model.Employee, len(sched.Employees))
	copy(candidates, sched.Employees)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	for _, shift := range calendar.Chronological(sched.Shifts) {
		if shift.Employee != nil {
			continue
		}
		if ctx.Err() != nil {
			result.Score = sess.Score()
			result.Duration = time.Since(startTime)
			return result, ctx.Err()
		}
		result.Steps++

		var bestEmp *model.Employee
		var bestDelta score.HardSoft
		found := false
		if s.allowUnassigned {
			bestDelta = score.Zero
			found = true
		}

		for _, emp := range candidates {
			delta := sess.Delta([]constraint.Change{{Shift: shift, To: emp}})
			if !found || delta.Compare(bestDelta) > 0 {
				bestEmp, bestDelta, found = emp, delta, true
			}
		}

		if bestEmp != nil {
			sess.Apply([]constraint.Change{{Shift: shift, To: bestEmp}})
			result.Assigned++
		}
	}

	result.Score = sess.Score()
	result.Duration = time.Since(startTime)
	return result, nil
}
