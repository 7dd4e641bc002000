// Package scheduler 提供排班评分与优化的统一入口
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint/builtin"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/solver"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
)

// Result 优化结果
type Result struct {
	RunID             string                 `json:"run_id"`
	Schedule          *model.Schedule        `json:"-"`
	Score             score.HardSoft         `json:"score"`
	Feasible          bool                   `json:"feasible"`
	State             optimizer.State        `json:"state"`
	ConstructionScore score.HardSoft         `json:"construction_score"`
	Steps             int                    `json:"steps"`
	BestStep          int                    `json:"best_step"`
	Duration          time.Duration          `json:"duration"`
	Fairness          *stats.FairnessMetrics `json:"fairness,omitempty"`
}

// Observer 求解过程观察者
type Observer interface {
	// BestImproved 最优分数提升
	BestImproved(runID string, step int, best score.HardSoft)

	// SolveComplete 求解结束（包括取消）
	SolveComplete(result *Result)
}

// Engine 排班引擎
type Engine struct {
	manager  *constraint.Manager
	logger   *logger.SchedulerLogger
	observer Observer
}

// NewEngine 使用给定约束管理器创建引擎
func NewEngine(manager *constraint.Manager) *Engine {
	return &Engine{
		manager: manager,
		logger:  logger.NewSchedulerLogger(),
	}
}

// NewDefaultEngine 使用默认约束创建引擎
func NewDefaultEngine(constraintConfig map[string]interface{}) *Engine {
	return NewEngine(builtin.NewDefaultManager(constraintConfig))
}

// SetObserver 设置观察者
func (e *Engine) SetObserver(o Observer) {
	e.observer = o
}

// Manager 返回约束管理器
func (e *Engine) Manager() *constraint.Manager {
	return e.manager
}

// Score 计算排班分数
func (e *Engine) Score(s *model.Schedule) (score.HardSoft, error) {
	if err := s.Validate(); err != nil {
		return score.Zero, err
	}
	return e.manager.Explain(s).Score, nil
}

// Explain 返回所有约束命中
func (e *Engine) Explain(s *model.Schedule) ([]constraint.Match, error) {
	result, err := e.Evaluate(s)
	if err != nil {
		return nil, err
	}
	return result.Matches, nil
}

// Evaluate 返回完整评估结果
func (e *Engine) Evaluate(s *model.Schedule) (*constraint.Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return e.manager.Evaluate(s), nil
}

// Optimize 先贪心构造再局部搜索，返回优化后的副本，不修改输入
// 上下文取消时返回已找到的最优解与 SOLVER_CANCELLED 错误
func (e *Engine) Optimize(ctx context.Context, s *model.Schedule, cfg optimizer.Config) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.New().String()
	work := s.Clone()

	construction, err := solver.NewGreedySolver(e.manager, cfg.AllowUnassigned).Solve(ctx, work)
	if err != nil {
		result := &Result{
			RunID:             runID,
			Schedule:          work,
			Score:             construction.Score,
			Feasible:          construction.Score.IsFeasible(),
			State:             optimizer.StateCancelled,
			ConstructionScore: construction.Score,
			Duration:          time.Since(start),
		}
		e.complete(result)
		return result, errors.Wrap(err, errors.CodeSolverCancelled, "求解已取消")
	}
	e.logger.PhaseComplete(runID, "construction", construction.Steps, construction.Duration, construction.Score.String())

	opt := optimizer.NewLocalSearchOptimizer(cfg, e.manager)
	opt.RunID = runID
	if e.observer != nil {
		opt.OnBestImproved = func(step int, best score.HardSoft) {
			e.observer.BestImproved(runID, step, best)
		}
	}
	searched, searchErr := opt.Optimize(ctx, work)

	evaluation := e.manager.Explain(work)
	result := &Result{
		RunID:             runID,
		Schedule:          work,
		Score:             evaluation.Score,
		Feasible:          evaluation.Feasible,
		State:             searched.State,
		ConstructionScore: construction.Score,
		Steps:             searched.Steps,
		BestStep:          searched.BestStep,
		Duration:          time.Since(start),
		Fairness:          stats.NewFairnessAnalyzer().Analyze(work),
	}
	e.complete(result)

	if searchErr != nil {
		return result, errors.Wrap(searchErr, errors.CodeSolverCancelled, "求解已取消")
	}
	return result, nil
}

// complete 记录结束日志并通知观察者
func (e *Engine) complete(result *Result) {
	e.logger.SolveComplete(result.RunID, string(result.State), result.Duration, result.Score.String(), result.Feasible)
	if e.observer != nil {
		e.observer.SolveComplete(result)
	}
}
