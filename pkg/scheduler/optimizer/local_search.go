package optimizer

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// minTemperature 温度下限，低于该值不再接受变差的移动
const minTemperature = 1e-9

// Result 局部搜索结果
type Result struct {
	RunID    string          `json:"run_id"`
	Schedule *model.Schedule `json:"-"`
	Score    score.HardSoft  `json:"score"`
	State    State           `json:"state"`
	Steps    int             `json:"steps"`
	BestStep int             `json:"best_step"`
	Accepted int             `json:"accepted"`
	Duration time.Duration   `json:"duration"`
}

// ProgressFunc 最优分数提升时回调
type ProgressFunc func(step int, best score.HardSoft)

// LocalSearchOptimizer 局部搜索优化器
// 每步采样一批移动并行评估，改进则接受，否则按模拟退火准则接受
type LocalSearchOptimizer struct {
	config    Config
	manager   *constraint.Manager
	evaluator *ParallelEvaluator
	logger    *logger.SchedulerLogger

	// RunID 本次运行标识，为空时自动生成
	RunID string

	// OnBestImproved 可选的进度回调，在搜索协程中调用
	OnBestImproved ProgressFunc
}

// NewLocalSearchOptimizer 创建局部搜索优化器
func NewLocalSearchOptimizer(config Config, manager *constraint.Manager) *LocalSearchOptimizer {
	config = config.normalize()
	return &LocalSearchOptimizer{
		config:    config,
		manager:   manager,
		evaluator: NewParallelEvaluator(config.ParallelWorkers),
		logger:    logger.NewSchedulerLogger(),
	}
}

// Config 返回生效的配置
func (o *LocalSearchOptimizer) Config() Config {
	return o.config
}

// Optimize 就地优化排班，结束时排班恢复为搜索到的最优解
// 上下文取消时返回最优解与 ctx.Err()
func (o *LocalSearchOptimizer) Optimize(ctx context.Context, s *model.Schedule) (*Result, error) {
	start := time.Now()
	runID := o.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	result := &Result{RunID: runID, Schedule: s, State: StateInitialized}

	var deadline time.Time
	if o.config.TimeLimit > 0 {
		deadline = start.Add(o.config.TimeLimit)
	}

	sess := o.manager.NewSession(s)
	rng := rand.New(rand.NewSource(o.config.Seed))
	neighbors := NewNeighborhoodGenerator(rng, o.config.SwapProbability, o.config.AllowUnassigned)
	tabu := NewTabuList(o.config.TabuSize)

	best := sess.Score()
	bestSnapshot := snapshot(s)
	temperature := o.config.InitialTemperature
	noImprovement := 0

	o.logger.StartSolve(result.RunID, len(s.Employees), len(s.Shifts))
	result.State = StateSearching

	var err error
	for {
		// 检查取消、超时与步数
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.State = StateCancelled
			err = ctxErr
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			result.State = StateTimeExpired
			break
		}
		if o.config.MaxSteps > 0 && result.Steps >= o.config.MaxSteps {
			result.State = StateTimeExpired
			break
		}
		if o.config.Patience > 0 && noImprovement >= o.config.Patience {
			result.State = StateConverged
			break
		}

		result.Steps++
		moves := neighbors.Sample(s, o.config.MoveSampleBreadth)
		candidate := o.evaluator.FindBest(o.evaluator.EvaluateBatch(ctx, sess, moves))

		if candidate != nil && o.accept(candidate, tabu, temperature, rng) {
			for _, c := range candidate.Move.Changes() {
				// 禁止在短期内撤销本次改派
				tabu.Add(assignmentKey(c.Shift.ID, c.Shift.EmployeeName()))
			}
			sess.Apply(candidate.Move.Changes())
			result.Accepted++
		}

		if current := sess.Score(); current.Compare(best) > 0 {
			best = current
			bestSnapshot = snapshot(s)
			result.BestStep = result.Steps
			noImprovement = 0
			o.logger.BestImproved(result.RunID, result.Steps, best.String())
			if o.OnBestImproved != nil {
				o.OnBestImproved(result.Steps, best)
			}
		} else {
			noImprovement++
		}

		// 降温
		temperature *= o.config.CoolingRate
	}

	restore(s, bestSnapshot)
	result.Score = best
	result.Duration = time.Since(start)
	o.logger.PhaseComplete(result.RunID, "local_search", result.Steps, result.Duration, best.String())
	return result, err
}

// accept 改进的移动总是接受；否则非禁忌且硬分不变差时按 exp(ΔSoft/T) 概率接受
func (o *LocalSearchOptimizer) accept(c *EvaluationResult, tabu *TabuList, temperature float64, rng *rand.Rand) bool {
	if c.Delta.Compare(score.Zero) > 0 {
		return true
	}
	if c.Delta.Hard.Sign() < 0 {
		return false
	}
	for _, change := range c.Move.Changes() {
		if tabu.Contains(assignmentKey(change.Shift.ID, employeeName(change.To))) {
			return false
		}
	}
	return rng.Float64() < boltzmannProbability(c.Delta.Soft.InexactFloat64(), temperature)
}

// boltzmannProbability 计算模拟退火的接受概率
// delta: 软分变化（不大于 0）
// temperature: 当前温度
func boltzmannProbability(delta, temperature float64) float64 {
	if delta >= 0 {
		return 1.0
	}
	if temperature <= minTemperature {
		return 0.0 // 温度过低时不接受更差的解
	}
	return math.Exp(delta / temperature)
}

// snapshot 记录每个班次的分配
func snapshot(s *model.Schedule) []*model.Employee {
	links := make([]*model.Employee, len(s.Shifts))
	for i, sh := range s.Shifts {
		links[i] = sh.Employee
	}
	return links
}

// restore 恢复分配快照
func restore(s *model.Schedule, links []*model.Employee) {
	for i, sh := range s.Shifts {
		sh.Employee = links[i]
	}
}
