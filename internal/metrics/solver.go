package metrics

import (
	"strconv"

	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
)

// SolverObserver 将求解过程记录为指标，实现 scheduler.Observer
type SolverObserver struct {
	registry *Registry
}

var _ scheduler.Observer = (*SolverObserver)(nil)

// NewSolverObserver 创建求解指标观察者，registry 为空时使用全局注册表
func NewSolverObserver(r *Registry) *SolverObserver {
	if r == nil {
		r = GetRegistry()
	} else if r.GetCounter(SolveTotal) == nil {
		registerDefaults(r)
	}
	return &SolverObserver{registry: r}
}

// SolveStarted 记录一次求解开始
func (o *SolverObserver) SolveStarted() {
	o.registry.GetGauge(ActiveSolves).Inc()
}

// SolveAborted 求解未启动（如输入校验失败）
func (o *SolverObserver) SolveAborted() {
	o.registry.GetGauge(ActiveSolves).Dec()
}

// BestImproved 记录最优分数提升
func (o *SolverObserver) BestImproved(runID string, step int, best score.HardSoft) {
	o.registry.GetCounter(BestImprovedTotal).Inc()
}

// SolveComplete 记录求解结果
func (o *SolverObserver) SolveComplete(result *scheduler.Result) {
	r := o.registry
	r.GetGauge(ActiveSolves).Dec()

	state := string(result.State)
	r.GetCounter(SolveTotal).Inc(state, strconv.FormatBool(result.Feasible))
	r.GetHistogram(SolveDuration).Observe(result.Duration.Seconds(), state)
	r.GetCounter(SolveSteps).Add(float64(result.Steps))

	r.GetGauge(SolutionScore).Set(result.Score.Hard.InexactFloat64(), "hard")
	r.GetGauge(SolutionScore).Set(result.Score.Soft.InexactFloat64(), "soft")
	if result.Fairness != nil {
		r.GetGauge(ScheduleUnfairness).Set(result.Fairness.Unfairness.InexactFloat64())
	}
	if result.Schedule != nil {
		r.GetGauge(ScheduleUnassignedShift).Set(float64(result.Schedule.UnassignedCount()))
	}
}

// ObserveMatches 按约束类型累计命中次数
func (o *SolverObserver) ObserveMatches(matches []constraint.Match) {
	counter := o.registry.GetCounter(ConstraintMatchesTotal)
	for _, m := range matches {
		counter.Inc(string(m.ConstraintType), string(m.Category))
	}
}
