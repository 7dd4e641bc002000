package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSchedule 一周三班制，初始全部分配给第一个员工
func newTestSchedule(employees, days int) *model.Schedule {
	skills := []string{"Expert", "Intermediate", "Beginner"}
	emps := make([]*model.Employee, employees)
	for i := range emps {
		emps[i] = model.NewEmployee(fmt.Sprintf("emp-%02d", i), skills[i%len(skills)])
	}
	emps[0].UnavailableDates.Add("2026-01-06")

	base := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	var shifts []*model.Shift
	for d := 0; d < days; d++ {
		for slot := 0; slot < 3; slot++ {
			start := base.AddDate(0, 0, d).Add(time.Duration(slot*8) * time.Hour)
			shifts = append(shifts, &model.Shift{
				ID:            fmt.Sprintf("%d", len(shifts)),
				Start:         start,
				End:           start.Add(8 * time.Hour),
				Location:      "affaire",
				RequiredSkill: skills[slot],
				Employee:      emps[0],
			})
		}
	}
	return model.NewSchedule(emps, shifts)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TimeLimit = 0
	cfg.MaxSteps = 400
	cfg.Patience = 200
	cfg.MoveSampleBreadth = 16
	cfg.ParallelWorkers = 4
	return cfg
}

func TestLocalSearch_ImprovesScore(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)
	s := newTestSchedule(5, 7)
	initial := manager.Score(s)

	opt := NewLocalSearchOptimizer(testConfig(), manager)
	result, err := opt.Optimize(context.Background(), s)
	require.NoError(t, err)

	assert.Contains(t, []State{StateTimeExpired, StateConverged}, result.State)
	assert.True(t, result.Score.Compare(initial) > 0, "score %s should beat %s", result.Score, initial)
	// 返回的排班与分数一致
	assert.True(t, result.Score.Equal(manager.Score(s)))
	assert.Equal(t, 0, s.UnassignedCount())
}

func TestLocalSearch_Deterministic(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)

	run := func() (map[string]string, score.HardSoft) {
		s := newTestSchedule(4, 5)
		result, err := NewLocalSearchOptimizer(testConfig(), manager).Optimize(context.Background(), s)
		require.NoError(t, err)
		return s.Assignments(), result.Score
	}

	a1, s1 := run()
	a2, s2 := run()
	assert.Equal(t, a1, a2)
	assert.True(t, s1.Equal(s2))
}

func TestLocalSearch_BestIsMonotonic(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)
	s := newTestSchedule(4, 7)

	opt := NewLocalSearchOptimizer(testConfig(), manager)
	var history []score.HardSoft
	opt.OnBestImproved = func(step int, best score.HardSoft) {
		history = append(history, best)
	}

	result, err := opt.Optimize(context.Background(), s)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Compare(history[i-1]) > 0, "best score must increase")
	}
	assert.True(t, history[len(history)-1].Equal(result.Score))
}

func TestLocalSearch_Cancelled(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)
	s := newTestSchedule(4, 7)
	initial := manager.Score(s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewLocalSearchOptimizer(testConfig(), manager).Optimize(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, result.State)
	assert.True(t, result.Score.Equal(initial))
	assert.Equal(t, 0, result.Steps)
}

func TestLocalSearch_Converged(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)
	// 单个员工无法改派
	s := newTestSchedule(1, 2)

	cfg := testConfig()
	cfg.MaxSteps = 0
	cfg.Patience = 10
	result, err := NewLocalSearchOptimizer(cfg, manager).Optimize(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, StateConverged, result.State)
	assert.Equal(t, 10, result.Steps)
}

func TestConfig_NormalizeBudget(t *testing.T) {
	tests := []struct {
		name      string
		timeLimit time.Duration
		maxSteps  int
		patience  int
		want      time.Duration
	}{
		{name: "无任何上限时使用默认时间", want: DefaultConfig().TimeLimit},
		{name: "仅步数上限", maxSteps: 10, want: 0},
		{name: "仅收敛上限", patience: 10, want: 0},
		{name: "仅时间上限", timeLimit: time.Second, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TimeLimit = tt.timeLimit
			cfg.MaxSteps = tt.maxSteps
			cfg.Patience = tt.patience

			opt := NewLocalSearchOptimizer(cfg, builtin.NewDefaultManager(nil))
			assert.Equal(t, tt.want, opt.Config().TimeLimit)
		})
	}
}

func TestNeighborhoodGenerator_NoOpMoves(t *testing.T) {
	s := newTestSchedule(3, 3)
	s.Shifts[0].Employee = nil

	gen := NewNeighborhoodGenerator(rand.New(rand.NewSource(1)), 0.5, false)
	for _, m := range gen.Sample(s, 500) {
		switch mv := m.(type) {
		case *ReassignMove:
			assert.NotEqual(t, mv.Shift.Employee, mv.To)
			assert.NotNil(t, mv.To)
		case *SwapMove:
			assert.NotEqual(t, mv.A.Employee, mv.B.Employee)
			assert.NotNil(t, mv.A.Employee)
			assert.NotNil(t, mv.B.Employee)
		}
	}
}

func TestParallelEvaluator_FindBestTieBreak(t *testing.T) {
	a := model.NewEmployee("a")
	b := model.NewEmployee("b")
	shift1 := &model.Shift{ID: "1"}
	shift2 := &model.Shift{ID: "2"}

	p := NewParallelEvaluator(1)
	results := []EvaluationResult{
		{Index: 0, Move: &ReassignMove{Shift: shift2, To: a}, Delta: score.Of(0, 5)},
		{Index: 1, Move: &ReassignMove{Shift: shift1, To: b}, Delta: score.Of(0, 5)},
		{Index: 2, Move: &ReassignMove{Shift: shift1, To: a}, Delta: score.Of(0, 5)},
		{Index: 3, Move: &ReassignMove{Shift: shift1, To: a}, Delta: score.Of(-1, 100)},
	}

	best := p.FindBest(results)
	require.NotNil(t, best)
	assert.Equal(t, 2, best.Index)
	assert.Nil(t, p.FindBest(nil))
}

func TestParallelEvaluator_MatchesSequential(t *testing.T) {
	manager := builtin.NewDefaultManager(nil)
	s := newTestSchedule(4, 7)
	sess := manager.NewSession(s)

	moves := NewNeighborhoodGenerator(rand.New(rand.NewSource(7)), 0.3, true).Sample(s, 64)
	parallel := NewParallelEvaluator(4).EvaluateBatch(context.Background(), sess, moves)
	sequential := NewParallelEvaluator(1).EvaluateBatch(context.Background(), sess, moves)

	require.Len(t, parallel, len(moves))
	for i := range moves {
		assert.Equal(t, i, parallel[i].Index)
		assert.True(t, parallel[i].Delta.Equal(sequential[i].Delta))
	}
}

func TestTabuList(t *testing.T) {
	tabu := NewTabuList(2)
	k1 := assignmentKey("1", "a")
	k2 := assignmentKey("2", "a")
	k3 := assignmentKey("3", "a")

	tabu.Add(k1)
	tabu.Add(k2)
	tabu.Add(k3)

	assert.False(t, tabu.Contains(k1), "oldest entry should be evicted")
	assert.True(t, tabu.Contains(k2))
	assert.True(t, tabu.Contains(k3))
	assert.Equal(t, 2, tabu.Len())
	assert.NotEqual(t, assignmentKey("1", "a"), assignmentKey("1a", ""))

	tabu.Clear()
	assert.Equal(t, 0, tabu.Len())
}

func TestBoltzmannProbability(t *testing.T) {
	assert.Equal(t, 1.0, boltzmannProbability(0, 1))
	assert.Equal(t, 0.0, boltzmannProbability(-1, 0))
	assert.InDelta(t, 0.3679, boltzmannProbability(-1, 1), 1e-4)
}
