package constraint

import (
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
	"github.com/shopspring/decimal"
)

func TestManager_Register(t *testing.T) {
	manager := NewManager()

	c := &MockConstraint{
		name:     "test",
		typ:      Type("test_type"),
		category: CategoryHard,
	}
	manager.Register(c)

	constraints := manager.GetAll()
	if len(constraints) != 1 {
		t.Errorf("Expected 1 constraint, got %d", len(constraints))
	}

	// 同类型注册为替换
	manager.Register(&MockConstraint{name: "test2", typ: Type("test_type"), category: CategoryHard})
	if manager.Count() != 1 {
		t.Errorf("Expected replacement, got %d constraints", manager.Count())
	}
	if manager.GetConstraint(Type("test_type")).Name() != "test2" {
		t.Error("Expected constraint to be replaced")
	}
}

func TestManager_RegisterOrder(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{name: "soft1", typ: Type("soft1"), category: CategorySoft})
	manager.Register(&MockConstraint{name: "hard1", typ: Type("hard1"), category: CategoryHard})
	manager.Register(&MockConstraint{name: "soft2", typ: Type("soft2"), category: CategorySoft})
	manager.Register(&MockConstraint{name: "hard2", typ: Type("hard2"), category: CategoryHard})

	var names []string
	for _, c := range manager.GetAll() {
		names = append(names, c.Name())
	}
	expected := []string{"hard1", "hard2", "soft1", "soft2"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Expected order %v, got %v", expected, names)
		}
	}
}

func TestManager_GetByCategory(t *testing.T) {
	manager := NewManager()

	hard := &MockConstraint{name: "hard1", typ: Type("hard1"), category: CategoryHard}
	soft := &MockConstraint{name: "soft1", typ: Type("soft1"), category: CategorySoft}
	manager.Register(hard)
	manager.Register(soft)

	hardConstraints := manager.GetByCategory(CategoryHard)
	if len(hardConstraints) != 1 {
		t.Errorf("Expected 1 hard constraint, got %d", len(hardConstraints))
	}

	softConstraints := manager.GetByCategory(CategorySoft)
	if len(softConstraints) != 1 {
		t.Errorf("Expected 1 soft constraint, got %d", len(softConstraints))
	}
}

func TestManager_Evaluate(t *testing.T) {
	manager := NewManager()

	// 每个班次罚 1 硬分
	manager.Register(&MockConstraint{
		name:     "per_shift",
		typ:      Type("per_shift"),
		category: CategoryHard,
		perShift: true,
	})
	// 每个员工的班次数之差
	manager.Register(&MockLoadConstraint{})

	s := newMockSchedule()
	result := manager.Evaluate(s)

	// 3 个班次，负载 2/1/0：sqrt(3*5-9)/sqrt(3) = sqrt(2)
	if !result.Score.Hard.Equal(decimal.NewFromInt(-3)) {
		t.Errorf("Expected -3 hard, got %s", result.Score)
	}
	if result.Feasible {
		t.Error("Expected infeasible result")
	}
	if result.HardMatches != 3 {
		t.Errorf("Expected 3 hard matches, got %d", result.HardMatches)
	}
	if result.SoftMatches != 1 {
		t.Errorf("Expected 1 soft match, got %d", result.SoftMatches)
	}
	expectedSoft := stats.LoadSummary{N: 3, Sum: 3, SumSquares: 5}.Unfairness().Neg()
	if !result.Score.Soft.Equal(expectedSoft) {
		t.Errorf("Expected soft %s, got %s", expectedSoft, result.Score.Soft)
	}

	summaries := result.Summaries()
	if len(summaries) != 2 || summaries[0].Count != 3 {
		t.Errorf("Unexpected summaries: %+v", summaries)
	}
}

func TestManager_EvaluateEmpty(t *testing.T) {
	manager := NewManager()
	result := manager.Evaluate(model.NewSchedule(nil, nil))

	if !result.Score.IsZero() || !result.Feasible {
		t.Errorf("Expected zero feasible score, got %s", result.Score)
	}
	if len(result.Matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(result.Matches))
	}
}

func TestSession_MatchesFullEvaluation(t *testing.T) {
	manager := NewManager()
	manager.Register(&MockConstraint{name: "per_shift", typ: Type("per_shift"), category: CategoryHard, perShift: true})
	manager.Register(&MockLoadConstraint{})

	s := newMockSchedule()
	sess := manager.NewSession(s)
	if !sess.Score().Equal(manager.Score(s)) {
		t.Fatalf("Session score %s != full score %s", sess.Score(), manager.Score(s))
	}

	alice := s.EmployeeByName("alice")
	carol := s.EmployeeByName("carol")
	changes := []Change{{Shift: s.Shifts[0], To: carol}}

	before := sess.Score()
	delta := sess.Delta(changes)
	if alice != s.Shifts[0].Employee {
		t.Fatal("Delta must not modify the schedule")
	}

	after := sess.Apply(changes)
	if !after.Equal(before.Add(delta)) {
		t.Errorf("Apply score %s != before %s + delta %s", after, before, delta)
	}
	if !after.Equal(manager.Score(s)) {
		t.Errorf("Apply score %s != full score %s", after, manager.Score(s))
	}

	// 无变化的改派
	if d := sess.Delta([]Change{{Shift: s.Shifts[0], To: carol}}); !d.IsZero() {
		t.Errorf("Expected zero delta for no-op change, got %s", d)
	}
}

func TestManager_Clear(t *testing.T) {
	manager := NewManager()

	manager.Register(&MockConstraint{name: "test", typ: Type("test"), category: CategoryHard})
	manager.Clear()

	if len(manager.GetAll()) != 0 {
		t.Error("Expected 0 constraints after clear")
	}
}

func TestManager_Count(t *testing.T) {
	manager := NewManager()

	if manager.Count() != 0 {
		t.Error("Expected 0 count for empty manager")
	}

	manager.Register(&MockConstraint{name: "c1", typ: Type("c1"), category: CategoryHard})
	manager.Register(&MockConstraint{name: "c2", typ: Type("c2"), category: CategorySoft})

	if manager.Count() != 2 {
		t.Errorf("Expected 2 count, got %d", manager.Count())
	}

	summary := manager.Summary()
	if summary["hard"] != 1 || summary["soft"] != 1 {
		t.Errorf("Unexpected summary: %v", summary)
	}
}

func newMockSchedule() *model.Schedule {
	alice := model.NewEmployee("alice")
	bob := model.NewEmployee("bob")
	carol := model.NewEmployee("carol")

	base := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	shifts := []*model.Shift{
		{ID: "1", Start: base, End: base.Add(8 * time.Hour), Employee: alice},
		{ID: "2", Start: base.Add(24 * time.Hour), End: base.Add(32 * time.Hour), Employee: alice},
		{ID: "3", Start: base.Add(48 * time.Hour), End: base.Add(56 * time.Hour), Employee: bob},
	}
	return model.NewSchedule([]*model.Employee{alice, bob, carol}, shifts)
}

// MockConstraint 用于测试的模拟约束
type MockConstraint struct {
	name     string
	typ      Type
	category Category
	perShift bool
}

func (m *MockConstraint) Name() string       { return m.name }
func (m *MockConstraint) Type() Type         { return m.typ }
func (m *MockConstraint) Category() Category { return m.category }
func (m *MockConstraint) Impact() Impact     { return ImpactPenalize }
func (m *MockConstraint) Weight() score.HardSoft {
	if m.category == CategoryHard {
		return score.OneHard
	}
	return score.OneSoft
}

func (m *MockConstraint) Match(emp *model.Employee, shifts []*model.Shift) []Match {
	if !m.perShift || emp == nil {
		return nil
	}
	matches := make([]Match, 0, len(shifts))
	for _, sh := range shifts {
		matches = append(matches, NewMatch(m, decimal.NewFromInt(1), Justification{
			Employee: emp.Name,
			ShiftIDs: []string{sh.ID},
		}))
	}
	return matches
}

// MockLoadConstraint 以不公平度为违反程度
type MockLoadConstraint struct{}

func (m *MockLoadConstraint) Name() string           { return "load" }
func (m *MockLoadConstraint) Type() Type             { return Type("load") }
func (m *MockLoadConstraint) Category() Category     { return CategorySoft }
func (m *MockLoadConstraint) Impact() Impact         { return ImpactPenalize }
func (m *MockLoadConstraint) Weight() score.HardSoft { return score.OneSoft }

func (m *MockLoadConstraint) Magnitude(summary stats.LoadSummary) decimal.Decimal {
	return summary.Unfairness()
}
