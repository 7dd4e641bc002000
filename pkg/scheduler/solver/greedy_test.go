package solver

import (
	"context"
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShift(id string, day, hour int, skill string) *model.Shift {
	start := time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
	return &model.Shift{ID: id, Start: start, End: start.Add(8 * time.Hour), RequiredSkill: skill}
}

func TestGreedySolver_AssignsAllShifts(t *testing.T) {
	expert := model.NewEmployee("Beth", "Expert")
	beginner := model.NewEmployee("Amy", "Beginner")
	s := model.NewSchedule(
		[]*model.Employee{expert, beginner},
		[]*model.Shift{
			newShift("0", 5, 6, "Expert"),
			newShift("1", 5, 14, "Beginner"),
			newShift("2", 6, 6, "Expert"),
		},
	)

	manager := builtin.NewDefaultManager(nil)
	result, err := NewGreedySolver(manager, false).Solve(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Assigned)
	assert.Equal(t, 0, s.UnassignedCount())
	assert.Equal(t, "Beth", s.Shifts[0].EmployeeName())
	assert.Equal(t, "Amy", s.Shifts[1].EmployeeName())
	assert.True(t, result.Score.IsFeasible(), "score %s", result.Score)
	assert.True(t, result.Score.Equal(manager.Score(s)))
}

func TestGreedySolver_KeepsExistingAssignments(t *testing.T) {
	amy := model.NewEmployee("Amy")
	beth := model.NewEmployee("Beth")
	fixed := newShift("0", 5, 6, "")
	fixed.Employee = beth
	s := model.NewSchedule([]*model.Employee{amy, beth}, []*model.Shift{fixed, newShift("1", 6, 6, "")})

	result, err := NewGreedySolver(builtin.NewDefaultManager(nil), false).Solve(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, "Beth", fixed.EmployeeName())
	// 负载均衡使第二个班次分给 Amy
	assert.Equal(t, "Amy", s.Shifts[1].EmployeeName())
}

func TestGreedySolver_NoEmployees(t *testing.T) {
	s := model.NewSchedule(nil, []*model.Shift{newShift("0", 5, 6, "")})

	result, err := NewGreedySolver(builtin.NewDefaultManager(nil), true).Solve(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Assigned)
	assert.Equal(t, 1, s.UnassignedCount())
}

func TestGreedySolver_Cancelled(t *testing.T) {
	s := model.NewSchedule(
		[]*model.Employee{model.NewEmployee("Amy")},
		[]*model.Shift{newShift("0", 5, 6, "")},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGreedySolver(builtin.NewDefaultManager(nil), false).Solve(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}
