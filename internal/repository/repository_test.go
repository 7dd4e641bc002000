package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachAvailability(t *testing.T) {
	employees := []*model.Employee{
		model.NewEmployee("bob", "Expert"),
		model.NewEmployee("amy", "Beginner"),
	}
	records := []model.EmployeeAvailability{
		{EmployeeName: "amy", Date: "2026-01-05", Type: model.AvailabilityUnavailable},
		{EmployeeName: "amy", Date: "2026-01-06", Type: model.AvailabilityDesired},
		{EmployeeName: "bob", Date: "2026-01-05", Type: model.AvailabilityUndesired},
		{EmployeeName: "zed", Date: "2026-01-05", Type: model.AvailabilityUnavailable},
		{EmployeeName: "bob", Date: "2026-01-07", Type: "holiday"},
	}

	result := AttachAvailability(employees, records)
	require.Len(t, result, 2)
	assert.Equal(t, "amy", result[0].Name)
	assert.True(t, result[0].IsUnavailable("2026-01-05"))
	assert.True(t, result[0].IsDesired("2026-01-06"))
	assert.True(t, result[1].IsUndesired("2026-01-05"))
	assert.False(t, result[1].IsUnavailable("2026-01-07"))
}

func TestNewScheduleRun(t *testing.T) {
	amy := model.NewEmployee("amy")
	base := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	s := model.NewSchedule([]*model.Employee{amy}, []*model.Shift{
		{ID: "1", Start: base.AddDate(0, 0, 2), End: base.AddDate(0, 0, 2).Add(8 * time.Hour), Location: "confort"},
		{ID: "0", Start: base, End: base.Add(8 * time.Hour), Location: "affaire", Employee: amy},
	})

	result := &scheduler.Result{
		RunID:    uuid.New().String(),
		Schedule: s,
		Score:    score.Of(-1, 12),
		State:    optimizer.StateConverged,
		Steps:    40,
		BestStep: 7,
		Duration: 1500 * time.Millisecond,
	}

	run, assignments, err := NewScheduleRun(result)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, run.ID.String())
	assert.Equal(t, "CONVERGED", run.State)
	assert.True(t, run.HardScore.Equal(score.Of(-1, 0).Hard))
	assert.Equal(t, int64(1500), run.DurationMS)
	assert.Equal(t, 2, run.ShiftCount)
	assert.Equal(t, 1, run.UnassignedCount)
	assert.Equal(t, "2026-01-05", run.StartDate)
	assert.Equal(t, "2026-01-07", run.EndDate)

	require.Len(t, assignments, 2)
	assert.Equal(t, "0", assignments[0].ShiftID)
	assert.Equal(t, "amy", assignments[0].EmployeeName)
	assert.Equal(t, "", assignments[1].EmployeeName)

	_, _, err = NewScheduleRun(&scheduler.Result{RunID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestListFilter(t *testing.T) {
	f := DefaultListFilter().WithDateRange("2026-01-05", "2026-01-11").WithLimit(5).WithOffset(10)
	assert.Equal(t, "2026-01-05", f.StartDate)
	assert.Equal(t, "2026-01-11", f.EndDate)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 10, f.Offset)
}
