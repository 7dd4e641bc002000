package model

import (
	"testing"
	"time"
)

func TestShift_Duration(t *testing.T) {
	start := time.Date(2026, 1, 12, 23, 0, 0, 0, time.UTC)
	s := &Shift{ID: "0", Start: start, End: start.Add(8 * time.Hour)}

	if s.DurationMinutes() != 480 {
		t.Errorf("DurationMinutes() = %d, expected 480", s.DurationMinutes())
	}
	if s.StartDate() != "2026-01-12" || s.EndDate() != "2026-01-13" {
		t.Errorf("跨午夜班次日期错误: %s - %s", s.StartDate(), s.EndDate())
	}
}

func TestShift_EmployeeName(t *testing.T) {
	s := &Shift{ID: "0"}
	if s.IsAssigned() || s.EmployeeName() != "" {
		t.Error("未分配班次不应有员工")
	}

	s.Employee = NewEmployee("Carl Green")
	if !s.IsAssigned() || s.EmployeeName() != "Carl Green" {
		t.Errorf("EmployeeName() = %s", s.EmployeeName())
	}
}
