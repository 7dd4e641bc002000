package model

import (
	"testing"
)

func TestEmployee_HasSkill(t *testing.T) {
	e := NewEmployee("Amy Cole", "Expert", "Beginner")

	tests := []struct {
		skill    string
		expected bool
	}{
		{"Expert", true},
		{"Beginner", true},
		{"Intermediate", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			if result := e.HasSkill(tt.skill); result != tt.expected {
				t.Errorf("HasSkill(%s) = %v, expected %v", tt.skill, result, tt.expected)
			}
		})
	}
}

func TestEmployee_ApplyAvailability(t *testing.T) {
	e := &Employee{Name: "Beth Fox"}

	e.ApplyAvailability(EmployeeAvailability{EmployeeName: e.Name, Date: "2026-01-12", Type: AvailabilityUnavailable})
	e.ApplyAvailability(EmployeeAvailability{EmployeeName: e.Name, Date: "2026-01-13", Type: AvailabilityUndesired})
	e.ApplyAvailability(EmployeeAvailability{EmployeeName: e.Name, Date: "2026-01-14", Type: AvailabilityDesired})
	e.ApplyAvailability(EmployeeAvailability{EmployeeName: e.Name, Date: "2026-01-15", Type: "available"})

	if !e.IsUnavailable("2026-01-12") {
		t.Error("2026-01-12 应不可用")
	}
	if !e.IsUndesired("2026-01-13") {
		t.Error("2026-01-13 应为不希望工作日")
	}
	if !e.IsDesired("2026-01-14") {
		t.Error("2026-01-14 应为希望工作日")
	}
	if e.IsUnavailable("2026-01-15") || e.IsUndesired("2026-01-15") || e.IsDesired("2026-01-15") {
		t.Error("未知类型应被忽略")
	}
}

func TestEmployee_AvailabilityRecords(t *testing.T) {
	e := NewEmployee("Amy Cole")
	e.UnavailableDates = NewDateSet("2026-01-06")
	e.DesiredDates = NewDateSet("2026-01-08", "2026-01-06")

	records := e.AvailabilityRecords()
	if len(records) != 3 {
		t.Fatalf("记录数 = %d, 期望 3", len(records))
	}
	last := records[len(records)-1]
	if last.Type != AvailabilityUnavailable || last.Date != "2026-01-06" {
		t.Errorf("不可用记录应排在最后: %+v", last)
	}

	// 回放记录得到相同的日期集合
	restored := NewEmployee("Amy Cole")
	for _, r := range records {
		restored.ApplyAvailability(r)
	}
	if !restored.IsUnavailable("2026-01-06") || !restored.IsDesired("2026-01-08") {
		t.Errorf("回放后的日期集合不一致: %+v", restored)
	}
	if len(NewEmployee("Beth").AvailabilityRecords()) != 0 {
		t.Error("无日期的员工不应产生记录")
	}
}
