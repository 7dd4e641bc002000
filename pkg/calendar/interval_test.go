package calendar

import (
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 1, day, hour, minute, 0, 0, time.UTC)
}

func shift(id string, start, end time.Time) *model.Shift {
	return &model.Shift{ID: id, Start: start, End: end}
}

func TestOverlapMinutes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *model.Shift
		expected int64
	}{
		{"同日部分重叠", shift("a", at(12, 9, 0), at(12, 17, 0)), shift("b", at(12, 16, 0), at(12, 20, 0)), 60},
		{"首尾相接", shift("a", at(12, 9, 0), at(12, 17, 0)), shift("b", at(12, 17, 0), at(12, 20, 0)), 0},
		{"完全分离", shift("a", at(12, 6, 0), at(12, 14, 0)), shift("b", at(13, 6, 0), at(13, 14, 0)), 0},
		{"自身重叠等于时长", shift("a", at(12, 23, 0), at(13, 7, 0)), shift("a", at(12, 23, 0), at(13, 7, 0)), 480},
		{"包含关系", shift("a", at(12, 6, 0), at(12, 14, 0)), shift("b", at(12, 8, 30), at(12, 9, 0)), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapMinutes(tt.a.TimeRange(), tt.b.TimeRange())
			if got != tt.expected {
				t.Errorf("OverlapMinutes() = %d, expected %d", got, tt.expected)
			}
			if rev := OverlapMinutes(tt.b.TimeRange(), tt.a.TimeRange()); rev != got {
				t.Errorf("OverlapMinutes 不对称: %d vs %d", got, rev)
			}
			if got < 0 {
				t.Error("重叠分钟数不能为负")
			}
		})
	}
}

func TestOverlapsDate(t *testing.T) {
	night := shift("n", at(12, 23, 0), at(13, 7, 0))

	if !OverlapsDate(night, "2026-01-12") || !OverlapsDate(night, "2026-01-13") {
		t.Error("跨午夜班次应同时触及两天")
	}
	if OverlapsDate(night, "2026-01-14") {
		t.Error("不应触及 2026-01-14")
	}
	day := shift("d", at(12, 6, 0), at(12, 14, 0))
	if !OverlapsDate(day, "2026-01-12") || OverlapsDate(day, "2026-01-13") {
		t.Error("同日班次只触及当天")
	}
}

func TestOverlapDurationWithinDate(t *testing.T) {
	night := shift("n", at(12, 23, 0), at(13, 7, 0))

	tests := []struct {
		date     string
		expected int64
	}{
		{"2026-01-12", 60},
		{"2026-01-13", 420},
		{"2026-01-14", 0},
		{"not-a-date", 0},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := OverlapDurationWithinDate(night, tt.date); got != tt.expected {
				t.Errorf("OverlapDurationWithinDate(%s) = %d, expected %d", tt.date, got, tt.expected)
			}
		})
	}
}

func TestOverlapDurationWithinDate_TimeZone(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := &model.Shift{
		ID:    "tz",
		Start: time.Date(2026, 1, 12, 22, 0, 0, 0, loc),
		End:   time.Date(2026, 1, 13, 2, 0, 0, 0, loc),
	}
	if got := OverlapDurationWithinDate(s, "2026-01-12"); got != 120 {
		t.Errorf("按班次时区计算应为120分钟, got %d", got)
	}
}

func TestIsNightShift(t *testing.T) {
	tests := []struct {
		name     string
		s        *model.Shift
		expected bool
	}{
		{"23点开始", shift("a", at(12, 23, 0), at(13, 7, 0)), true},
		{"21点整开始", shift("b", at(12, 21, 0), at(13, 5, 30)), true},
		{"5点整结束", shift("c", at(12, 21, 0).Add(-4*time.Hour), at(13, 5, 0)), true},
		{"早班", shift("d", at(12, 6, 0), at(12, 14, 0)), false},
		{"午班", shift("e", at(12, 14, 0), at(12, 22, 0)), false},
		{"5点01分结束", shift("f", at(12, 20, 0), at(13, 5, 1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNightShift(tt.s); got != tt.expected {
				t.Errorf("IsNightShift() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestISOWeek(t *testing.T) {
	// 2026-01-01 是周四，属于 2026-W01；2025-12-29 同属该周
	if got := ISOWeek(time.Date(2025, 12, 29, 8, 0, 0, 0, time.UTC)); got.String() != "2026-W01" {
		t.Errorf("ISOWeek() = %s", got)
	}
	a := ISOWeek(at(11, 8, 0)) // 周日
	b := ISOWeek(at(12, 8, 0)) // 周一
	if a == b || !a.Less(b) {
		t.Errorf("周日与周一应属于不同的 ISO 周: %s %s", a, b)
	}
	if NextDate("2026-01-31") != "2026-02-01" {
		t.Errorf("NextDate() = %s", NextDate("2026-01-31"))
	}
}
