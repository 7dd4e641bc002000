// Package calendar 提供时间区间与日历计算工具
package calendar

import (
	"fmt"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
)

// 夜班判定边界（本地时钟）
const (
	NightStartMinute = 21 * 60
	NightEndMinute   = 5 * 60
)

// OverlapMinutes 返回两个时间范围的重叠分钟数，不会为负
func OverlapMinutes(a, b model.TimeRange) int64 {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Minute)
}

// OverlapsDate 班次的开始日期或结束日期等于指定日期
func OverlapsDate(s *model.Shift, date string) bool {
	return s.StartDate() == date || s.EndDate() == date
}

// DayRange 返回某日在指定时区下的 [00:00, 次日00:00)
func DayRange(date string, loc *time.Location) (model.TimeRange, error) {
	start, err := model.ParseDate(date, loc)
	if err != nil {
		return model.TimeRange{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return model.TimeRange{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

// OverlapDurationWithinDate 返回班次落在指定日期内的分钟数
// 日期按班次自身时区解释；无法解析的日期视为无重叠
func OverlapDurationWithinDate(s *model.Shift, date string) int64 {
	day, err := DayRange(date, s.Start.Location())
	if err != nil {
		return 0
	}
	return OverlapMinutes(s.TimeRange(), day)
}

// IsNightShift 开始时间不早于 21:00 或结束时间不晚于 05:00
func IsNightShift(s *model.Shift) bool {
	return clockMinute(s.Start) >= NightStartMinute || clockSecond(s.End) <= NightEndMinute*60
}

func clockMinute(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func clockSecond(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// WeekKey ISO 周标识
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// String 返回形如 2026-W03 的表示
func (w WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Less 按时间先后比较
func (w WeekKey) Less(o WeekKey) bool {
	if w.Year != o.Year {
		return w.Year < o.Year
	}
	return w.Week < o.Week
}

// ISOWeek 返回时间点所在的 ISO 周
func ISOWeek(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// NextDate 返回下一天的日期
func NextDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(model.DateLayout)
}
