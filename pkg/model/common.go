// Package model 定义排班引擎的核心数据模型
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// TimeRange 时间范围 [Start, End)
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Contains 检查时间范围是否包含某个时间点
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// DateOf 返回时间点在其自身时区下的日期 (YYYY-MM-DD)
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 在指定时区解析日期，返回当天零点
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, date, loc)
}

// DateSet 日期集合
type DateSet map[string]struct{}

// NewDateSet 创建日期集合
func NewDateSet(dates ...string) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Has 检查集合中是否包含日期，nil 集合视为空
func (s DateSet) Has(date string) bool {
	if s == nil {
		return false
	}
	_, ok := s[date]
	return ok
}

// Add 添加日期
func (s DateSet) Add(date string) {
	s[date] = struct{}{}
}

// Sorted 返回升序排列的日期
func (s DateSet) Sorted() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// MarshalJSON 以有序数组输出
func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON 从数组解析
func (s *DateSet) UnmarshalJSON(data []byte) error {
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	*s = NewDateSet(dates...)
	return nil
}
