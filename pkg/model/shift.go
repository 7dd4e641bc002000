// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"
)

// Shift 班次
// Employee 是唯一会被搜索修改的字段，nil 表示未分配
type Shift struct {
	ID            string    `json:"id" db:"id"`
	Start         time.Time `json:"start" db:"start_time"`
	End           time.Time `json:"end" db:"end_time"`
	Location      string    `json:"location" db:"location"`
	RequiredSkill string    `json:"required_skill,omitempty" db:"required_skill"` // 空表示无要求
	OptionalSkill string    `json:"optional_skill,omitempty" db:"optional_skill"` // 仅作提示，不参与约束

	Employee *Employee `json:"-" db:"-"`
}

// TimeRange 返回班次时间范围
func (s *Shift) TimeRange() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// Duration 返回班次时长
func (s *Shift) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// DurationMinutes 返回班次时长（分钟）
func (s *Shift) DurationMinutes() int64 {
	return int64(s.Duration() / time.Minute)
}

// IsAssigned 检查班次是否已分配
func (s *Shift) IsAssigned() bool {
	return s.Employee != nil
}

// EmployeeName 返回已分配员工姓名，未分配返回空串
func (s *Shift) EmployeeName() string {
	if s.Employee == nil {
		return ""
	}
	return s.Employee.Name
}

// StartDate 返回开始日期
func (s *Shift) StartDate() string {
	return DateOf(s.Start)
}

// EndDate 返回结束日期
func (s *Shift) EndDate() string {
	return DateOf(s.End)
}
