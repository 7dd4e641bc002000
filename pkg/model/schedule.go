// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/hussen-mac/employee-scheduling/pkg/errors"
)

// Schedule 排班方案
// 员工与班次的聚合，也是评估器打分和搜索修改的单位
type Schedule struct {
	Employees []*Employee `json:"employees"`
	Shifts    []*Shift    `json:"shifts"`
}

// NewSchedule 创建排班方案
func NewSchedule(employees []*Employee, shifts []*Shift) *Schedule {
	return &Schedule{Employees: employees, Shifts: shifts}
}

// Validate 结构校验
// 班次结束时间不晚于开始时间、关联的员工不在方案中、标识重复均为致命错误
func (s *Schedule) Validate() error {
	members := make(map[*Employee]struct{}, len(s.Employees))
	names := make(map[string]struct{}, len(s.Employees))
	for _, e := range s.Employees {
		if _, dup := names[e.Name]; dup {
			return errors.DuplicateID("员工", e.Name)
		}
		names[e.Name] = struct{}{}
		members[e] = struct{}{}
	}

	ids := make(map[string]struct{}, len(s.Shifts))
	for _, sh := range s.Shifts {
		if sh.ID == "" {
			return errors.InvalidInput("shift.id", "班次ID不能为空")
		}
		if _, dup := ids[sh.ID]; dup {
			return errors.DuplicateID("班次", sh.ID)
		}
		ids[sh.ID] = struct{}{}

		if !sh.End.After(sh.Start) {
			return errors.InvalidTimeRange(sh.ID, sh.Start, sh.End)
		}
		if sh.Employee != nil {
			if _, ok := members[sh.Employee]; !ok {
				return errors.UnknownEmployee(sh.ID, sh.Employee.Name)
			}
		}
	}
	return nil
}

// EmployeeByName 按姓名查找员工
func (s *Schedule) EmployeeByName(name string) *Employee {
	for _, e := range s.Employees {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ShiftByID 按ID查找班次
func (s *Schedule) ShiftByID(id string) *Shift {
	for _, sh := range s.Shifts {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

// Assign 按姓名分配班次，空姓名表示取消分配
func (s *Schedule) Assign(shiftID, employeeName string) error {
	sh := s.ShiftByID(shiftID)
	if sh == nil {
		return errors.NotFound("班次", shiftID)
	}
	if employeeName == "" {
		sh.Employee = nil
		return nil
	}
	e := s.EmployeeByName(employeeName)
	if e == nil {
		return errors.UnknownEmployee(shiftID, employeeName)
	}
	sh.Employee = e
	return nil
}

// Clone 复制排班方案
// 员工在求解期间只读，副本共享员工指针；班次逐个复制，分配关系保持不变
func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{
		Employees: make([]*Employee, len(s.Employees)),
		Shifts:    make([]*Shift, len(s.Shifts)),
	}
	copy(clone.Employees, s.Employees)
	for i, sh := range s.Shifts {
		c := *sh
		clone.Shifts[i] = &c
	}
	return clone
}

// Assignments 返回班次ID到员工姓名的映射，未分配的班次映射为空串
func (s *Schedule) Assignments() map[string]string {
	result := make(map[string]string, len(s.Shifts))
	for _, sh := range s.Shifts {
		result[sh.ID] = sh.EmployeeName()
	}
	return result
}

// UnassignedCount 返回未分配班次数
func (s *Schedule) UnassignedCount() int {
	n := 0
	for _, sh := range s.Shifts {
		if sh.Employee == nil {
			n++
		}
	}
	return n
}
