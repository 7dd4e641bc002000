// Package model 定义排班引擎的核心数据模型
package model

// 可用性类型
const (
	AvailabilityUnavailable = "unavailable"
	AvailabilityUndesired   = "undesired"
	AvailabilityDesired     = "desired"
)

// Employee 员工
// 姓名唯一标识员工；技能和日期集合在一次求解过程中只读
type Employee struct {
	Name   string   `json:"name" db:"name"`
	Skills []string `json:"skills" db:"skills"`

	UnavailableDates DateSet `json:"unavailable_dates,omitempty" db:"-"`
	UndesiredDates   DateSet `json:"undesired_dates,omitempty" db:"-"`
	DesiredDates     DateSet `json:"desired_dates,omitempty" db:"-"`
}

// EmployeeAvailability 员工可用性记录
type EmployeeAvailability struct {
	EmployeeName string `json:"employee_name" db:"employee_name"`
	Date         string `json:"date" db:"date"` // YYYY-MM-DD
	Type         string `json:"type" db:"type"` // unavailable/undesired/desired
	Reason       string `json:"reason,omitempty" db:"reason"`
}

// NewEmployee 创建员工
func NewEmployee(name string, skills ...string) *Employee {
	return &Employee{
		Name:             name,
		Skills:           skills,
		UnavailableDates: NewDateSet(),
		UndesiredDates:   NewDateSet(),
		DesiredDates:     NewDateSet(),
	}
}

// HasSkill 检查员工是否具备某技能
func (e *Employee) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// IsUnavailable 检查员工在某日是否不可用
func (e *Employee) IsUnavailable(date string) bool {
	return e.UnavailableDates.Has(date)
}

// IsUndesired 检查员工是否不希望在某日工作
func (e *Employee) IsUndesired(date string) bool {
	return e.UndesiredDates.Has(date)
}

// IsDesired 检查员工是否希望在某日工作
func (e *Employee) IsDesired(date string) bool {
	return e.DesiredDates.Has(date)
}

// ApplyAvailability 将可用性记录合并到对应的日期集合
// 未知类型被忽略
func (e *Employee) ApplyAvailability(a EmployeeAvailability) {
	var target *DateSet
	switch a.Type {
	case AvailabilityUnavailable:
		target = &e.UnavailableDates
	case AvailabilityUndesired:
		target = &e.UndesiredDates
	case AvailabilityDesired:
		target = &e.DesiredDates
	default:
		return
	}
	if *target == nil {
		*target = NewDateSet()
	}
	target.Add(a.Date)
}

// AvailabilityRecords 将日期集合展开为可用性记录
// 同一日期出现在多个集合时，不可用记录排在最后
func (e *Employee) AvailabilityRecords() []EmployeeAvailability {
	var records []EmployeeAvailability
	for _, set := range []struct {
		kind  string
		dates DateSet
	}{
		{AvailabilityDesired, e.DesiredDates},
		{AvailabilityUndesired, e.UndesiredDates},
		{AvailabilityUnavailable, e.UnavailableDates},
	} {
		for _, d := range set.dates.Sorted() {
			records = append(records, EmployeeAvailability{EmployeeName: e.Name, Date: d, Type: set.kind})
		}
	}
	return records
}
