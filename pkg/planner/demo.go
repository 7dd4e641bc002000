package planner

import (
	"fmt"
	"math/rand"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
)

// CountWeight 带权重的数量
type CountWeight struct {
	Count  int     `json:"count" yaml:"count"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// DemoConfig 演示员工生成配置
type DemoConfig struct {
	EmployeeCount int           `json:"employee_count" yaml:"employee_count"`
	Skills        []string      `json:"skills" yaml:"skills"`
	Availability  []CountWeight `json:"availability" yaml:"availability"` // 每天有偏好记录的员工数分布
	Seed          int64         `json:"seed" yaml:"seed"`
}

// SmallDemo 小规模演示数据
func SmallDemo() DemoConfig {
	return DemoConfig{
		EmployeeCount: 47,
		Skills:        []string{"Beginner", "Intermediate", "Expert"},
		Availability: []CountWeight{
			{Count: 1, Weight: 4},
			{Count: 2, Weight: 3},
			{Count: 3, Weight: 2},
			{Count: 4, Weight: 1},
		},
		Seed: 37,
	}
}

// LargeDemo 大规模演示数据
func LargeDemo() DemoConfig {
	cfg := SmallDemo()
	cfg.Availability = []CountWeight{
		{Count: 5, Weight: 4},
		{Count: 10, Weight: 3},
		{Count: 15, Weight: 2},
		{Count: 20, Weight: 1},
	}
	return cfg
}

// DemoEmployees 生成演示员工：每人一项随机技能，
// 每天随机选出若干员工标记为不可用、不希望或希望上班
func DemoEmployees(cfg DemoConfig, dates []string) []*model.Employee {
	rng := rand.New(rand.NewSource(cfg.Seed))

	employees := make([]*model.Employee, cfg.EmployeeCount)
	for i := range employees {
		var skills []string
		if len(cfg.Skills) > 0 {
			skills = []string{cfg.Skills[rng.Intn(len(cfg.Skills))]}
		}
		employees[i] = model.NewEmployee(fmt.Sprintf("driver_%03d", i+1), skills...)
	}
	if len(employees) == 0 {
		return employees
	}

	for _, date := range dates {
		count := weightedCount(cfg.Availability, rng)
		if count > len(employees) {
			count = len(employees)
		}
		for _, idx := range rng.Perm(len(employees))[:count] {
			emp := employees[idx]
			switch rng.Intn(3) {
			case 0:
				emp.UnavailableDates.Add(date)
			case 1:
				emp.UndesiredDates.Add(date)
			default:
				emp.DesiredDates.Add(date)
			}
		}
	}
	return employees
}

// weightedCount 按权重抽取数量
func weightedCount(dist []CountWeight, rng *rand.Rand) int {
	total := 0.0
	for _, d := range dist {
		total += d.Weight
	}
	if total <= 0 {
		return 0
	}
	r := rng.Float64() * total
	for _, d := range dist {
		if r < d.Weight {
			return d.Count
		}
		r -= d.Weight
	}
	return dist[len(dist)-1].Count
}
