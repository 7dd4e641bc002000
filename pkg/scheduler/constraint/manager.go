package constraint

import (
	"sort"
	"sync"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.SchedulerLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewSchedulerLogger(),
	}
}

// Register 注册约束
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 检查是否已存在同类型约束
	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c // 替换
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 硬约束在前，同类别保持注册顺序
	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		return ci.Category() == CategoryHard && cj.Category() != CategoryHard
	})
}

// Unregister 注销约束
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.constraints {
		if c.Type() == t {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return
		}
	}
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// split 按评估方式拆分约束快照
func (m *Manager) split() ([]EmployeeConstraint, []LoadConstraint) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var employee []EmployeeConstraint
	var load []LoadConstraint
	for _, c := range m.constraints {
		switch v := c.(type) {
		case EmployeeConstraint:
			employee = append(employee, v)
		case LoadConstraint:
			load = append(load, v)
		}
	}
	return employee, load
}

// Evaluate 全量评估排班
func (m *Manager) Evaluate(s *model.Schedule) *Result {
	result := m.Explain(s)
	for _, match := range result.Matches {
		if match.Category == CategoryHard {
			m.logger.ConstraintViolation(match.ConstraintName, match.Justification.Message)
		}
	}
	return result
}

// Explain 全量评估并返回所有命中，不记录日志
// 命中按约束注册顺序排列，同一约束内按员工顺序，未分配班次最后
func (m *Manager) Explain(s *model.Schedule) *Result {
	groups, balance := groupSchedule(s)

	result := &Result{Matches: make([]Match, 0)}

	m.mu.RLock()
	ordered := make([]Constraint, len(m.constraints))
	copy(ordered, m.constraints)
	m.mu.RUnlock()

	for _, c := range ordered {
		switch v := c.(type) {
		case EmployeeConstraint:
			for _, emp := range s.Employees {
				result.Matches = append(result.Matches, v.Match(emp, groups[emp])...)
			}
			result.Matches = append(result.Matches, v.Match(nil, groups[nil])...)
		case LoadConstraint:
			result.Matches = append(result.Matches, loadMatches([]LoadConstraint{v}, balance.Summary())...)
		}
	}

	result.Score = SumMatches(result.Matches)
	result.Feasible = result.Score.IsFeasible()
	for _, match := range result.Matches {
		if match.Category == CategoryHard {
			result.HardMatches++
		} else {
			result.SoftMatches++
		}
	}
	return result
}

// Score 全量计算分数
func (m *Manager) Score(s *model.Schedule) score.HardSoft {
	return m.Explain(s).Score
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	soft := 0
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
	}

	return map[string]interface{}{
		"total": len(m.constraints),
		"hard":  hard,
		"soft":  soft,
	}
}

// groupSchedule 按员工分组（组内按时间排序）并统计负载
// 未分配班次以 nil 为键；不属于排班的员工被忽略
func groupSchedule(s *model.Schedule) (map[*model.Employee][]*model.Shift, *stats.LoadBalance) {
	members := make(map[*model.Employee]bool, len(s.Employees))
	balance := stats.NewLoadBalance()
	for _, emp := range s.Employees {
		members[emp] = true
		balance.Ensure(emp.Name)
	}

	groups := make(map[*model.Employee][]*model.Shift, len(s.Employees)+1)
	for _, sh := range calendar.Chronological(s.Shifts) {
		emp := sh.Employee
		if emp != nil && !members[emp] {
			continue
		}
		groups[emp] = append(groups[emp], sh)
		if emp != nil {
			balance.Add(emp.Name, 1)
		}
	}
	return groups, balance
}

// loadMatches 计算负载类约束的命中
func loadMatches(constraints []LoadConstraint, summary stats.LoadSummary) []Match {
	var matches []Match
	for _, c := range constraints {
		magnitude := c.Magnitude(summary)
		if magnitude.IsZero() {
			continue
		}
		matches = append(matches, NewMatch(c, magnitude, Justification{
			Message: "负载不均衡: " + magnitude.String(),
		}))
	}
	return matches
}
