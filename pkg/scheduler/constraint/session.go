package constraint

import (
	"slices"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
)

// Change 将班次改派给 To（nil 表示取消分配）
type Change struct {
	Shift *model.Shift
	To    *model.Employee
}

// Session 增量评分会话
// 缓存每个员工的分数与负载汇总，改派时只重算受影响的员工
// Delta 只读，可并发调用；Apply 需独占
type Session struct {
	employee []EmployeeConstraint
	load     []LoadConstraint

	schedule  *model.Schedule
	groups    map[*model.Employee][]*model.Shift
	scores    map[*model.Employee]score.HardSoft
	balance   *stats.LoadBalance
	loadScore score.HardSoft
	total     score.HardSoft
}

// NewSession 基于当前排班创建会话，排班须已通过校验
func (m *Manager) NewSession(s *model.Schedule) *Session {
	employee, load := m.split()
	groups, balance := groupSchedule(s)

	sess := &Session{
		employee: employee,
		load:     load,
		schedule: s,
		groups:   groups,
		scores:   make(map[*model.Employee]score.HardSoft, len(s.Employees)+1),
		balance:  balance,
	}

	total := score.Zero
	for _, emp := range s.Employees {
		sc := sess.employeeScore(emp, groups[emp])
		sess.scores[emp] = sc
		total = total.Add(sc)
	}
	unassigned := sess.employeeScore(nil, groups[nil])
	sess.scores[nil] = unassigned
	total = total.Add(unassigned)

	sess.loadScore = SumMatches(loadMatches(load, balance.Summary()))
	sess.total = total.Add(sess.loadScore)
	return sess
}

// Schedule 返回会话绑定的排班
func (s *Session) Schedule() *model.Schedule {
	return s.schedule
}

// Score 当前总分
func (s *Session) Score() score.HardSoft {
	return s.total
}

// Delta 计算应用 changes 后的分数变化，不修改任何状态
func (s *Session) Delta(changes []Change) score.HardSoft {
	lists, adjust := s.plan(changes)
	if len(lists) == 0 {
		return score.Zero
	}

	delta := score.Zero
	for emp, shifts := range lists {
		delta = delta.Add(s.employeeScore(emp, shifts).Sub(s.scores[emp]))
	}
	if len(adjust) > 0 && len(s.load) > 0 {
		loadScore := SumMatches(loadMatches(s.load, s.balance.SummaryWith(adjust)))
		delta = delta.Add(loadScore.Sub(s.loadScore))
	}
	return delta
}

// Apply 应用改派并更新缓存，返回新的总分
func (s *Session) Apply(changes []Change) score.HardSoft {
	lists, adjust := s.plan(changes)
	if len(lists) == 0 {
		return s.total
	}

	for _, c := range changes {
		c.Shift.Employee = c.To
	}
	for emp, shifts := range lists {
		sc := s.employeeScore(emp, shifts)
		s.total = s.total.Add(sc.Sub(s.scores[emp]))
		s.scores[emp] = sc
		s.groups[emp] = shifts
	}
	for name, d := range adjust {
		s.balance.Add(name, d)
	}
	if len(adjust) > 0 && len(s.load) > 0 {
		loadScore := SumMatches(loadMatches(s.load, s.balance.Summary()))
		s.total = s.total.Add(loadScore.Sub(s.loadScore))
		s.loadScore = loadScore
	}
	return s.total
}

// plan 计算受影响员工的新班次列表与负载调整，跳过无变化的改派
func (s *Session) plan(changes []Change) (map[*model.Employee][]*model.Shift, map[string]int64) {
	var lists map[*model.Employee][]*model.Shift
	adjust := make(map[string]int64)

	current := func(emp *model.Employee) []*model.Shift {
		if l, ok := lists[emp]; ok {
			return l
		}
		return s.groups[emp]
	}

	for _, c := range changes {
		from := c.Shift.Employee
		if from == c.To {
			continue
		}
		if lists == nil {
			lists = make(map[*model.Employee][]*model.Shift, 2*len(changes))
		}

		fromList := current(from)
		idx := slices.Index(fromList, c.Shift)
		if idx >= 0 {
			fromList = slices.Delete(slices.Clone(fromList), idx, idx+1)
		}
		lists[from] = fromList

		toList := slices.Clone(current(c.To))
		pos, _ := slices.BinarySearchFunc(toList, c.Shift, calendar.CompareShifts)
		lists[c.To] = slices.Insert(toList, pos, c.Shift)

		if from != nil {
			adjust[from.Name]--
		}
		if c.To != nil {
			adjust[c.To.Name]++
		}
	}

	for name, d := range adjust {
		if d == 0 {
			delete(adjust, name)
		}
	}
	return lists, adjust
}

// employeeScore 计算单个员工（或未分配池）的约束总分
func (s *Session) employeeScore(emp *model.Employee, shifts []*model.Shift) score.HardSoft {
	total := score.Zero
	for _, c := range s.employee {
		total = total.Add(SumMatches(c.Match(emp, shifts)))
	}
	return total
}
