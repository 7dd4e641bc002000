package optimizer

import (
	"fmt"
	"math/rand"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// MoveType 邻域移动类型
type MoveType string

const (
	MoveReassign MoveType = "reassign" // 把一个班次改派给另一员工（或取消分配）
	MoveSwap     MoveType = "swap"     // 交换两个班次的员工
)

// maxSampleAttempts 单次采样的最大重试次数
const maxSampleAttempts = 16

// Move 邻域移动操作
type Move interface {
	// Type 移动类型
	Type() MoveType

	// Changes 移动对应的改派
	Changes() []constraint.Change

	// Key 用于平局决胜的 (班次ID, 员工名)
	Key() (shiftID, employeeName string)

	String() string
}

// ReassignMove 改派移动，To 为 nil 表示取消分配
type ReassignMove struct {
	Shift *model.Shift
	To    *model.Employee
}

// Type 返回移动类型
func (m *ReassignMove) Type() MoveType { return MoveReassign }

// Changes 返回改派列表
func (m *ReassignMove) Changes() []constraint.Change {
	return []constraint.Change{{Shift: m.Shift, To: m.To}}
}

// Key 返回决胜键
func (m *ReassignMove) Key() (string, string) {
	return m.Shift.ID, employeeName(m.To)
}

func (m *ReassignMove) String() string {
	return fmt.Sprintf("reassign %s: %s -> %s", m.Shift.ID, m.Shift.EmployeeName(), employeeName(m.To))
}

// SwapMove 交换两个班次的员工
type SwapMove struct {
	A *model.Shift
	B *model.Shift
}

// Type 返回移动类型
func (m *SwapMove) Type() MoveType { return MoveSwap }

// Changes 返回改派列表
func (m *SwapMove) Changes() []constraint.Change {
	return []constraint.Change{
		{Shift: m.A, To: m.B.Employee},
		{Shift: m.B, To: m.A.Employee},
	}
}

// Key 返回决胜键
func (m *SwapMove) Key() (string, string) {
	return m.A.ID, m.B.EmployeeName()
}

func (m *SwapMove) String() string {
	return fmt.Sprintf("swap %s(%s) <-> %s(%s)", m.A.ID, m.A.EmployeeName(), m.B.ID, m.B.EmployeeName())
}

func employeeName(emp *model.Employee) string {
	if emp == nil {
		return ""
	}
	return emp.Name
}

// NeighborhoodGenerator 邻域生成器
// 使用独立的带种子随机源，保证同一种子下采样序列一致
type NeighborhoodGenerator struct {
	rng             *rand.Rand
	swapProbability float64
	allowUnassigned bool
}

// NewNeighborhoodGenerator 创建邻域生成器
func NewNeighborhoodGenerator(rng *rand.Rand, swapProbability float64, allowUnassigned bool) *NeighborhoodGenerator {
	return &NeighborhoodGenerator{
		rng:             rng,
		swapProbability: swapProbability,
		allowUnassigned: allowUnassigned,
	}
}

// Sample 采样最多 n 个移动，不会产生无变化的移动
func (g *NeighborhoodGenerator) Sample(s *model.Schedule, n int) []Move {
	moves := make([]Move, 0, n)
	for i := 0; i < n; i++ {
		if m := g.Generate(s); m != nil {
			moves = append(moves, m)
		}
	}
	return moves
}

// Generate 生成一个移动，找不到合法移动时返回 nil
func (g *NeighborhoodGenerator) Generate(s *model.Schedule) Move {
	if len(s.Shifts) == 0 {
		return nil
	}
	if len(s.Shifts) > 1 && g.rng.Float64() < g.swapProbability {
		if m := g.generateSwapMove(s); m != nil {
			return m
		}
	}
	return g.generateReassignMove(s)
}

// generateReassignMove 随机选择班次与目标员工
func (g *NeighborhoodGenerator) generateReassignMove(s *model.Schedule) Move {
	targets := len(s.Employees)
	if g.allowUnassigned {
		targets++ // 最后一个位置表示未分配
	}
	if targets == 0 {
		return nil
	}

	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		shift := s.Shifts[g.rng.Intn(len(s.Shifts))]
		idx := g.rng.Intn(targets)
		var to *model.Employee
		if idx < len(s.Employees) {
			to = s.Employees[idx]
		}
		if to == shift.Employee {
			continue
		}
		return &ReassignMove{Shift: shift, To: to}
	}
	return nil
}

// generateSwapMove 随机选择两个员工不同的班次
// 不允许取消分配时，交换不能涉及未分配班次
func (g *NeighborhoodGenerator) generateSwapMove(s *model.Schedule) Move {
	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		a := s.Shifts[g.rng.Intn(len(s.Shifts))]
		b := s.Shifts[g.rng.Intn(len(s.Shifts))]
		if a == b || a.Employee == b.Employee {
			continue
		}
		if !g.allowUnassigned && (a.Employee == nil || b.Employee == nil) {
			continue
		}
		return &SwapMove{A: a, B: b}
	}
	return nil
}
