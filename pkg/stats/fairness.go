// Package stats 提供排班统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/hussen-mac/employee-scheduling/pkg/calendar"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/shopspring/decimal"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 班次数公平性
	ShiftCountGini     float64         `json:"shift_count_gini"`     // 班次数基尼系数 (0=完全公平, 1=完全不公平)
	ShiftCountVariance float64         `json:"shift_count_variance"` // 班次数方差
	ShiftCountStdDev   float64         `json:"shift_count_std_dev"`  // 班次数标准差
	AvgShifts          float64         `json:"avg_shifts"`           // 人均班次数
	MaxShifts          int             `json:"max_shifts"`
	MinShifts          int             `json:"min_shifts"`
	Unfairness         decimal.Decimal `json:"unfairness"` // 与约束评分一致的不公平度

	// 工时与夜班
	HoursGini      float64 `json:"hours_gini"`
	NightShiftGini float64 `json:"night_shift_gini"`

	// 员工级别统计
	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 0-100
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeName string  `json:"employee_name"`
	ShiftCount   int     `json:"shift_count"`
	TotalHours   float64 `json:"total_hours"`
	NightShifts  int     `json:"night_shifts"`
	Deviation    float64 `json:"deviation"` // 与平均班次数的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班公平性，未分配班次的员工也计入
func (f *FairnessAnalyzer) Analyze(s *model.Schedule) *FairnessMetrics {
	if s == nil || len(s.Employees) == 0 {
		return &FairnessMetrics{Unfairness: decimal.Zero, OverallFairnessScore: 100}
	}

	statMap := make(map[string]*EmployeeStat, len(s.Employees))
	lb := NewLoadBalance()
	for _, e := range s.Employees {
		statMap[e.Name] = &EmployeeStat{EmployeeName: e.Name}
		lb.Ensure(e.Name)
	}

	for _, sh := range s.Shifts {
		if sh.Employee == nil {
			continue
		}
		stat, ok := statMap[sh.Employee.Name]
		if !ok {
			continue
		}
		stat.ShiftCount++
		stat.TotalHours += sh.Duration().Hours()
		if calendar.IsNightShift(sh) {
			stat.NightShifts++
		}
		lb.Add(sh.Employee.Name, 1)
	}

	employeeStats := make([]EmployeeStat, 0, len(statMap))
	for _, e := range s.Employees {
		employeeStats = append(employeeStats, *statMap[e.Name])
	}

	counts := make([]float64, len(employeeStats))
	hours := make([]float64, len(employeeStats))
	nights := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		counts[i] = float64(stat.ShiftCount)
		hours[i] = stat.TotalHours
		nights[i] = float64(stat.NightShifts)
	}

	summary := lb.Summary()
	avg := summary.Mean()
	variance := summary.Variance()
	stdDev := math.Sqrt(variance)

	for i := range employeeStats {
		if avg > 0 {
			employeeStats[i].Deviation = (counts[i] - avg) / avg * 100
		}
	}

	// 按班次数降序，姓名升序
	sort.SliceStable(employeeStats, func(i, j int) bool {
		if employeeStats[i].ShiftCount != employeeStats[j].ShiftCount {
			return employeeStats[i].ShiftCount > employeeStats[j].ShiftCount
		}
		return employeeStats[i].EmployeeName < employeeStats[j].EmployeeName
	})

	maxShifts, minShifts := calculateRange(counts)
	countGini := calculateGini(counts)
	nightGini := calculateGini(nights)

	return &FairnessMetrics{
		ShiftCountGini:       countGini,
		ShiftCountVariance:   variance,
		ShiftCountStdDev:     stdDev,
		AvgShifts:            avg,
		MaxShifts:            int(maxShifts),
		MinShifts:            int(minShifts),
		Unfairness:           summary.Unfairness(),
		HoursGini:            calculateGini(hours),
		NightShiftGini:       nightGini,
		EmployeeStats:        employeeStats,
		OverallFairnessScore: calculateOverallScore(countGini, nightGini, stdDev, avg),
	}
}

// calculateRange 计算极值
func calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func calculateOverallScore(countGini, nightGini, stdDev, avg float64) float64 {
	const (
		countWeight  = 0.6
		nightWeight  = 0.25
		stdDevWeight = 0.15
	)

	countScore := (1 - countGini) * 100
	nightScore := (1 - nightGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := countWeight*countScore + nightWeight*nightScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
