package stats

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// UnfairnessPrecision 不公平度保留的小数位数
const UnfairnessPrecision = 5

// LoadSummary 负载汇总（整数，精确）
type LoadSummary struct {
	N          int64 `json:"n"`
	Sum        int64 `json:"sum"`
	SumSquares int64 `json:"sum_squares"`
}

// Mean 平均负载
func (s LoadSummary) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.N)
}

// Variance 总体方差
func (s LoadSummary) Variance() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.N*s.SumSquares-s.Sum*s.Sum) / float64(s.N*s.N)
}

// Unfairness 不公平度：各负载与均值偏差平方和的平方根
// sqrt(SumSquares - Sum²/N)，以十进制计算并四舍五入到 UnfairnessPrecision 位
func (s LoadSummary) Unfairness() decimal.Decimal {
	if s.N == 0 {
		return decimal.Zero
	}
	numerator := s.N*s.SumSquares - s.Sum*s.Sum
	if numerator <= 0 {
		return decimal.Zero
	}
	v := decimal.NewFromInt(numerator).DivRound(decimal.NewFromInt(s.N), sqrtWorkPrecision)
	return sqrtDecimal(v).Round(UnfairnessPrecision)
}

// sqrtWorkPrecision 开方迭代的工作精度
const sqrtWorkPrecision = UnfairnessPrecision + 10

// sqrtDecimal 牛顿迭代求平方根，v 必须为正
// 以 float64 结果作为初值，迭代在十进制下收敛
func sqrtDecimal(v decimal.Decimal) decimal.Decimal {
	f, _ := v.Float64()
	x := decimal.NewFromFloat(math.Sqrt(f))
	if !x.IsPositive() {
		x = v
	}
	two := decimal.NewFromInt(2)
	for i := 0; i < 64; i++ {
		next := x.Add(v.DivRound(x, sqrtWorkPrecision)).DivRound(two, sqrtWorkPrecision)
		if next.Equal(x) {
			break
		}
		x = next
	}
	return x
}

// LoadBalance 按员工维护负载，支持增量更新
// 负载为 0 的员工同样计入总体
type LoadBalance struct {
	loads   map[string]int64
	summary LoadSummary
}

// NewLoadBalance 以零负载创建成员
func NewLoadBalance(keys ...string) *LoadBalance {
	lb := &LoadBalance{loads: make(map[string]int64, len(keys))}
	for _, k := range keys {
		lb.Ensure(k)
	}
	return lb
}

// Ensure 确保成员存在
func (lb *LoadBalance) Ensure(key string) {
	if _, ok := lb.loads[key]; ok {
		return
	}
	lb.loads[key] = 0
	lb.summary.N++
}

// Add 调整成员负载
func (lb *LoadBalance) Add(key string, delta int64) {
	lb.Ensure(key)
	x := lb.loads[key]
	lb.loads[key] = x + delta
	lb.summary.Sum += delta
	lb.summary.SumSquares += (x+delta)*(x+delta) - x*x
}

// Load 返回成员负载
func (lb *LoadBalance) Load(key string) int64 {
	return lb.loads[key]
}

// Summary 当前汇总
func (lb *LoadBalance) Summary() LoadSummary {
	return lb.summary
}

// SummaryWith 在不修改状态的情况下计算调整后的汇总
// 只遍历被调整的成员；未知成员按新增零负载成员处理
func (lb *LoadBalance) SummaryWith(adjust map[string]int64) LoadSummary {
	s := lb.summary
	for key, delta := range adjust {
		x, ok := lb.loads[key]
		if !ok {
			s.N++
		}
		s.Sum += delta
		s.SumSquares += (x+delta)*(x+delta) - x*x
	}
	return s
}

// Keys 返回排序后的成员
func (lb *LoadBalance) Keys() []string {
	keys := make([]string, 0, len(lb.loads))
	for k := range lb.loads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
