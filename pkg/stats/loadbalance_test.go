package stats

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadSummary_Unfairness(t *testing.T) {
	tests := []struct {
		name     string
		loads    map[string]int64
		expected string
	}{
		{"空总体", map[string]int64{}, "0"},
		{"完全均衡", map[string]int64{"a": 3, "b": 3, "c": 3}, "0"},
		{"单人", map[string]int64{"a": 6}, "0"},
		// 偏差 ±3，平方和 18，开方 4.24264
		{"一人6班一人0班", map[string]int64{"a": 6, "b": 0}, "4.24264"},
		// 均值 1，偏差 2,-1,-1，平方和 6
		{"三人", map[string]int64{"a": 3, "b": 0, "c": 0}, "2.44949"},
		// 平方和 2
		{"一人2班一人0班", map[string]int64{"a": 2, "b": 0}, "1.41421"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb := NewLoadBalance()
			for k, v := range tt.loads {
				lb.Add(k, v)
			}
			got := lb.Summary().Unfairness()
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("Unfairness() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestSqrtDecimal(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"9", "3"},
		{"2", "1.414213562373"},
		{"0.25", "0.5"},
		// float64 无法区分 1e20+1 与 1e20
		{"100000000000000000001", "10000000000.00000000005"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := sqrtDecimal(decimal.RequireFromString(tt.value))
			expected := decimal.RequireFromString(tt.expected)
			places := int32(12)
			if expected.Exponent() < -places {
				places = -expected.Exponent()
			}
			if !got.Round(places).Equal(expected) {
				t.Errorf("sqrtDecimal(%s) = %s, expected %s", tt.value, got, tt.expected)
			}
		})
	}
}

func TestLoadBalance_SummaryWith(t *testing.T) {
	lb := NewLoadBalance("a", "b", "c")
	lb.Add("a", 4)
	lb.Add("b", 1)

	before := lb.Summary()
	adjust := map[string]int64{"a": -1, "c": 1}
	predicted := lb.SummaryWith(adjust)

	if lb.Summary() != before {
		t.Fatal("SummaryWith 不应修改状态")
	}

	for k, d := range adjust {
		lb.Add(k, d)
	}
	if lb.Summary() != predicted {
		t.Errorf("SummaryWith() = %+v, 实际 %+v", predicted, lb.Summary())
	}
	if lb.Load("a") != 3 || lb.Load("c") != 1 {
		t.Errorf("Load() 错误: a=%d c=%d", lb.Load("a"), lb.Load("c"))
	}
}

func TestLoadBalance_ZeroLoadMembersCount(t *testing.T) {
	lb := NewLoadBalance("a", "b", "c", "d")
	lb.Add("a", 2)

	s := lb.Summary()
	if s.N != 4 || s.Sum != 2 || s.SumSquares != 4 {
		t.Errorf("Summary() = %+v", s)
	}
	if s.Mean() != 0.5 {
		t.Errorf("Mean() = %v", s.Mean())
	}
	if keys := lb.Keys(); len(keys) != 4 || keys[0] != "a" {
		t.Errorf("Keys() = %v", keys)
	}
}
