// Package score 定义硬/软约束分数
package score

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// HardSoft 硬/软两级分数，按字典序比较
// 硬分 < 0 表示不可行；硬分相同时软分越高越好
type HardSoft struct {
	Hard decimal.Decimal `json:"hard"`
	Soft decimal.Decimal `json:"soft"`
}

var (
	// Zero 零分
	Zero = HardSoft{Hard: decimal.Zero, Soft: decimal.Zero}
	// OneHard 单位硬分
	OneHard = Of(1, 0)
	// OneSoft 单位软分
	OneSoft = Of(0, 1)
)

// Of 由整数构造分数
func Of(hard, soft int64) HardSoft {
	return HardSoft{Hard: decimal.NewFromInt(hard), Soft: decimal.NewFromInt(soft)}
}

// OfDecimal 由十进制数构造分数
func OfDecimal(hard, soft decimal.Decimal) HardSoft {
	return HardSoft{Hard: hard, Soft: soft}
}

// Add 相加
func (s HardSoft) Add(o HardSoft) HardSoft {
	return HardSoft{Hard: s.Hard.Add(o.Hard), Soft: s.Soft.Add(o.Soft)}
}

// Sub 相减
func (s HardSoft) Sub(o HardSoft) HardSoft {
	return HardSoft{Hard: s.Hard.Sub(o.Hard), Soft: s.Soft.Sub(o.Soft)}
}

// Neg 取反
func (s HardSoft) Neg() HardSoft {
	return HardSoft{Hard: s.Hard.Neg(), Soft: s.Soft.Neg()}
}

// Mul 乘以标量
func (s HardSoft) Mul(factor decimal.Decimal) HardSoft {
	return HardSoft{Hard: s.Hard.Mul(factor), Soft: s.Soft.Mul(factor)}
}

// Compare 字典序比较，返回 -1/0/1
func (s HardSoft) Compare(o HardSoft) int {
	if c := s.Hard.Cmp(o.Hard); c != 0 {
		return c
	}
	return s.Soft.Cmp(o.Soft)
}

// Equal 数值相等
func (s HardSoft) Equal(o HardSoft) bool {
	return s.Compare(o) == 0
}

// IsZero 是否为零分
func (s HardSoft) IsZero() bool {
	return s.Hard.IsZero() && s.Soft.IsZero()
}

// IsFeasible 硬分不为负即可行
func (s HardSoft) IsFeasible() bool {
	return s.Hard.Sign() >= 0
}

// String 形如 -60hard/-3soft
func (s HardSoft) String() string {
	return fmt.Sprintf("%shard/%ssoft", s.Hard.String(), s.Soft.String())
}

// Parse 解析 String 的输出
func Parse(text string) (HardSoft, error) {
	hardPart, softPart, ok := strings.Cut(text, "/")
	if !ok || !strings.HasSuffix(hardPart, "hard") || !strings.HasSuffix(softPart, "soft") {
		return Zero, fmt.Errorf("分数格式无效: %q", text)
	}
	hard, err := decimal.NewFromString(strings.TrimSuffix(hardPart, "hard"))
	if err != nil {
		return Zero, fmt.Errorf("解析硬分失败: %w", err)
	}
	soft, err := decimal.NewFromString(strings.TrimSuffix(softPart, "soft"))
	if err != nil {
		return Zero, fmt.Errorf("解析软分失败: %w", err)
	}
	return HardSoft{Hard: hard, Soft: soft}, nil
}
