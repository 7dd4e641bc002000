package calendar

import (
	"cmp"
	"slices"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
)

// GroupBy 按键分组，组内保持输入顺序
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// CountBy 按键计数
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// SortedKeys 返回升序排列的键
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// UniquePairs 对每个无序对 (items[i], items[j]), i<j 调用 match，满足时调用 visit
func UniquePairs[T any](items []T, match func(a, b T) bool, visit func(a, b T)) {
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if match(items[i], items[j]) {
				visit(items[i], items[j])
			}
		}
	}
}

// CompareShifts 按开始时间、再按ID排序
func CompareShifts(a, b *model.Shift) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Chronological 返回按时间顺序排列的班次副本
func Chronological(shifts []*model.Shift) []*model.Shift {
	sorted := slices.Clone(shifts)
	slices.SortFunc(sorted, CompareShifts)
	return sorted
}

// OverlappingPairs 扫描按时间排序的班次，对每对时间重叠的班次调用 visit
func OverlappingPairs(sorted []*model.Shift, visit func(a, b *model.Shift)) {
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted) && sorted[j].Start.Before(sorted[i].End); j++ {
			visit(sorted[i], sorted[j])
		}
	}
}

// Predecessor 返回 sorted[idx] 之前结束时间最晚且不晚于其开始时间的班次
// 结束时间相同时取ID较大者（更接近）；不存在时返回 nil
func Predecessor(sorted []*model.Shift, idx int) *model.Shift {
	target := sorted[idx]
	var best *model.Shift
	for i := 0; i < idx; i++ {
		s := sorted[i]
		if s.End.After(target.Start) {
			continue
		}
		if best == nil || s.End.After(best.End) || (s.End.Equal(best.End) && s.ID > best.ID) {
			best = s
		}
	}
	return best
}
