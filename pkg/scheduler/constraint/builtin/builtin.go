package builtin

import (
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// 配置键
const (
	ConfigRestThresholdMinutes  = "rest_threshold_minutes"
	ConfigRestTargetMinutes     = "rest_target_minutes"
	ConfigMaxShiftsPerWeek      = "max_shifts_per_week"
	ConfigMaxConsecutiveNights  = "max_consecutive_night_shifts"
	ConfigEnableNightShiftLimit = "enable_night_shift_limit"
	ConfigEnableOneShiftPerDay  = "enable_one_shift_per_day"
	ConfigDisabledConstraints   = "disabled_constraints"
	ConfigWeightSuffix          = "_weight"
)

// weighted 带可配置权重的约束
type weighted interface {
	constraint.Constraint
	SetWeight(weight int64)
}

// RegisterDefaultConstraints 注册默认约束到管理器
// 权重可通过 "<约束类型>_weight" 覆盖，"disabled_constraints" 中列出的约束类型不参与评分
func RegisterDefaultConstraints(manager *constraint.Manager, config map[string]interface{}) {
	// 从配置中获取参数，使用默认值
	restThreshold := getConfigInt(config, ConfigRestThresholdMinutes, DefaultRestThresholdMinutes)
	restTarget := getConfigInt(config, ConfigRestTargetMinutes, DefaultRestTargetMinutes)
	maxShiftsPerWeek := getConfigInt(config, ConfigMaxShiftsPerWeek, DefaultMaxShiftsPerWeek)
	maxNights := getConfigInt(config, ConfigMaxConsecutiveNights, DefaultMaxConsecutiveNights)

	// 注册硬约束
	register(manager, config, NewOverlappingShiftConstraint())
	register(manager, config, NewMinRestBetweenShiftsConstraint(restThreshold, restTarget))
	register(manager, config, NewUnavailableEmployeeConstraint())
	register(manager, config, NewMaxShiftsPerWeekConstraint(maxShiftsPerWeek))
	register(manager, config, NewUnassignedShiftConstraint())

	// 注册软约束
	register(manager, config, NewRequiredSkillConstraint())
	register(manager, config, NewUndesiredDayConstraint())
	register(manager, config, NewDesiredDayConstraint())
	register(manager, config, NewWorkloadBalanceConstraint())

	// 可选约束
	if getConfigBool(config, ConfigEnableNightShiftLimit, false) {
		register(manager, config, NewMaxConsecutiveNightShiftsConstraint(maxNights))
	}
	if getConfigBool(config, ConfigEnableOneShiftPerDay, false) {
		register(manager, config, NewOneShiftPerDayConstraint())
	}

	for _, t := range getConfigStrings(config, ConfigDisabledConstraints) {
		manager.Unregister(constraint.Type(t))
	}
}

// NewDefaultManager 创建已注册默认约束的管理器
func NewDefaultManager(config map[string]interface{}) *constraint.Manager {
	manager := constraint.NewManager()
	RegisterDefaultConstraints(manager, config)
	return manager
}

// register 应用权重配置后注册
func register(manager *constraint.Manager, config map[string]interface{}, c weighted) {
	if w := getConfigInt(config, string(c.Type())+ConfigWeightSuffix, -1); w >= 0 {
		c.SetWeight(int64(w))
	}
	manager.Register(c)
}

// getConfigInt 从配置中获取整数
func getConfigInt(config map[string]interface{}, key string, defaultVal int) int {
	if config == nil {
		return defaultVal
	}
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case int64:
			return int(v)
		}
	}
	return defaultVal
}

// getConfigBool 从配置中获取布尔值
func getConfigBool(config map[string]interface{}, key string, defaultVal bool) bool {
	if config == nil {
		return defaultVal
	}
	if val, ok := config[key].(bool); ok {
		return val
	}
	return defaultVal
}

// getConfigStrings 从配置中获取字符串列表，兼容 JSON/YAML 解析出的 []interface{}
func getConfigStrings(config map[string]interface{}, key string) []string {
	switch v := config[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
