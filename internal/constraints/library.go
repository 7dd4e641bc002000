// Package constraints 约束库：向前端描述引擎支持的约束及其参数
package constraints

import (
	"strconv"

	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint/builtin"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"` // 配置键
	Type        string `json:"type"` // int, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"` // hard 硬约束, soft 软约束
	Impact      string            `json:"impact"`
	Category    string            `json:"category"` // 分类
	Description string            `json:"description"`
	Optional    bool              `json:"optional"` // 默认关闭，需通过开关启用
	Weight      int64             `json:"weight"`
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library []ConstraintDefinition `json:"library"`
}

// description 约束的展示信息
type description struct {
	displayName string
	category    string
	text        string
	params      []ConstraintParam
	toggle      string
}

var descriptions = map[constraint.Type]description{
	constraint.TypeOverlappingShift: {
		displayName: "班次重叠",
		category:    "时间冲突",
		text:        "同一员工的两个班次时间重叠时按重叠分钟数扣硬分。",
	},
	constraint.TypeMinRestBetweenShifts: {
		displayName: "班次间最小休息时间",
		category:    "休息保障",
		text:        "相邻班次间隔低于阈值时，按目标休息时间与实际间隔之差扣硬分。",
		params: []ConstraintParam{
			{Name: builtin.ConfigRestThresholdMinutes, Type: "int", Description: "触发阈值(分钟)", Default: strconv.Itoa(builtin.DefaultRestThresholdMinutes), Min: "0"},
			{Name: builtin.ConfigRestTargetMinutes, Type: "int", Description: "目标休息时间(分钟)", Default: strconv.Itoa(builtin.DefaultRestTargetMinutes), Min: "0"},
		},
	},
	constraint.TypeUnavailableEmployee: {
		displayName: "员工不可用日期",
		category:    "员工可用性",
		text:        "班次落在员工不可用日期内时，按当天内的重叠分钟数扣硬分。",
	},
	constraint.TypeMaxShiftsPerWeek: {
		displayName: "每周最大班次数",
		category:    "工时限制",
		text:        "同一 ISO 周内的班次数超过上限时，按超出的班次数扣硬分。",
		params: []ConstraintParam{
			{Name: builtin.ConfigMaxShiftsPerWeek, Type: "int", Description: "每周最大班次数", Default: strconv.Itoa(builtin.DefaultMaxShiftsPerWeek), Min: "1", Max: "14"},
		},
	},
	constraint.TypeUnassignedShift: {
		displayName: "未分配班次",
		category:    "覆盖率",
		text:        "每个未分配的班次扣一个硬分。",
	},
	constraint.TypeMaxConsecutiveNights: {
		displayName: "最大连续夜班",
		category:    "休息保障",
		text:        "连续夜班天数超过上限时，按超出的天数扣硬分。",
		toggle:      builtin.ConfigEnableNightShiftLimit,
		params: []ConstraintParam{
			{Name: builtin.ConfigMaxConsecutiveNights, Type: "int", Description: "最大连续夜班天数", Default: strconv.Itoa(builtin.DefaultMaxConsecutiveNights), Min: "1", Max: "7"},
		},
	},
	constraint.TypeOneShiftPerDay: {
		displayName: "每天最多一个班次",
		category:    "时间冲突",
		text:        "同一员工在同一天开始的班次多于一个时扣硬分。",
		toggle:      builtin.ConfigEnableOneShiftPerDay,
	},
	constraint.TypeRequiredSkill: {
		displayName: "技能要求",
		category:    "资质要求",
		text:        "员工不具备班次要求的技能时扣软分。",
	},
	constraint.TypeUndesiredDay: {
		displayName: "不希望上班的日期",
		category:    "员工偏好",
		text:        "班次落在员工不希望上班的日期时，按当天内的分钟数扣软分。",
	},
	constraint.TypeDesiredDay: {
		displayName: "希望上班的日期",
		category:    "员工偏好",
		text:        "班次落在员工希望上班的日期时，按当天内的分钟数加软分。",
	},
	constraint.TypeWorkloadBalance: {
		displayName: "工作量均衡",
		category:    "公平性",
		text:        "按各员工班次数与平均值偏差平方和的平方根扣软分。",
	},
}

// GetLibrary 获取完整的约束库
// 内容来自内置约束的实际注册结果，可选约束一并列出
func GetLibrary() []ConstraintDefinition {
	manager := builtin.NewDefaultManager(map[string]interface{}{
		builtin.ConfigEnableNightShiftLimit: true,
		builtin.ConfigEnableOneShiftPerDay:  true,
	})

	var library []ConstraintDefinition
	for _, c := range manager.GetAll() {
		d := descriptions[c.Type()]
		weight := c.Weight().Soft
		if c.Category() == constraint.CategoryHard {
			weight = c.Weight().Hard
		}

		params := append([]ConstraintParam(nil), d.params...)
		if d.toggle != "" {
			params = append(params, ConstraintParam{Name: d.toggle, Type: "bool", Description: "启用该约束", Default: "false"})
		}
		params = append(params, ConstraintParam{
			Name:        string(c.Type()) + builtin.ConfigWeightSuffix,
			Type:        "int",
			Description: "权重",
			Default:     weight.String(),
			Min:         "0",
		})

		displayName := d.displayName
		if displayName == "" {
			displayName = c.Name()
		}

		library = append(library, ConstraintDefinition{
			Name:        string(c.Type()),
			DisplayName: displayName,
			Type:        string(c.Category()),
			Impact:      string(c.Impact()),
			Category:    d.category,
			Description: d.text,
			Optional:    d.toggle != "",
			Weight:      weight.IntPart(),
			Params:      params,
		})
	}
	return library
}
