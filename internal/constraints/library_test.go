package constraints

import (
	"testing"

	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint/builtin"
)

func TestGetLibrary(t *testing.T) {
	library := GetLibrary()
	if len(library) != 11 {
		t.Fatalf("约束数量 = %d, want 11", len(library))
	}

	byName := make(map[string]ConstraintDefinition)
	seenSoft := false
	for _, def := range library {
		if def.DisplayName == "" || def.Description == "" {
			t.Errorf("%s 缺少展示信息", def.Name)
		}
		// 硬约束排在前面
		if def.Type == string(constraint.CategorySoft) {
			seenSoft = true
		} else if seenSoft {
			t.Errorf("硬约束 %s 出现在软约束之后", def.Name)
		}
		byName[def.Name] = def
	}

	rest := byName[string(constraint.TypeMinRestBetweenShifts)]
	if rest.Optional {
		t.Error("休息约束不应是可选的")
	}
	if rest.Params[0].Name != builtin.ConfigRestThresholdMinutes || rest.Params[0].Default != "180" {
		t.Errorf("休息阈值参数 = %+v", rest.Params[0])
	}

	night := byName[string(constraint.TypeMaxConsecutiveNights)]
	if !night.Optional {
		t.Error("连续夜班约束应为可选")
	}

	desired := byName[string(constraint.TypeDesiredDay)]
	if desired.Impact != string(constraint.ImpactReward) {
		t.Errorf("desired_day impact = %s", desired.Impact)
	}
	last := desired.Params[len(desired.Params)-1]
	if last.Name != "desired_day_weight" {
		t.Errorf("权重参数名 = %s", last.Name)
	}
}
