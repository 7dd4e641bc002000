package handler

import (
	"fmt"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
	"github.com/hussen-mac/employee-scheduling/pkg/swap"
)

// EmployeeInput 员工输入
type EmployeeInput struct {
	Name             string   `json:"name" validate:"required"`
	Skills           []string `json:"skills,omitempty"`
	UnavailableDates []string `json:"unavailable_dates,omitempty" validate:"dive,datetime=2006-01-02"`
	UndesiredDates   []string `json:"undesired_dates,omitempty" validate:"dive,datetime=2006-01-02"`
	DesiredDates     []string `json:"desired_dates,omitempty" validate:"dive,datetime=2006-01-02"`
}

// ShiftInput 班次输入
type ShiftInput struct {
	ID            string    `json:"id" validate:"required"`
	Start         time.Time `json:"start" validate:"required"`
	End           time.Time `json:"end" validate:"required"`
	Location      string    `json:"location"`
	RequiredSkill string    `json:"required_skill,omitempty"`
	OptionalSkill string    `json:"optional_skill,omitempty"`
	Employee      string    `json:"employee,omitempty"` // 空表示未分配
}

// ScheduleInput 排班输入
type ScheduleInput struct {
	Employees []EmployeeInput `json:"employees" validate:"dive"`
	Shifts    []ShiftInput    `json:"shifts" validate:"dive"`
}

// ScheduleRequest 评分/解释请求
type ScheduleRequest struct {
	ScheduleInput
	Constraints map[string]interface{} `json:"constraints,omitempty"`
}

// OptimizeOptions 优化选项，未设置的字段使用服务端默认值
type OptimizeOptions struct {
	TimeLimitSeconds   *float64 `json:"time_limit_seconds,omitempty" validate:"omitempty,gte=0"`
	MaxSteps           *int     `json:"max_steps,omitempty" validate:"omitempty,gte=0"`
	Seed               *int64   `json:"seed,omitempty"`
	MoveSampleBreadth  *int     `json:"move_sample_breadth,omitempty" validate:"omitempty,gte=1,lte=4096"`
	SwapProbability    *float64 `json:"swap_probability,omitempty" validate:"omitempty,gte=0,lte=1"`
	InitialTemperature *float64 `json:"initial_temperature,omitempty" validate:"omitempty,gte=0"`
	CoolingRate        *float64 `json:"cooling_rate,omitempty" validate:"omitempty,gt=0,lte=1"`
	Patience           *int     `json:"patience,omitempty" validate:"omitempty,gte=0"`
	TabuSize           *int     `json:"tabu_size,omitempty" validate:"omitempty,gte=0"`
	ParallelWorkers    *int     `json:"parallel_workers,omitempty" validate:"omitempty,gte=1,lte=64"`
	AllowUnassigned    *bool    `json:"allow_unassigned,omitempty"`
}

// Apply 将选项叠加到配置
func (o *OptimizeOptions) Apply(cfg optimizer.Config) optimizer.Config {
	if o == nil {
		return cfg
	}
	if o.TimeLimitSeconds != nil {
		cfg.TimeLimit = time.Duration(*o.TimeLimitSeconds * float64(time.Second))
	}
	if o.MaxSteps != nil {
		cfg.MaxSteps = *o.MaxSteps
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.MoveSampleBreadth != nil {
		cfg.MoveSampleBreadth = *o.MoveSampleBreadth
	}
	if o.SwapProbability != nil {
		cfg.SwapProbability = *o.SwapProbability
	}
	if o.InitialTemperature != nil {
		cfg.InitialTemperature = *o.InitialTemperature
	}
	if o.CoolingRate != nil {
		cfg.CoolingRate = *o.CoolingRate
	}
	if o.Patience != nil {
		cfg.Patience = *o.Patience
	}
	if o.TabuSize != nil {
		cfg.TabuSize = *o.TabuSize
	}
	if o.ParallelWorkers != nil {
		cfg.ParallelWorkers = *o.ParallelWorkers
	}
	if o.AllowUnassigned != nil {
		cfg.AllowUnassigned = *o.AllowUnassigned
	}
	return cfg
}

// OptimizeRequest 优化请求
type OptimizeRequest struct {
	ScheduleRequest
	Options *OptimizeOptions `json:"options,omitempty"`
}

// RecommendRequest 调班推荐请求
type RecommendRequest struct {
	ScheduleRequest
	ShiftID string        `json:"shift_id" validate:"required"`
	Options *swap.Options `json:"options,omitempty"`
}

// SwapRequest 调班评估请求
type SwapRequest struct {
	ScheduleRequest
	Swap swap.Request `json:"swap"`
}

// ForecastSeries 某时段的预测序列
type ForecastSeries struct {
	Slot   string           `json:"slot" validate:"required"`
	Points []forecast.Point `json:"points"`
}

// PlanRequest 班次生成请求
// 预测为空时从数据库读取；员工为空时按 demo 生成或从数据库读取
type PlanRequest struct {
	StartDate   string                 `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Days        int                    `json:"days,omitempty" validate:"omitempty,gte=1,lte=366"`
	Seed        *int64                 `json:"seed,omitempty"`
	Forecast    []ForecastSeries       `json:"forecast,omitempty" validate:"dive"`
	Employees   []EmployeeInput        `json:"employees,omitempty" validate:"dive"`
	Demo        string                 `json:"demo,omitempty" validate:"omitempty,oneof=small large"`
	Optimize    bool                   `json:"optimize,omitempty"`
	Options     *OptimizeOptions       `json:"options,omitempty"`
	Constraints map[string]interface{} `json:"constraints,omitempty"`
}

// ScoreResponse 评分响应
type ScoreResponse struct {
	Score    score.HardSoft `json:"score"`
	Display  string         `json:"display"`
	Feasible bool           `json:"feasible"`
}

// ExplainResponse 解释响应
type ExplainResponse struct {
	ScoreResponse
	HardMatches int                  `json:"hard_matches"`
	SoftMatches int                  `json:"soft_matches"`
	Summaries   []constraint.Summary `json:"summaries"`
	Matches     []constraint.Match   `json:"matches"`
}

// OptimizeResponse 优化响应
type OptimizeResponse struct {
	RunID             string                 `json:"run_id"`
	State             optimizer.State        `json:"state"`
	Score             score.HardSoft         `json:"score"`
	Display           string                 `json:"display"`
	Feasible          bool                   `json:"feasible"`
	ConstructionScore score.HardSoft         `json:"construction_score"`
	Steps             int                    `json:"steps"`
	BestStep          int                    `json:"best_step"`
	Duration          string                 `json:"duration"`
	Unassigned        int                    `json:"unassigned"`
	Schedule          ScheduleInput          `json:"schedule"`
	Fairness          *stats.FairnessMetrics `json:"fairness,omitempty"`
	Warning           *errors.AppError       `json:"warning,omitempty"` // 结果不可行时给出
}

// RecommendResponse 调班推荐响应
type RecommendResponse struct {
	ShiftID         string                `json:"shift_id"`
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// PlanResponse 班次生成响应
type PlanResponse struct {
	Schedule ScheduleInput     `json:"schedule"`
	Score    *ScoreResponse    `json:"score,omitempty"`
	Result   *OptimizeResponse `json:"result,omitempty"`
}

// ToModel 转换为领域模型
// 班次引用未知员工时生成方案外的员工，交由结构校验报告
func (in ScheduleInput) ToModel() *model.Schedule {
	employees := ToEmployees(in.Employees)
	byName := make(map[string]*model.Employee, len(employees))
	for _, e := range employees {
		if _, ok := byName[e.Name]; !ok {
			byName[e.Name] = e
		}
	}

	shifts := make([]*model.Shift, len(in.Shifts))
	for i, sh := range in.Shifts {
		shift := &model.Shift{
			ID:            sh.ID,
			Start:         sh.Start,
			End:           sh.End,
			Location:      sh.Location,
			RequiredSkill: sh.RequiredSkill,
			OptionalSkill: sh.OptionalSkill,
		}
		if sh.Employee != "" {
			emp, ok := byName[sh.Employee]
			if !ok {
				emp = model.NewEmployee(sh.Employee)
			}
			shift.Employee = emp
		}
		shifts[i] = shift
	}
	return model.NewSchedule(employees, shifts)
}

// ToEmployees 转换员工输入
func ToEmployees(inputs []EmployeeInput) []*model.Employee {
	employees := make([]*model.Employee, len(inputs))
	for i, in := range inputs {
		emp := model.NewEmployee(in.Name, in.Skills...)
		for _, d := range in.UnavailableDates {
			emp.UnavailableDates.Add(d)
		}
		for _, d := range in.UndesiredDates {
			emp.UndesiredDates.Add(d)
		}
		for _, d := range in.DesiredDates {
			emp.DesiredDates.Add(d)
		}
		employees[i] = emp
	}
	return employees
}

// FromModel 转换为输出格式
func FromModel(s *model.Schedule) ScheduleInput {
	out := ScheduleInput{
		Employees: make([]EmployeeInput, len(s.Employees)),
		Shifts:    make([]ShiftInput, len(s.Shifts)),
	}
	for i, e := range s.Employees {
		out.Employees[i] = EmployeeInput{
			Name:             e.Name,
			Skills:           e.Skills,
			UnavailableDates: e.UnavailableDates.Sorted(),
			UndesiredDates:   e.UndesiredDates.Sorted(),
			DesiredDates:     e.DesiredDates.Sorted(),
		}
	}
	for i, sh := range s.Shifts {
		out.Shifts[i] = ShiftInput{
			ID:            sh.ID,
			Start:         sh.Start,
			End:           sh.End,
			Location:      sh.Location,
			RequiredSkill: sh.RequiredSkill,
			OptionalSkill: sh.OptionalSkill,
			Employee:      sh.EmployeeName(),
		}
	}
	return out
}

// NewOptimizeResponse 由优化结果构造响应
func NewOptimizeResponse(result *scheduler.Result) *OptimizeResponse {
	resp := &OptimizeResponse{
		RunID:             result.RunID,
		State:             result.State,
		Score:             result.Score,
		Display:           result.Score.String(),
		Feasible:          result.Feasible,
		ConstructionScore: result.ConstructionScore,
		Steps:             result.Steps,
		BestStep:          result.BestStep,
		Duration:          result.Duration.String(),
		Fairness:          result.Fairness,
	}
	if result.Schedule != nil {
		resp.Schedule = FromModel(result.Schedule)
		resp.Unassigned = result.Schedule.UnassignedCount()
	}
	if !result.Feasible {
		resp.Warning = errors.NoFeasibleSolution(fmt.Sprintf("最优解仍违反硬约束: %s", result.Score)).
			WithField("unassigned", resp.Unassigned)
	}
	return resp
}

// MergeConstraints 请求中的约束参数覆盖服务端配置
func MergeConstraints(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
