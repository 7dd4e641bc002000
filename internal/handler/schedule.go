// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"
	"github.com/hussen-mac/employee-scheduling/internal/constraints"
	"github.com/hussen-mac/employee-scheduling/internal/metrics"
	"github.com/hussen-mac/employee-scheduling/internal/repository"
	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/swap"
)

// Options 处理器依赖，仓储为空时对应功能关闭
type Options struct {
	Optimizer   optimizer.Config
	Planner     planner.Config
	Constraints map[string]interface{}
	MaxBodySize int64

	Employees EmployeeStore
	Forecasts ForecastStore
	Runs      *repository.ScheduleRepository
	Observer  *metrics.SolverObserver
}

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	opts       Options
	validate   *validator.Validate
	translator ut.Translator
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(opts Options) (*ScheduleHandler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 10 << 20
	}
	if opts.Observer == nil {
		opts.Observer = metrics.NewSolverObserver(nil)
	}
	return &ScheduleHandler{opts: opts, validate: validate, translator: trans}, nil
}

// Routes 注册路由
func (h *ScheduleHandler) Routes(r chi.Router) {
	r.Route("/schedule", func(r chi.Router) {
		r.Post("/score", h.Score)
		r.Post("/explain", h.Explain)
		r.Post("/optimize", h.Optimize)
		r.Post("/plan", h.Plan)
		r.Post("/recommend", h.Recommend)
		r.Post("/swap", h.EvaluateSwap)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)
	})
	r.Get("/constraints/library", h.Library)
	h.storeRoutes(r)
}

// engine 创建请求级引擎
func (h *ScheduleHandler) engine(override map[string]interface{}) *scheduler.Engine {
	engine := scheduler.NewDefaultEngine(MergeConstraints(h.opts.Constraints, override))
	engine.SetObserver(h.opts.Observer)
	return engine
}

// Score 计算排班分数
func (h *ScheduleHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	sc, err := h.engine(req.Constraints).Score(req.ToModel())
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, ScoreResponse{Score: sc, Display: sc.String(), Feasible: sc.IsFeasible()})
}

// Explain 返回约束命中明细
func (h *ScheduleHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.engine(req.Constraints).Evaluate(req.ToModel())
	if err != nil {
		respondError(w, asAppError(err))
		return
	}
	h.opts.Observer.ObserveMatches(result.Matches)

	respondJSON(w, http.StatusOK, ExplainResponse{
		ScoreResponse: ScoreResponse{Score: result.Score, Display: result.Score.String(), Feasible: result.Feasible},
		HardMatches:   result.HardMatches,
		SoftMatches:   result.SoftMatches,
		Summaries:     result.Summaries(),
		Matches:       result.Matches,
	})
}

// Optimize 优化排班
func (h *ScheduleHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.optimize(r.Context(), req.ToModel(), req.Constraints, req.Options)
	if err != nil && result == nil {
		respondError(w, asAppError(err))
		return
	}
	if err != nil {
		// 取消时仍返回已找到的最优解
		logger.WithContext(r.Context()).Warn().Err(err).
			Str("code", string(errors.GetCode(err))).
			Str("run_id", result.RunID).
			Msg("优化被取消")
	}

	respondJSON(w, http.StatusOK, NewOptimizeResponse(result))
}

// optimize 运行优化并保存运行记录
func (h *ScheduleHandler) optimize(ctx context.Context, s *model.Schedule, override map[string]interface{}, opts *OptimizeOptions) (*scheduler.Result, error) {
	cfg := opts.Apply(h.opts.Optimizer)

	h.opts.Observer.SolveStarted()
	result, err := h.engine(override).Optimize(ctx, s, cfg)
	if result == nil {
		// 校验失败，引擎未启动
		h.opts.Observer.SolveAborted()
		return nil, err
	}

	if h.opts.Runs != nil {
		if run, assignments, convErr := repository.NewScheduleRun(result); convErr == nil {
			// 请求可能已取消，保存使用独立的上下文
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if saveErr := h.opts.Runs.Save(saveCtx, run, assignments); saveErr != nil {
				logger.WithContext(ctx).Error().Err(saveErr).Str("run_id", result.RunID).Msg("保存运行记录失败")
			}
		}
	}
	return result, err
}

// Recommend 为班次推荐接替人选
func (h *ScheduleHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	opts := swap.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	recs, err := swap.NewRecommender(h.engine(req.Constraints).Manager()).Recommend(req.ToModel(), req.ShiftID, opts)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}
	if recs == nil {
		recs = []swap.Recommendation{}
	}
	respondJSON(w, http.StatusOK, RecommendResponse{ShiftID: req.ShiftID, Recommendations: recs})
}

// EvaluateSwap 评估一次调班
func (h *ScheduleHandler) EvaluateSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	eval, err := swap.NewEvaluator(h.engine(req.Constraints).Manager()).Evaluate(req.ToModel(), req.Swap)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}
	respondJSON(w, http.StatusOK, eval)
}

// Plan 根据预测生成班次，可选地立即优化
func (h *ScheduleHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	ctx := r.Context()

	cfg := h.opts.Planner
	if req.StartDate != "" {
		cfg.StartDate = req.StartDate
	}
	if cfg.StartDate == "" {
		cfg.StartDate = planner.NextMonday(time.Now().In(locationOf(cfg)))
	}
	if req.Days > 0 {
		cfg.Days = req.Days
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	start, err := model.ParseDate(cfg.StartDate, locationOf(cfg))
	if err != nil {
		respondError(w, errors.InvalidInput("start_date", err.Error()))
		return
	}
	endDate := model.DateOf(start.AddDate(0, 0, cfg.Days-1))
	filter := repository.DefaultListFilter().WithDateRange(cfg.StartDate, endDate)

	oracle, appErr := h.loadForecast(ctx, req.Forecast, filter)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, appErr := h.loadEmployees(ctx, req, cfg, filter)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	s, err := planner.Build(cfg, oracle, employees)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "生成班次失败"))
		return
	}

	resp := PlanResponse{}
	if !req.Optimize {
		sc, err := h.engine(req.Constraints).Score(s)
		if err != nil {
			respondError(w, asAppError(err))
			return
		}
		resp.Schedule = FromModel(s)
		resp.Score = &ScoreResponse{Score: sc, Display: sc.String(), Feasible: sc.IsFeasible()}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	result, err := h.optimize(ctx, s, req.Constraints, req.Options)
	if result == nil {
		respondError(w, asAppError(err))
		return
	}
	resp.Result = NewOptimizeResponse(result)
	resp.Schedule = resp.Result.Schedule
	respondJSON(w, http.StatusOK, resp)
}

// loadForecast 请求中的预测优先，否则读数据库
func (h *ScheduleHandler) loadForecast(ctx context.Context, series []ForecastSeries, filter repository.ListFilter) (forecast.Oracle, *errors.AppError) {
	if len(series) > 0 || h.opts.Forecasts == nil {
		table := forecast.NewTable()
		for _, s := range series {
			table.AddSeries(s.Slot, s.Points)
		}
		return table, nil
	}

	table, err := h.opts.Forecasts.Load(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "读取预测失败")
	}
	logger.Debug().
		Strs("slots", table.Slots()).
		Str("start_date", filter.StartDate).
		Str("end_date", filter.EndDate).
		Msg("从数据库读取预测")
	return table, nil
}

// loadEmployees 请求中的员工优先，其次是演示数据，最后读数据库
func (h *ScheduleHandler) loadEmployees(ctx context.Context, req PlanRequest, cfg planner.Config, filter repository.ListFilter) ([]*model.Employee, *errors.AppError) {
	switch {
	case len(req.Employees) > 0:
		return ToEmployees(req.Employees), nil
	case req.Demo != "":
		demo := planner.SmallDemo()
		if req.Demo == "large" {
			demo = planner.LargeDemo()
		}
		demo.Seed = cfg.Seed
		days, err := planner.Days(mustParse(cfg), cfg.Days)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "生成日期失败")
		}
		dates := make([]string, len(days))
		for i, d := range days {
			dates[i] = model.DateOf(d)
		}
		return planner.DemoEmployees(demo, dates), nil
	case h.opts.Employees != nil:
		employees, err := h.opts.Employees.LoadForRange(ctx, filter.StartDate, filter.EndDate)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "读取员工失败")
		}
		return employees, nil
	default:
		return nil, nil
	}
}

// ListRuns 查询历史运行
func (h *ScheduleHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.opts.Runs == nil {
		respondError(w, storageDisabled("运行记录"))
		return
	}

	filter, appErr := listFilter(r.URL.Query())
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	runs, err := h.opts.Runs.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询运行记录失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// listFilter 解析分页与日期范围参数
func listFilter(q url.Values) (repository.ListFilter, *errors.AppError) {
	filter := repository.DefaultListFilter().WithDateRange(q.Get("start_date"), q.Get("end_date"))
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			return filter, errors.InvalidInput("limit", "必须是 1 到 100 之间的整数")
		}
		filter = filter.WithLimit(limit)
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.InvalidInput("offset", "必须是非负整数")
		}
		filter = filter.WithOffset(offset)
	}
	return filter, nil
}

// GetRun 查询单次运行及其分配
func (h *ScheduleHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.opts.Runs == nil {
		respondError(w, storageDisabled("运行记录"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, errors.InvalidInput("id", "无效的运行ID"))
		return
	}

	run, err := h.opts.Runs.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询运行记录失败"))
		return
	}
	if run == nil {
		respondError(w, errors.NotFound("运行记录", id.String()))
		return
	}

	assignments, err := h.opts.Runs.GetAssignments(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询分配记录失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"run": run, "assignments": assignments})
}

// Library 返回约束库
func (h *ScheduleHandler) Library(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, constraints.LibraryResponse{Library: constraints.GetLibrary()})
}

// decode 解析并校验请求体
func (h *ScheduleHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) *errors.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}

	if err := h.validate.Struct(v); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.Wrap(err, errors.CodeValidationFail, "验证失败")
		}
		ve := &errors.ValidationErrors{}
		for _, fe := range fieldErrs {
			ve.Add(fe.Namespace(), fe.Translate(h.translator))
		}
		return ve.ToAppError()
	}
	return nil
}

// asAppError 将错误转换为 AppError
func asAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

func locationOf(cfg planner.Config) *time.Location {
	if cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}

// mustParse 解析已校验过的开始日期
func mustParse(cfg planner.Config) time.Time {
	t, _ := model.ParseDate(cfg.StartDate, locationOf(cfg))
	return t
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Msg("写入响应失败")
	}
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	respondJSON(w, errors.GetHTTPStatus(err), map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"fields":  err.Fields,
	})
}
