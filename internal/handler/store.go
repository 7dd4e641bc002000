package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hussen-mac/employee-scheduling/internal/repository"
	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
)

// EmployeeStore 员工存储
type EmployeeStore interface {
	Save(ctx context.Context, emp *model.Employee) error
	SaveAvailability(ctx context.Context, a model.EmployeeAvailability) error
	GetByName(ctx context.Context, name string) (*model.Employee, error)
	Delete(ctx context.Context, name string) error
	LoadForRange(ctx context.Context, startDate, endDate string) ([]*model.Employee, error)
}

// ForecastStore 需求预测存储
type ForecastStore interface {
	SaveSeries(ctx context.Context, slot string, points []forecast.Point) error
	Load(ctx context.Context, filter repository.ListFilter) (*forecast.Table, error)
}

var (
	_ EmployeeStore = (*repository.EmployeeRepository)(nil)
	_ ForecastStore = (*repository.ForecastRepository)(nil)
)

// EmployeeImportRequest 员工导入请求
type EmployeeImportRequest struct {
	Employees []EmployeeInput `json:"employees" validate:"required,min=1,dive"`
}

// ForecastImportRequest 预测导入请求
type ForecastImportRequest struct {
	Forecast []ForecastSeries `json:"forecast" validate:"required,min=1,dive"`
}

// ImportResult 导入结果
type ImportResult struct {
	Employees    int `json:"employees,omitempty"`
	Availability int `json:"availability,omitempty"`
	Slots        int `json:"slots,omitempty"`
	Points       int `json:"points,omitempty"`
}

// ImportEmployees 写入员工及其可用性记录
func ImportEmployees(ctx context.Context, store EmployeeStore, employees []*model.Employee) (ImportResult, error) {
	var result ImportResult
	for _, emp := range employees {
		if err := store.Save(ctx, emp); err != nil {
			return result, err
		}
		result.Employees++
		for _, a := range emp.AvailabilityRecords() {
			if err := store.SaveAvailability(ctx, a); err != nil {
				return result, err
			}
			result.Availability++
		}
	}
	return result, nil
}

// ImportForecast 按时段写入预测表
func ImportForecast(ctx context.Context, store ForecastStore, table *forecast.Table) (ImportResult, error) {
	var result ImportResult
	for _, slot := range table.Slots() {
		points := table.Series(slot)
		if err := store.SaveSeries(ctx, slot, points); err != nil {
			return result, err
		}
		result.Slots++
		result.Points += len(points)
	}
	return result, nil
}

// storeRoutes 注册员工与预测的存储路由
func (h *ScheduleHandler) storeRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.ListEmployees)
		r.Post("/", h.ImportEmployees)
		r.Get("/{name}", h.GetEmployee)
		r.Delete("/{name}", h.DeleteEmployee)
	})
	r.Post("/forecasts", h.ImportForecast)
}

// storageDisabled 未配置数据库时的响应
func storageDisabled(what string) *errors.AppError {
	return errors.New(errors.CodeNotFound, "未启用"+what+"存储").
		WithDetails("设置 DB_ENABLED=true 后可用")
}

// ListEmployees 查询员工及其在日期范围内的可用性
func (h *ScheduleHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if h.opts.Employees == nil {
		respondError(w, storageDisabled("员工"))
		return
	}

	q := r.URL.Query()
	employees, err := h.opts.Employees.LoadForRange(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"employees": employees})
}

// ImportEmployees 创建或更新员工，并写入其日期偏好
func (h *ScheduleHandler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	if h.opts.Employees == nil {
		respondError(w, storageDisabled("员工"))
		return
	}

	var req EmployeeImportRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := ImportEmployees(r.Context(), h.opts.Employees, ToEmployees(req.Employees))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存员工失败"))
		return
	}

	logger.WithFields(map[string]interface{}{
		"employees":    result.Employees,
		"availability": result.Availability,
	}).Info().Msg("员工已导入")
	respondJSON(w, http.StatusOK, result)
}

// GetEmployee 按姓名查询员工
func (h *ScheduleHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	if h.opts.Employees == nil {
		respondError(w, storageDisabled("员工"))
		return
	}

	name := chi.URLParam(r, "name")
	emp, err := h.opts.Employees.GetByName(r.Context(), name)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", name))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// DeleteEmployee 软删除员工
func (h *ScheduleHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if h.opts.Employees == nil {
		respondError(w, storageDisabled("员工"))
		return
	}

	if err := h.opts.Employees.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			respondError(w, asAppError(err))
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportForecast 写入各时段的需求预测
func (h *ScheduleHandler) ImportForecast(w http.ResponseWriter, r *http.Request) {
	if h.opts.Forecasts == nil {
		respondError(w, storageDisabled("预测"))
		return
	}

	var req ForecastImportRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	table := forecast.NewTable()
	for _, s := range req.Forecast {
		table.AddSeries(s.Slot, s.Points)
	}

	result, err := ImportForecast(r.Context(), h.opts.Forecasts, table)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存预测失败"))
		return
	}

	logger.WithFields(map[string]interface{}{
		"slots":  result.Slots,
		"points": result.Points,
	}).Info().Msg("预测已导入")
	respondJSON(w, http.StatusOK, result)
}
