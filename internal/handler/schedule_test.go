package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hussen-mac/employee-scheduling/internal/constraints"
	"github.com/hussen-mac/employee-scheduling/internal/metrics"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/swap"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	opt := optimizer.DefaultConfig()
	opt.TimeLimit = 0
	opt.MaxSteps = 200
	opt.Patience = 100

	plan := planner.DefaultConfig()
	plan.StartDate = "2026-01-05"
	plan.Days = 2

	h, err := NewScheduleHandler(Options{
		Optimizer: opt,
		Planner:   plan,
		Observer:  metrics.NewSolverObserver(metrics.NewRegistry()),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func sampleSchedule() ScheduleRequest {
	start := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	return ScheduleRequest{
		ScheduleInput: ScheduleInput{
			Employees: []EmployeeInput{
				{Name: "amy", Skills: []string{"Expert"}, UnavailableDates: []string{"2026-01-06"}},
				{Name: "bob", Skills: []string{"Expert"}},
			},
			Shifts: []ShiftInput{
				{ID: "0", Start: start, End: start.Add(8 * time.Hour), Location: "affaire", RequiredSkill: "Expert", Employee: "amy"},
				{ID: "1", Start: start.Add(8 * time.Hour), End: start.Add(16 * time.Hour), Location: "affaire", RequiredSkill: "Expert"},
			},
		},
	}
}

type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields"`
}

func TestScheduleHandler_Score(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/schedule/score", sampleSchedule())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// 一个未分配班次
	assert.True(t, resp.Score.Hard.Equal(decimal.NewFromInt(-1)), "score = %s", resp.Display)
	assert.False(t, resp.Feasible)
}

func TestScheduleHandler_Explain(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/schedule/explain", sampleSchedule())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.HardMatches)
	var unassigned int
	for _, m := range resp.Matches {
		if m.ConstraintType == constraint.TypeUnassignedShift {
			unassigned++
		}
	}
	assert.Equal(t, 1, unassigned)
	assert.NotEmpty(t, resp.Summaries)
}

func TestScheduleHandler_InvalidSchedule(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		mutate func(*ScheduleRequest)
		status int
		code   string
	}{
		{
			name:   "结束早于开始",
			mutate: func(r *ScheduleRequest) { r.Shifts[0].End = r.Shifts[0].Start.Add(-time.Hour) },
			status: http.StatusBadRequest,
			code:   "INVALID_TIME_RANGE",
		},
		{
			name:   "未知员工",
			mutate: func(r *ScheduleRequest) { r.Shifts[1].Employee = "zed" },
			status: http.StatusBadRequest,
			code:   "UNKNOWN_EMPLOYEE",
		},
		{
			name:   "重复班次ID",
			mutate: func(r *ScheduleRequest) { r.Shifts[1].ID = "0" },
			status: http.StatusBadRequest,
			code:   "DUPLICATE_ID",
		},
		{
			name:   "缺少员工姓名",
			mutate: func(r *ScheduleRequest) { r.Employees[1].Name = "" },
			status: http.StatusBadRequest,
			code:   "VALIDATION_FAILED",
		},
		{
			name:   "日期格式错误",
			mutate: func(r *ScheduleRequest) { r.Employees[0].UnavailableDates = []string{"06/01/2026"} },
			status: http.StatusBadRequest,
			code:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleSchedule()
			tt.mutate(&req)

			for _, path := range []string{"/api/v1/schedule/score", "/api/v1/schedule/optimize"} {
				rec := do(t, router, http.MethodPost, path, req)
				require.Equal(t, tt.status, rec.Code, rec.Body.String())

				var body errorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body.Code)
			}
		})
	}
}

func TestScheduleHandler_BadJSON(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/schedule/score", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandler_Optimize(t *testing.T) {
	router := newTestRouter(t)

	seed := int64(7)
	req := OptimizeRequest{ScheduleRequest: sampleSchedule(), Options: &OptimizeOptions{Seed: &seed}}
	rec := do(t, router, http.MethodPost, "/api/v1/schedule/optimize", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.True(t, resp.Feasible, "score = %s", resp.Display)
	assert.Equal(t, 0, resp.Unassigned)
	require.Len(t, resp.Schedule.Shifts, 2)
	assert.NotEqual(t, resp.Schedule.Shifts[0].Employee, resp.Schedule.Shifts[1].Employee)
	assert.Contains(t, []optimizer.State{optimizer.StateConverged, optimizer.StateTimeExpired}, resp.State)
}

func TestScheduleHandler_OptimizeInfeasible(t *testing.T) {
	router := newTestRouter(t)

	// 只有一名员工，两个班次时间重叠
	req := sampleSchedule()
	req.Employees = req.Employees[1:]
	req.Shifts[0].Employee = ""
	req.Shifts[1].Start = req.Shifts[0].Start.Add(4 * time.Hour)

	rec := do(t, router, http.MethodPost, "/api/v1/schedule/optimize", OptimizeRequest{ScheduleRequest: req})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Feasible)
	require.NotNil(t, resp.Warning)
	assert.Equal(t, "NO_FEASIBLE_SOLUTION", string(resp.Warning.Code))

	// 可行结果不带警告
	rec = do(t, router, http.MethodPost, "/api/v1/schedule/optimize", OptimizeRequest{ScheduleRequest: sampleSchedule()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = OptimizeResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Feasible)
	assert.Nil(t, resp.Warning)
}

func TestScheduleHandler_Plan(t *testing.T) {
	router := newTestRouter(t)

	req := PlanRequest{
		Forecast: []ForecastSeries{
			{Slot: planner.SlotMorning, Points: []forecast.Point{{Date: "2026-01-05", Value: 3}}},
			{Slot: planner.SlotNight, Points: []forecast.Point{{Date: "2026-01-06", Value: 2}}},
		},
		Demo: "small",
	}
	rec := do(t, router, http.MethodPost, "/api/v1/schedule/plan", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Schedule.Shifts, 5)
	assert.Len(t, resp.Schedule.Employees, 47)
	require.NotNil(t, resp.Score)
	// 全部未分配
	assert.True(t, resp.Score.Score.Hard.Equal(decimal.NewFromInt(-5)), "score = %s", resp.Score.Display)

	req.Demo = "huge"
	rec = do(t, router, http.MethodPost, "/api/v1/schedule/plan", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandler_Recommend(t *testing.T) {
	router := newTestRouter(t)

	req := RecommendRequest{ScheduleRequest: sampleSchedule(), ShiftID: "1"}
	rec := do(t, router, http.MethodPost, "/api/v1/schedule/recommend", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Recommendations)
	// 未分配班次交给 bob 可消除硬约束违反
	assert.Equal(t, "bob", resp.Recommendations[0].Employee)
	assert.True(t, resp.Recommendations[0].Feasible)

	req.ShiftID = "9"
	rec = do(t, router, http.MethodPost, "/api/v1/schedule/recommend", req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleHandler_EvaluateSwap(t *testing.T) {
	router := newTestRouter(t)

	req := SwapRequest{ScheduleRequest: sampleSchedule(), Swap: swap.Request{ShiftID: "0", Employee: "bob"}}
	rec := do(t, router, http.MethodPost, "/api/v1/schedule/swap", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var eval swap.Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, swap.KindTakeOver, eval.Kind)
	assert.False(t, eval.Feasible)

	req.Swap = swap.Request{ShiftID: "0"}
	rec = do(t, router, http.MethodPost, "/api/v1/schedule/swap", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleHandler_Library(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/constraints/library", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp constraints.LibraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Library, 11)
}

func TestScheduleHandler_RunsDisabled(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/schedule/runs", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilter(t *testing.T) {
	filter, err := listFilter(url.Values{"limit": {"50"}, "offset": {"10"}, "start_date": {"2026-01-05"}})
	require.Nil(t, err)
	assert.Equal(t, 50, filter.Limit)
	assert.Equal(t, 10, filter.Offset)
	assert.Equal(t, "2026-01-05", filter.StartDate)

	filter, err = listFilter(url.Values{})
	require.Nil(t, err)
	assert.Equal(t, 20, filter.Limit)

	for _, q := range []url.Values{{"limit": {"0"}}, {"limit": {"101"}}, {"limit": {"x"}}, {"offset": {"-1"}}} {
		_, err := listFilter(q)
		require.NotNil(t, err, q.Encode())
		assert.Equal(t, "INVALID_INPUT", string(err.Code))
	}
}
