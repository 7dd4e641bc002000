package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/stats"
	"github.com/shopspring/decimal"
)

func TestHistogram_Buckets(t *testing.T) {
	r := NewRegistry()
	h := r.NewHistogram("latency", "延迟", nil, []float64{1, 5})
	h.Observe(0.5)
	h.Observe(1)
	h.Observe(3)
	h.Observe(10)

	if got := h.Count(); got != 4 {
		t.Fatalf("Count() = %d, want 4", got)
	}

	var sb strings.Builder
	r.Expose(&sb)
	out := sb.String()

	for _, want := range []string{
		`latency_bucket{le="1"} 2`,
		`latency_bucket{le="5"} 3`,
		`latency_bucket{le="+Inf"} 4`,
		`latency_sum 14.5`,
		`latency_count 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("输出缺少 %q:\n%s", want, out)
		}
	}
}

func TestCounter_Labels(t *testing.T) {
	r := NewRegistry()
	c := r.NewCounter("requests", "请求", []string{"method", "status"})
	c.Inc("GET", "200")
	c.Add(2, "GET", "200")
	c.Inc("POST", "")

	if got := c.Value("GET", "200"); got != 3 {
		t.Errorf("Value = %v, want 3", got)
	}

	var sb strings.Builder
	r.Expose(&sb)
	out := sb.String()
	if !strings.Contains(out, `requests{method="GET",status="200"} 3`) {
		t.Errorf("缺少 GET 样本:\n%s", out)
	}
	if !strings.Contains(out, `requests{method="POST",status=""} 1`) {
		t.Errorf("缺少 POST 样本:\n%s", out)
	}
}

func TestSolverObserver(t *testing.T) {
	r := NewRegistry()
	o := NewSolverObserver(r)

	amy := model.NewEmployee("amy")
	start := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	s := model.NewSchedule([]*model.Employee{amy}, []*model.Shift{
		{ID: "0", Start: start, End: start.Add(8 * time.Hour), Employee: amy},
		{ID: "1", Start: start.Add(24 * time.Hour), End: start.Add(32 * time.Hour)},
	})

	o.SolveStarted()
	o.BestImproved("run", 1, score.Of(-1, 0))
	o.BestImproved("run", 2, score.Of(0, 0))
	o.SolveComplete(&scheduler.Result{
		RunID:    "run",
		Schedule: s,
		Score:    score.Of(-1, 25),
		State:    optimizer.StateConverged,
		Steps:    120,
		Duration: 2 * time.Second,
		Fairness: &stats.FairnessMetrics{Unfairness: decimal.NewFromFloat(1.5)},
	})
	o.ObserveMatches([]constraint.Match{
		{ConstraintType: constraint.TypeUnassignedShift, Category: constraint.CategoryHard},
		{ConstraintType: constraint.TypeUnassignedShift, Category: constraint.CategoryHard},
	})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"active", r.GetGauge(ActiveSolves).Value(), 0},
		{"improved", r.GetCounter(BestImprovedTotal).Value(), 2},
		{"solves", r.GetCounter(SolveTotal).Value("CONVERGED", "false"), 1},
		{"steps", r.GetCounter(SolveSteps).Value(), 120},
		{"hard", r.GetGauge(SolutionScore).Value("hard"), -1},
		{"soft", r.GetGauge(SolutionScore).Value("soft"), 25},
		{"unfairness", r.GetGauge(ScheduleUnfairness).Value(), 1.5},
		{"unassigned", r.GetGauge(ScheduleUnassignedShift).Value(), 1},
		{"matches", r.GetCounter(ConstraintMatchesTotal).Value("unassigned_shift", "hard"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestHandler(t *testing.T) {
	RecordRequestMetrics(http.MethodPost, "/api/v1/schedule/score", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `paiban_http_requests_total{method="POST",path="/api/v1/schedule/score",status="200"} 1`) {
		t.Errorf("缺少请求计数:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE paiban_solve_duration_seconds histogram") {
		t.Errorf("缺少求解直方图声明")
	}
}
