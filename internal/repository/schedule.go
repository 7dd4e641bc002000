package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/shopspring/decimal"
)

// ScheduleRun 一次优化运行的记录
type ScheduleRun struct {
	ID              uuid.UUID       `json:"id"`
	State           string          `json:"state"`
	HardScore       decimal.Decimal `json:"hard_score"`
	SoftScore       decimal.Decimal `json:"soft_score"`
	Feasible        bool            `json:"feasible"`
	Steps           int             `json:"steps"`
	BestStep        int             `json:"best_step"`
	DurationMS      int64           `json:"duration_ms"`
	ShiftCount      int             `json:"shift_count"`
	UnassignedCount int             `json:"unassigned_count"`
	StartDate       string          `json:"start_date,omitempty"`
	EndDate         string          `json:"end_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ScheduleAssignment 排班分配记录
type ScheduleAssignment struct {
	RunID        uuid.UUID `json:"run_id"`
	ShiftID      string    `json:"shift_id"`
	EmployeeName string    `json:"employee_name"` // 空表示未分配
	Location     string    `json:"location"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// NewScheduleRun 由优化结果构造运行记录与分配记录
func NewScheduleRun(result *scheduler.Result) (*ScheduleRun, []*ScheduleAssignment, error) {
	id, err := uuid.Parse(result.RunID)
	if err != nil {
		return nil, nil, fmt.Errorf("无效的运行ID %q: %w", result.RunID, err)
	}

	run := &ScheduleRun{
		ID:         id,
		State:      string(result.State),
		HardScore:  result.Score.Hard,
		SoftScore:  result.Score.Soft,
		Feasible:   result.Feasible,
		Steps:      result.Steps,
		BestStep:   result.BestStep,
		DurationMS: result.Duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}

	var assignments []*ScheduleAssignment
	if s := result.Schedule; s != nil {
		run.ShiftCount = len(s.Shifts)
		run.UnassignedCount = s.UnassignedCount()
		for _, sh := range s.Shifts {
			date := sh.StartDate()
			if run.StartDate == "" || date < run.StartDate {
				run.StartDate = date
			}
			if date > run.EndDate {
				run.EndDate = date
			}
			assignments = append(assignments, &ScheduleAssignment{
				RunID:        id,
				ShiftID:      sh.ID,
				EmployeeName: sh.EmployeeName(),
				Location:     sh.Location,
				StartTime:    sh.Start,
				EndTime:      sh.End,
			})
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].StartTime.Before(assignments[j].StartTime) ||
			(assignments[i].StartTime.Equal(assignments[j].StartTime) && assignments[i].ShiftID < assignments[j].ShiftID)
	})

	return run, assignments, nil
}

// ScheduleRepository 优化运行仓储
type ScheduleRepository struct {
	db DB
	tx Transactor
}

// NewScheduleRepository 创建运行仓储
func NewScheduleRepository(db DB, tx Transactor) *ScheduleRepository {
	return &ScheduleRepository{db: db, tx: tx}
}

// Save 在一个事务中写入运行记录及其分配
func (r *ScheduleRepository) Save(ctx context.Context, run *ScheduleRun, assignments []*ScheduleAssignment) error {
	return r.tx.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO schedule_runs (
				id, state, hard_score, soft_score, feasible, steps, best_step,
				duration_ms, shift_count, unassigned_count, start_date, end_date, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::date, NULLIF($12, '')::date, $13)
		`
		_, err := tx.ExecContext(ctx, query,
			run.ID, run.State, run.HardScore, run.SoftScore, run.Feasible, run.Steps, run.BestStep,
			run.DurationMS, run.ShiftCount, run.UnassignedCount, run.StartDate, run.EndDate, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("创建运行记录失败: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO schedule_assignments (run_id, shift_id, employee_name, location, start_time, end_time)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		`)
		if err != nil {
			return fmt.Errorf("准备语句失败: %w", err)
		}
		defer stmt.Close()

		for _, a := range assignments {
			if _, err := stmt.ExecContext(ctx, run.ID, a.ShiftID, a.EmployeeName, a.Location, a.StartTime, a.EndTime); err != nil {
				return fmt.Errorf("创建分配记录失败: %w", err)
			}
		}
		return nil
	})
}

const runColumns = `
	id, state, hard_score, soft_score, feasible, steps, best_step, duration_ms,
	shift_count, unassigned_count,
	COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''), COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
	created_at
`

// GetByID 根据ID获取运行记录，不存在时返回 nil
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleRun, error) {
	query := `SELECT ` + runColumns + ` FROM schedule_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// List 查询运行记录，按创建时间倒序
func (r *ScheduleRepository) List(ctx context.Context, filter ListFilter) ([]*ScheduleRun, error) {
	query := `SELECT ` + runColumns + `
		FROM schedule_runs
		WHERE ($1 = '' OR end_date >= $1::date) AND ($2 = '' OR start_date <= $2::date)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, filter.StartDate, filter.EndDate, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	defer rows.Close()

	var runs []*ScheduleRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetAssignments 获取运行的分配记录
func (r *ScheduleRepository) GetAssignments(ctx context.Context, runID uuid.UUID) ([]*ScheduleAssignment, error) {
	query := `
		SELECT run_id, shift_id, COALESCE(employee_name, ''), location, start_time, end_time
		FROM schedule_assignments
		WHERE run_id = $1
		ORDER BY start_time, shift_id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("查询分配记录失败: %w", err)
	}
	defer rows.Close()

	var assignments []*ScheduleAssignment
	for rows.Next() {
		a := &ScheduleAssignment{}
		if err := rows.Scan(&a.RunID, &a.ShiftID, &a.EmployeeName, &a.Location, &a.StartTime, &a.EndTime); err != nil {
			return nil, fmt.Errorf("扫描分配数据失败: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// scanRun 扫描运行记录
func scanRun(row Scanner) (*ScheduleRun, error) {
	run := &ScheduleRun{}
	err := row.Scan(
		&run.ID, &run.State, &run.HardScore, &run.SoftScore, &run.Feasible, &run.Steps, &run.BestStep,
		&run.DurationMS, &run.ShiftCount, &run.UnassignedCount, &run.StartDate, &run.EndDate, &run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("扫描运行数据失败: %w", err)
	}
	return run, nil
}
