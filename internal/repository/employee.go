package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/lib/pq"
)

// EmployeeRepository 员工仓储
// 表 employees(name, skills text[], deleted_at) 与 employee_availability(employee_name, date, type, reason)
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Save 创建或更新员工
func (r *EmployeeRepository) Save(ctx context.Context, emp *model.Employee) error {
	query := `
		INSERT INTO employees (name, skills, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (name) DO UPDATE SET skills = EXCLUDED.skills, updated_at = EXCLUDED.updated_at, deleted_at = NULL
	`

	if _, err := r.db.ExecContext(ctx, query, emp.Name, pq.Array(emp.Skills), time.Now()); err != nil {
		return fmt.Errorf("保存员工失败: %w", err)
	}
	return nil
}

// GetByName 根据姓名获取员工（不含可用性），不存在时返回 nil
func (r *EmployeeRepository) GetByName(ctx context.Context, name string) (*model.Employee, error) {
	query := `SELECT name, skills FROM employees WHERE name = $1 AND deleted_at IS NULL`

	emp, err := scanEmployee(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return emp, err
}

// Delete 软删除员工，员工不存在时返回 NOT_FOUND
func (r *EmployeeRepository) Delete(ctx context.Context, name string) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE name = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, name, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("员工", name)
	}
	return nil
}

// List 查询所有在职员工，按姓名排序
func (r *EmployeeRepository) List(ctx context.Context) ([]*model.Employee, error) {
	query := `SELECT name, skills FROM employees WHERE deleted_at IS NULL ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// SaveAvailability 写入可用性记录，同一员工同一天只保留最后一条
func (r *EmployeeRepository) SaveAvailability(ctx context.Context, a model.EmployeeAvailability) error {
	query := `
		INSERT INTO employee_availability (employee_name, date, type, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_name, date) DO UPDATE SET type = EXCLUDED.type, reason = EXCLUDED.reason
	`

	if _, err := r.db.ExecContext(ctx, query, a.EmployeeName, a.Date, a.Type, a.Reason); err != nil {
		return fmt.Errorf("保存可用性失败: %w", err)
	}
	return nil
}

// ListAvailability 查询日期范围内的可用性记录
func (r *EmployeeRepository) ListAvailability(ctx context.Context, filter ListFilter) ([]model.EmployeeAvailability, error) {
	query := `
		SELECT employee_name, to_char(date, 'YYYY-MM-DD'), type, COALESCE(reason, '')
		FROM employee_availability
		WHERE ($1 = '' OR date >= $1::date) AND ($2 = '' OR date <= $2::date)
		ORDER BY date, employee_name
	`

	rows, err := r.db.QueryContext(ctx, query, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("查询可用性失败: %w", err)
	}
	defer rows.Close()

	var records []model.EmployeeAvailability
	for rows.Next() {
		var a model.EmployeeAvailability
		if err := rows.Scan(&a.EmployeeName, &a.Date, &a.Type, &a.Reason); err != nil {
			return nil, fmt.Errorf("扫描可用性数据失败: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// LoadForRange 加载员工及其在日期范围内的可用性
func (r *EmployeeRepository) LoadForRange(ctx context.Context, startDate, endDate string) ([]*model.Employee, error) {
	employees, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	records, err := r.ListAvailability(ctx, DefaultListFilter().WithDateRange(startDate, endDate))
	if err != nil {
		return nil, err
	}

	return AttachAvailability(employees, records), nil
}

// AttachAvailability 将可用性记录合并到员工，未知员工的记录被忽略
// 返回按姓名排序的员工列表
func AttachAvailability(employees []*model.Employee, records []model.EmployeeAvailability) []*model.Employee {
	byName := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		byName[emp.Name] = emp
	}
	for _, a := range records {
		if emp, ok := byName[a.EmployeeName]; ok {
			emp.ApplyAvailability(a)
		}
	}

	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Name < employees[j].Name
	})
	return employees
}

// scanEmployee 扫描员工数据
func scanEmployee(row Scanner) (*model.Employee, error) {
	var name string
	var skills []string
	if err := row.Scan(&name, pq.Array(&skills)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("扫描员工数据失败: %w", err)
	}
	return model.NewEmployee(name, skills...), nil
}
