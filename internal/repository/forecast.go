package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
)

// ForecastRepository 需求预测仓储
// 表 shift_forecasts(slot, date, expected_shifts)
type ForecastRepository struct {
	db DB
	tx Transactor
}

// NewForecastRepository 创建预测仓储，tx 为空时逐条写入
func NewForecastRepository(db DB, tx Transactor) *ForecastRepository {
	return &ForecastRepository{db: db, tx: tx}
}

const upsertForecastQuery = `
	INSERT INTO shift_forecasts (slot, date, expected_shifts)
	VALUES ($1, $2, $3)
	ON CONFLICT (slot, date) DO UPDATE SET expected_shifts = EXCLUDED.expected_shifts
`

// SaveSeries 写入某时段的预测序列
func (r *ForecastRepository) SaveSeries(ctx context.Context, slot string, points []forecast.Point) error {
	if r.tx == nil {
		for _, p := range points {
			if _, err := r.db.ExecContext(ctx, upsertForecastQuery, slot, p.Date, clamp(p.Value)); err != nil {
				return fmt.Errorf("保存预测失败: %w", err)
			}
		}
		return nil
	}

	return r.tx.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertForecastQuery)
		if err != nil {
			return fmt.Errorf("准备语句失败: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, slot, p.Date, clamp(p.Value)); err != nil {
				return fmt.Errorf("保存预测失败: %w", err)
			}
		}
		return nil
	})
}

// Load 读取日期范围内的预测到内存表
func (r *ForecastRepository) Load(ctx context.Context, filter ListFilter) (*forecast.Table, error) {
	query := `
		SELECT slot, to_char(date, 'YYYY-MM-DD'), expected_shifts
		FROM shift_forecasts
		WHERE ($1 = '' OR date >= $1::date) AND ($2 = '' OR date <= $2::date)
		ORDER BY slot, date
	`

	rows, err := r.db.QueryContext(ctx, query, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("查询预测失败: %w", err)
	}
	defer rows.Close()

	table := forecast.NewTable()
	for rows.Next() {
		var slot, date string
		var value int
		if err := rows.Scan(&slot, &date, &value); err != nil {
			return nil, fmt.Errorf("扫描预测数据失败: %w", err)
		}
		table.Set(slot, date, value)
	}
	return table, rows.Err()
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
