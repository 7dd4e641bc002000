package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hussen-mac/employee-scheduling/internal/database"
	"github.com/hussen-mac/employee-scheduling/internal/handler"
	"github.com/hussen-mac/employee-scheduling/internal/repository"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var (
		files     []string
		lastN     int
		employees string
		demo      string
		migrate   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "将员工与需求预测写入数据库",
		Long: `读取员工 JSON 与预测文件（格式同 plan 命令）并写入数据库，
供服务端在未携带数据的 /schedule/plan 请求中使用。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 && employees == "" && demo == "" {
				return fmt.Errorf("至少需要 --forecast、--employees 或 --demo 之一")
			}

			table, err := forecastFiles(files).load(lastN)
			if err != nil {
				return err
			}

			cfg, err := app.cfg.Planner.PlannerConfig()
			if err != nil {
				return err
			}
			if cfg.StartDate == "" {
				cfg.StartDate = planner.NextMonday(time.Now().In(cfg.Location))
			}
			staff, err := loadStaff(cfg, employees, demo)
			if err != nil {
				return err
			}

			db, err := database.New(&app.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := db.Migrate(app.ctx); err != nil {
					return err
				}
			}

			return runImport(app.ctx, importTarget{
				employees: repository.NewEmployeeRepository(db),
				forecasts: repository.NewForecastRepository(db, db),
			}, staff, table)
		},
	}

	cmd.Flags().StringSliceVarP(&files, "forecast", "f", nil, "预测文件，可重复")
	cmd.Flags().IntVar(&lastN, "last", 0, "CSV 只取最后 N 行，0 表示全部")
	cmd.Flags().StringVar(&employees, "employees", "", "员工 JSON 文件")
	cmd.Flags().StringVar(&demo, "demo", "", "写入演示员工：small 或 large")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "写入前初始化表结构")
	return cmd
}

// importTarget 导入目标存储
type importTarget struct {
	employees handler.EmployeeStore
	forecasts handler.ForecastStore
}

// runImport 依次写入员工与预测
func runImport(ctx context.Context, target importTarget, staff []*model.Employee, table *forecast.Table) error {
	if len(staff) > 0 {
		result, err := handler.ImportEmployees(ctx, target.employees, staff)
		if err != nil {
			return fmt.Errorf("导入员工失败: %w", err)
		}
		logger.Info().Int("employees", result.Employees).Int("availability", result.Availability).Msg("员工已导入")
	}

	if len(table.Slots()) > 0 {
		result, err := handler.ImportForecast(ctx, target.forecasts, table)
		if err != nil {
			return fmt.Errorf("导入预测失败: %w", err)
		}
		logger.Info().Int("slots", result.Slots).Int("points", result.Points).Msg("预测已导入")
	}
	return nil
}
