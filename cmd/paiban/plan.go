package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hussen-mac/employee-scheduling/internal/handler"
	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/spf13/cobra"
)

// forecastFiles 预测文件参数，CSV 文件写作 slot=path
type forecastFiles []string

// load 读取预测表；JSON 文件一次包含全部时段
func (files forecastFiles) load(lastN int) (*forecast.Table, error) {
	table := forecast.NewTable()
	for _, arg := range files {
		if strings.EqualFold(filepath.Ext(arg), ".json") {
			in, err := openInput(arg)
			if err != nil {
				return nil, err
			}
			t, err := forecast.ReadJSON(in)
			in.Close()
			if err != nil {
				return nil, err
			}
			for _, slot := range t.Slots() {
				table.AddSeries(slot, t.Series(slot))
			}
			continue
		}

		slot, path, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("CSV 预测需写作 slot=path: %s", arg)
		}
		in, err := openInput(path)
		if err != nil {
			return nil, err
		}
		err = table.ReadCSV(slot, in, lastN)
		in.Close()
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

func planCmd() *cobra.Command {
	var (
		files     []string
		lastN     int
		employees string
		demo      string
		startDate string
		days      int
		seed      int64
		optimize  bool
		output    string
		flags     optimizeFlags
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "根据需求预测生成班次",
		Long: `根据各时段的需求预测生成未分配的班次，并附带员工数据。
预测可以是 JSON 文件（{"6h-14h": [{"date": "2026-01-05", "value": 3}]}），
也可以是 slot=path 形式的 CSV 文件（ds,yhat 列）。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.cfg.Planner.PlannerConfig()
			if err != nil {
				return err
			}
			if startDate != "" {
				cfg.StartDate = startDate
			}
			if cfg.StartDate == "" {
				cfg.StartDate = planner.NextMonday(time.Now().In(cfg.Location))
			}
			if cmd.Flags().Changed("days") {
				cfg.Days = days
			}
			if cmd.Flags().Changed("plan-seed") {
				cfg.Seed = seed
			}

			table, err := forecastFiles(files).load(lastN)
			if err != nil {
				return err
			}

			staff, err := loadStaff(cfg, employees, demo)
			if err != nil {
				return err
			}

			s, err := planner.Build(cfg, table, staff)
			if err != nil {
				return err
			}

			if !optimize {
				sc, err := newEngine(nil).Score(s)
				if err != nil {
					return err
				}
				return writeJSON(output, handler.PlanResponse{
					Schedule: handler.FromModel(s),
					Score:    &handler.ScoreResponse{Score: sc, Display: sc.String(), Feasible: sc.IsFeasible()},
				})
			}

			resp, err := runOptimize(app.ctx, s, nil, flags.apply(cmd, app.cfg.Scheduler.OptimizerConfig()))
			if err != nil {
				return err
			}
			return writeJSON(output, handler.PlanResponse{Schedule: resp.Schedule, Result: resp})
		},
	}

	cmd.Flags().StringSliceVarP(&files, "forecast", "f", nil, "预测文件，可重复")
	cmd.Flags().IntVar(&lastN, "last", 0, "CSV 只读取最后 N 行")
	cmd.Flags().StringVar(&employees, "employees", "", "员工 JSON 文件")
	cmd.Flags().StringVar(&demo, "demo", "", "生成演示员工: small 或 large")
	cmd.Flags().StringVar(&startDate, "start", "", "开始日期 (YYYY-MM-DD)，默认下周一")
	cmd.Flags().IntVar(&days, "days", 14, "天数")
	cmd.Flags().Int64Var(&seed, "plan-seed", 37, "班次与演示数据的随机种子")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "生成后立即优化")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	flags.register(cmd)
	return cmd
}

// loadStaff 读取员工文件或生成演示员工
func loadStaff(cfg planner.Config, path, demo string) ([]*model.Employee, error) {
	if path != "" {
		var inputs []handler.EmployeeInput
		if err := readJSON(path, &inputs); err != nil {
			return nil, err
		}
		return handler.ToEmployees(inputs), nil
	}

	var demoCfg planner.DemoConfig
	switch demo {
	case "":
		return nil, nil
	case "small":
		demoCfg = planner.SmallDemo()
	case "large":
		demoCfg = planner.LargeDemo()
	default:
		return nil, fmt.Errorf("未知的演示规模: %s", demo)
	}
	demoCfg.Seed = cfg.Seed

	start, err := model.ParseDate(cfg.StartDate, cfg.Location)
	if err != nil {
		return nil, err
	}
	days, err := planner.Days(start, cfg.Days)
	if err != nil {
		return nil, err
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = model.DateOf(d)
	}
	return planner.DemoEmployees(demoCfg, dates), nil
}
