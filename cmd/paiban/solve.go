package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hussen-mac/employee-scheduling/internal/constraints"
	"github.com/hussen-mac/employee-scheduling/internal/handler"
	"github.com/hussen-mac/employee-scheduling/pkg/errors"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"github.com/spf13/cobra"
)

// newEngine 创建引擎，请求中的约束参数覆盖配置文件
func newEngine(override map[string]interface{}) *scheduler.Engine {
	return scheduler.NewDefaultEngine(handler.MergeConstraints(app.cfg.Constraints, override))
}

func scoreCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "计算排班分数",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req handler.ScheduleRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}

			sc, err := newEngine(req.Constraints).Score(req.ToModel())
			if err != nil {
				return err
			}
			return writeJSON(output, handler.ScoreResponse{Score: sc, Display: sc.String(), Feasible: sc.IsFeasible()})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "排班 JSON 文件")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	return cmd
}

func explainCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "列出约束命中明细",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req handler.ScheduleRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}

			result, err := newEngine(req.Constraints).Evaluate(req.ToModel())
			if err != nil {
				return err
			}
			return writeJSON(output, handler.ExplainResponse{
				ScoreResponse: handler.ScoreResponse{Score: result.Score, Display: result.Score.String(), Feasible: result.Feasible},
				HardMatches:   result.HardMatches,
				SoftMatches:   result.SoftMatches,
				Summaries:     result.Summaries(),
				Matches:       result.Matches,
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "排班 JSON 文件")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	return cmd
}

// optimizeFlags 优化参数，未指定时使用配置
type optimizeFlags struct {
	timeLimit time.Duration
	maxSteps  int
	seed      int64
	workers   int
}

func (f *optimizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.timeLimit, "time-limit", 0, "时间上限，如 30s")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "最大步数")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "随机种子")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "并行评估协程数")
}

// apply 将显式设置的参数叠加到配置
func (f *optimizeFlags) apply(cmd *cobra.Command, cfg optimizer.Config) optimizer.Config {
	if cmd.Flags().Changed("time-limit") {
		cfg.TimeLimit = f.timeLimit
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = f.maxSteps
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = f.seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.ParallelWorkers = f.workers
	}
	return cfg
}

// runOptimize 运行优化，收到中断信号时提前结束并返回当前最优解
func runOptimize(ctx context.Context, s *model.Schedule, override map[string]interface{}, cfg optimizer.Config) (*handler.OptimizeResponse, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := newEngine(override).Optimize(ctx, s, cfg)
	if result == nil {
		return nil, err
	}
	if err != nil {
		if !errors.Is(err, errors.CodeSolverCancelled) {
			return nil, err
		}
		logger.Warn().Str("run_id", result.RunID).Msg("优化被中断，输出当前最优解")
	}
	return handler.NewOptimizeResponse(result), nil
}

func solveCmd() *cobra.Command {
	var (
		input, output string
		flags         optimizeFlags
	)

	cmd := &cobra.Command{
		Use:     "solve",
		Aliases: []string{"optimize"},
		Short:   "优化排班",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req handler.OptimizeRequest
			if err := readJSON(input, &req); err != nil {
				return err
			}

			cfg := req.Options.Apply(app.cfg.Scheduler.OptimizerConfig())
			cfg = flags.apply(cmd, cfg)

			resp, err := runOptimize(app.ctx, req.ToModel(), req.Constraints, cfg)
			if err != nil {
				return err
			}
			logger.Info().
				Str("score", resp.Display).
				Bool("feasible", resp.Feasible).
				Int("steps", resp.Steps).
				Str("state", string(resp.State)).
				Msg("优化完成")
			return writeJSON(output, resp)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "排班 JSON 文件")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	flags.register(cmd)
	return cmd
}

func libraryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "列出支持的约束及参数",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON("", constraints.LibraryResponse{Library: constraints.GetLibrary()})
		},
	}
}
