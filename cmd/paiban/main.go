// 排班命令行工具
// 对 JSON 文件中的排班进行评分、解释、优化，或根据预测生成班次

package main

import (
	"context"
	"os"

	"github.com/hussen-mac/employee-scheduling/internal/config"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
	"github.com/spf13/cobra"
)

// App 命令共享的依赖
type App struct {
	cfg *config.Config
	ctx context.Context
}

var (
	configPath string
	logLevel   string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "paiban",
		Short:         "员工排班评分与优化工具",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML 配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别，覆盖配置")

	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(libraryCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// initApp 加载配置并初始化日志，日志写到 stderr 以免污染输出
func initApp(ctx context.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cfg.App.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.Output = "stderr"
	logger.Init(logCfg)

	app = &App{cfg: cfg, ctx: ctx}
	return nil
}
