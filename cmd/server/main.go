// 排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hussen-mac/employee-scheduling/internal/config"
	"github.com/hussen-mac/employee-scheduling/internal/database"
	"github.com/hussen-mac/employee-scheduling/internal/handler"
	"github.com/hussen-mac/employee-scheduling/internal/metrics"
	"github.com/hussen-mac/employee-scheduling/internal/middleware"
	"github.com/hussen-mac/employee-scheduling/internal/repository"
	"github.com/hussen-mac/employee-scheduling/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.App.LogLevel
	logCfg.Format = cfg.App.LogFormat
	logger.Init(logCfg)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("排班引擎启动")

	plannerCfg, err := cfg.Planner.PlannerConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("班次生成配置无效")
	}

	opts := handler.Options{
		Optimizer:   cfg.Scheduler.OptimizerConfig(),
		Planner:     plannerCfg,
		Constraints: cfg.Constraints,
		MaxBodySize: cfg.API.MaxBodySize,
		Observer:    metrics.NewSolverObserver(nil),
	}

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("连接数据库失败")
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if cfg.IsProduction() {
				logger.Warn().Msg("生产环境启用了自动建表")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := db.Migrate(ctx)
			cancel()
			if err != nil {
				logger.Fatal().Err(err).Msg("初始化数据库失败")
			}
		}

		opts.Employees = repository.NewEmployeeRepository(db)
		opts.Forecasts = repository.NewForecastRepository(db, db)
		opts.Runs = repository.NewScheduleRepository(db, db)
	}

	scheduleHandler, err := handler.NewScheduleHandler(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("创建处理器失败")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging)

	// ========================================
	// 系统端点
	// ========================================

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]interface{}{"status": status, "service": cfg.App.Name})
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	if cfg.IsDevelopment() {
		r.Mount("/debug", chimw.Profiler())
	}

	// ========================================
	// API v1 端点
	// ========================================

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.API.Timeout))
		scheduleHandler.Routes(r)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.App.Port).Msg("HTTP 服务启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("服务器已关闭")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
