// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/hussen-mac/employee-scheduling/pkg/planner"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/optimizer"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	// ConfigFile 可选的 YAML 配置文件，文件中出现的字段覆盖环境变量
	ConfigFile string `env:"CONFIG_FILE" yaml:"-"`

	App       AppConfig       `yaml:"app" envPrefix:"APP_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DB_"`
	API       APIConfig       `yaml:"api" envPrefix:"API_"`
	Scheduler SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
	Planner   PlannerConfig   `yaml:"planner" envPrefix:"PLANNER_"`
	Metrics   MetricsConfig   `yaml:"metrics" envPrefix:"METRICS_"`

	// Constraints 约束参数（权重、阈值、开关），只能来自配置文件
	Constraints map[string]interface{} `yaml:"constraints"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `yaml:"name" env:"NAME" envDefault:"paiban" validate:"required"`
	Env       string `yaml:"env" env:"ENV" envDefault:"development" validate:"oneof=development test production"`
	Port      int    `yaml:"port" env:"PORT" envDefault:"7012" validate:"gt=0,lte=65535"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" envDefault:"console" validate:"oneof=json console"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED" envDefault:"false"`
	Host            string        `yaml:"host" env:"HOST" envDefault:"localhost"`
	Port            int           `yaml:"port" env:"PORT" envDefault:"5432"`
	Name            string        `yaml:"name" env:"NAME" envDefault:"paiban"`
	User            string        `yaml:"user" env:"USER" envDefault:"paiban"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS" envDefault:"25" validate:"gte=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"AUTO_MIGRATE" envDefault:"false"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"60s"`
	MaxBodySize int64         `yaml:"max_body_size" env:"MAX_BODY_SIZE" envDefault:"10485760" validate:"gt=0"`
}

// SchedulerConfig 求解器配置
type SchedulerConfig struct {
	TimeLimit          time.Duration `yaml:"time_limit" env:"TIMEOUT" envDefault:"30s"`
	MaxSteps           int           `yaml:"max_steps" env:"MAX_STEPS" envDefault:"20000" validate:"gte=0"`
	Seed               int64         `yaml:"seed" env:"SEED" envDefault:"37"`
	MoveSampleBreadth  int           `yaml:"move_sample_breadth" env:"MOVE_SAMPLE_BREADTH" envDefault:"32" validate:"gte=1"`
	SwapProbability    float64       `yaml:"swap_probability" env:"SWAP_PROBABILITY" envDefault:"0.3" validate:"gte=0,lte=1"`
	InitialTemperature float64       `yaml:"initial_temperature" env:"INITIAL_TEMPERATURE" envDefault:"2.0" validate:"gte=0"`
	CoolingRate        float64       `yaml:"cooling_rate" env:"COOLING_RATE" envDefault:"0.999" validate:"gt=0,lte=1"`
	Patience           int           `yaml:"patience" env:"PATIENCE" envDefault:"3000" validate:"gte=0"`
	TabuSize           int           `yaml:"tabu_size" env:"TABU_SIZE" envDefault:"50" validate:"gte=0"`
	ParallelWorkers    int           `yaml:"parallel_workers" env:"PARALLEL_WORKERS" envDefault:"4" validate:"gte=1,lte=256"`
	AllowUnassigned    bool          `yaml:"allow_unassigned" env:"ALLOW_UNASSIGNED" envDefault:"false"`
}

// OptimizerConfig 转换为优化器配置
func (c SchedulerConfig) OptimizerConfig() optimizer.Config {
	return optimizer.Config{
		TimeLimit:          c.TimeLimit,
		MaxSteps:           c.MaxSteps,
		Seed:               c.Seed,
		MoveSampleBreadth:  c.MoveSampleBreadth,
		SwapProbability:    c.SwapProbability,
		InitialTemperature: c.InitialTemperature,
		CoolingRate:        c.CoolingRate,
		Patience:           c.Patience,
		TabuSize:           c.TabuSize,
		ParallelWorkers:    c.ParallelWorkers,
		AllowUnassigned:    c.AllowUnassigned,
	}
}

// PlannerConfig 班次生成配置
type PlannerConfig struct {
	StartDate     string             `yaml:"start_date" env:"START_DATE" validate:"omitempty,datetime=2006-01-02"`
	Days          int                `yaml:"days" env:"DAYS" envDefault:"14" validate:"gte=1,lte=366"`
	ShiftLength   time.Duration      `yaml:"shift_length" env:"SHIFT_LENGTH" envDefault:"8h"`
	Seed          int64              `yaml:"seed" env:"SEED" envDefault:"37"`
	Timezone      string             `yaml:"timezone" env:"TIMEZONE" envDefault:"UTC"`
	OptionalSkill string             `yaml:"optional_skill" env:"OPTIONAL_SKILL" envDefault:"conduite"`
	Slots         []planner.Slot     `yaml:"slots" validate:"dive"`
	Locations     []planner.Location `yaml:"locations" validate:"dive"`
}

// PlannerConfig 转换为班次生成配置，未配置的时段与地点使用默认值
func (c PlannerConfig) PlannerConfig() (planner.Config, error) {
	cfg := planner.DefaultConfig()
	cfg.StartDate = c.StartDate
	cfg.Days = c.Days
	cfg.ShiftLength = c.ShiftLength
	cfg.Seed = c.Seed
	cfg.OptionalSkill = c.OptionalSkill
	if len(c.Slots) > 0 {
		cfg.Slots = c.Slots
	}
	if len(c.Locations) > 0 {
		cfg.Locations = c.Locations
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("加载时区失败: %w", err)
	}
	cfg.Location = loc
	return cfg, nil
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED" envDefault:"true"`
	Path    string `yaml:"path" env:"PATH" envDefault:"/metrics"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load 从环境变量加载配置，设置了 CONFIG_FILE 时再叠加 YAML 文件
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.ConfigFile != "" {
		if err := cfg.overlayFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath 使用默认值与环境变量，再叠加指定的 YAML 文件
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile 读取 YAML 文件覆盖已有字段
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	c.ConfigFile = path
	return nil
}

// Validate 校验配置
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Planner.Timezone); err != nil {
		return fmt.Errorf("无效的时区 %q: %w", cfg.Planner.Timezone, err)
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
