// Package optimizer 提供排班优化算法
package optimizer

import (
	"time"
)

// State 求解状态
type State string

const (
	StateInitialized State = "INITIALIZED"
	StateSearching   State = "SEARCHING"
	StateTimeExpired State = "TIME_EXPIRED" // 达到时间或步数上限
	StateConverged   State = "CONVERGED"    // 连续无改进
	StateCancelled   State = "CANCELLED"
)

// Config 优化配置
type Config struct {
	TimeLimit          time.Duration `json:"time_limit" yaml:"time_limit"`                     // 最大运行时间，0 表示不限（三项上限均为 0 时使用默认时间）
	MaxSteps           int           `json:"max_steps" yaml:"max_steps"`                       // 最大步数，0 表示不限
	Seed               int64         `json:"seed" yaml:"seed"`                                 // 随机种子
	MoveSampleBreadth  int           `json:"move_sample_breadth" yaml:"move_sample_breadth"`   // 每步采样的候选移动数
	SwapProbability    float64       `json:"swap_probability" yaml:"swap_probability"`         // 生成交换移动的概率
	InitialTemperature float64       `json:"initial_temperature" yaml:"initial_temperature"`   // 模拟退火初始温度
	CoolingRate        float64       `json:"cooling_rate" yaml:"cooling_rate"`                 // 冷却速率
	Patience           int           `json:"patience" yaml:"patience"`                         // 连续无改进步数阈值，0 表示不限
	TabuSize           int           `json:"tabu_size" yaml:"tabu_size"`                       // 禁忌表大小
	ParallelWorkers    int           `json:"parallel_workers" yaml:"parallel_workers"`         // 并行评估协程数
	AllowUnassigned    bool          `json:"allow_unassigned" yaml:"allow_unassigned"`         // 是否允许取消分配
}

// DefaultConfig 默认优化配置
func DefaultConfig() Config {
	return Config{
		TimeLimit:          30 * time.Second,
		MaxSteps:           20000,
		Seed:               37,
		MoveSampleBreadth:  32,
		SwapProbability:    0.3,
		InitialTemperature: 2.0,
		CoolingRate:        0.999,
		Patience:           3000,
		TabuSize:           50,
		ParallelWorkers:    4,
		AllowUnassigned:    false,
	}
}

// normalize 用默认值补齐非法参数
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MoveSampleBreadth <= 0 {
		c.MoveSampleBreadth = def.MoveSampleBreadth
	}
	if c.SwapProbability < 0 || c.SwapProbability > 1 {
		c.SwapProbability = def.SwapProbability
	}
	if c.InitialTemperature < 0 {
		c.InitialTemperature = def.InitialTemperature
	}
	if c.CoolingRate <= 0 || c.CoolingRate > 1 {
		c.CoolingRate = def.CoolingRate
	}
	if c.TabuSize < 0 {
		c.TabuSize = 0
	}
	if c.ParallelWorkers <= 0 {
		c.ParallelWorkers = 1
	}
	// 至少保留一个终止条件
	if c.TimeLimit <= 0 && c.MaxSteps <= 0 && c.Patience <= 0 {
		c.TimeLimit = def.TimeLimit
	}
	return c
}
