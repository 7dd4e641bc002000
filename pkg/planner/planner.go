// Package planner 根据需求预测生成待排班的班次
package planner

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/hussen-mac/employee-scheduling/pkg/forecast"
	"github.com/hussen-mac/employee-scheduling/pkg/model"
	"github.com/teambition/rrule-go"
)

// 时段标签
const (
	SlotMorning   = "6h-14h"
	SlotAfternoon = "14h-23h"
	SlotNight     = "23h-5h"
)

// Slot 班次时段
type Slot struct {
	Label       string `json:"label" yaml:"label"`
	StartHour   int    `json:"start_hour" yaml:"start_hour" validate:"gte=0,lte=23"`
	StartMinute int    `json:"start_minute" yaml:"start_minute" validate:"gte=0,lte=59"`
}

// Location 工作地点及其技能要求
type Location struct {
	Name          string `json:"name" yaml:"name" validate:"required"`
	RequiredSkill string `json:"required_skill" yaml:"required_skill"`
}

// Config 生成配置
type Config struct {
	StartDate     string         `json:"start_date" yaml:"start_date"` // 为空时取下一个周一
	Days          int            `json:"days" yaml:"days" validate:"gte=1,lte=366"`
	ShiftLength   time.Duration  `json:"shift_length" yaml:"shift_length"`
	Slots         []Slot         `json:"slots" yaml:"slots" validate:"dive"`
	Locations     []Location     `json:"locations" yaml:"locations" validate:"dive"`
	OptionalSkill string         `json:"optional_skill" yaml:"optional_skill"`
	Seed          int64          `json:"seed" yaml:"seed"`
	Location      *time.Location `json:"-" yaml:"-"`
}

// DefaultConfig 默认配置：两周，三个 8 小时时段，四种车厢
func DefaultConfig() Config {
	return Config{
		Days:        14,
		ShiftLength: 8 * time.Hour,
		Slots: []Slot{
			{Label: SlotMorning, StartHour: 6},
			{Label: SlotAfternoon, StartHour: 14},
			{Label: SlotNight, StartHour: 23},
		},
		Locations: []Location{
			{Name: "affaire", RequiredSkill: "Expert"},
			{Name: "première_classe", RequiredSkill: "Expert"},
			{Name: "mono_space", RequiredSkill: "Beginner"},
			{Name: "confort", RequiredSkill: "Intermediate"},
		},
		OptionalSkill: "conduite",
		Seed:          37,
		Location:      time.UTC,
	}
}

// SlotLabel 按开始时刻归入时段
func SlotLabel(start time.Time) string {
	h := start.Hour()
	switch {
	case h >= 6 && h < 14:
		return SlotMorning
	case h >= 14 && h < 23:
		return SlotAfternoon
	default:
		return SlotNight
	}
}

// NextMonday 返回不早于 now 的第一个周一（日期）
func NextMonday(now time.Time) string {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	return model.DateOf(now.AddDate(0, 0, days))
}

// Days 按每日规则枚举排班日期
func Days(start time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, nil
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Count:   count,
	})
	if err != nil {
		return nil, fmt.Errorf("创建日期规则失败: %w", err)
	}
	return rule.All(), nil
}

// Build 根据预测生成排班（班次均未分配）
// 每个时段的预测班次数随机分配到各地点，每个时段使用同一种子重新初始化随机源
func Build(cfg Config, oracle forecast.Oracle, employees []*model.Employee) (*model.Schedule, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	startDate := cfg.StartDate
	if startDate == "" {
		startDate = NextMonday(time.Now().In(loc))
	}
	start, err := model.ParseDate(startDate, loc)
	if err != nil {
		return nil, fmt.Errorf("解析开始日期失败: %w", err)
	}
	if cfg.ShiftLength <= 0 {
		return nil, fmt.Errorf("班次时长必须为正: %s", cfg.ShiftLength)
	}

	days, err := Days(start, cfg.Days)
	if err != nil {
		return nil, err
	}

	var shifts []*model.Shift
	for _, day := range days {
		date := model.DateOf(day)
		for _, location := range cfg.Locations {
			for _, slot := range cfg.Slots {
				slotStart := time.Date(day.Year(), day.Month(), day.Day(), slot.StartHour, slot.StartMinute, 0, 0, loc)
				label := slot.Label
				if label == "" {
					label = SlotLabel(slotStart)
				}

				rng := rand.New(rand.NewSource(cfg.Seed))
				counts := distribute(oracle.ExpectedShifts(label, date), cfg.Locations, rng)
				for i := 0; i < counts[location.Name]; i++ {
					shifts = append(shifts, &model.Shift{
						Start:         slotStart,
						End:           slotStart.Add(cfg.ShiftLength),
						Location:      location.Name,
						RequiredSkill: location.RequiredSkill,
						OptionalSkill: cfg.OptionalSkill,
					})
				}
			}
		}
	}

	for i, sh := range shifts {
		sh.ID = strconv.Itoa(i)
	}
	return model.NewSchedule(employees, shifts), nil
}

// distribute 将 total 个班次逐个随机分配到地点
func distribute(total int, locations []Location, rng *rand.Rand) map[string]int {
	counts := make(map[string]int, len(locations))
	if len(locations) == 0 {
		return counts
	}
	for i := 0; i < total; i++ {
		counts[locations[rng.Intn(len(locations))].Name]++
	}
	return counts
}
