// Package forecast 提供按时段、日期查询的班次需求预测
package forecast

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"sync"
)

// Oracle 需求预测接口
// 返回某时段某日期预计需要的班次数，未知时返回 0
type Oracle interface {
	ExpectedShifts(slot, date string) int
}

// Point 单日预测值
type Point struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// Table 内存预测表
type Table struct {
	mu     sync.RWMutex
	values map[string]map[string]int
}

// NewTable 创建空预测表
func NewTable() *Table {
	return &Table{values: make(map[string]map[string]int)}
}

// Set 设置预测值，负数按 0 处理
func (t *Table) Set(slot, date string, value int) {
	if value < 0 {
		value = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	byDate, ok := t.values[slot]
	if !ok {
		byDate = make(map[string]int)
		t.values[slot] = byDate
	}
	byDate[date] = value
}

// AddSeries 批量设置某时段的预测值
func (t *Table) AddSeries(slot string, points []Point) {
	for _, p := range points {
		t.Set(slot, p.Date, p.Value)
	}
}

// ExpectedShifts 实现 Oracle
func (t *Table) ExpectedShifts(slot, date string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[slot][date]
}

// Slots 返回所有时段
func (t *Table) Slots() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	slots := make([]string, 0, len(t.values))
	for s := range t.values {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}

// Series 返回某时段按日期排序的预测值
func (t *Table) Series(slot string) []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	byDate := t.values[slot]
	points := make([]Point, 0, len(byDate))
	for d, v := range byDate {
		points = append(points, Point{Date: d, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// ReadJSON 读取 {"6h-14h": [{"date": "...", "value": 3}, ...]} 格式的预测
func ReadJSON(r io.Reader) (*Table, error) {
	var payload map[string][]Point
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析预测JSON失败: %w", err)
	}
	t := NewTable()
	for slot, points := range payload {
		t.AddSeries(slot, points)
	}
	return t, nil
}

// ReadCSV 读取带 ds,yhat 列的预测文件，只保留最后 lastN 行（lastN <= 0 表示全部）
// yhat 向零取整
func (t *Table) ReadCSV(slot string, r io.Reader, lastN int) error {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("读取预测CSV失败: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	dsCol, yhatCol := -1, -1
	for i, name := range records[0] {
		switch name {
		case "ds":
			dsCol = i
		case "yhat":
			yhatCol = i
		}
	}
	if dsCol < 0 || yhatCol < 0 {
		return fmt.Errorf("预测CSV缺少 ds 或 yhat 列")
	}

	rows := records[1:]
	if lastN > 0 && len(rows) > lastN {
		rows = rows[len(rows)-lastN:]
	}
	for _, row := range rows {
		v, err := strconv.ParseFloat(row[yhatCol], 64)
		if err != nil {
			return fmt.Errorf("解析 yhat 失败: %w", err)
		}
		date := row[dsCol]
		if len(date) > 10 {
			date = date[:10]
		}
		t.Set(slot, date, int(math.Trunc(v)))
	}
	return nil
}
