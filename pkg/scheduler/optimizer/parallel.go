package optimizer

import (
	"context"
	"strings"
	"sync"

	"github.com/hussen-mac/employee-scheduling/pkg/score"
	"github.com/hussen-mac/employee-scheduling/pkg/scheduler/constraint"
)

// ParallelEvaluator 并行评估器
// 工作协程只调用只读的 Session.Delta
type ParallelEvaluator struct {
	workers int
}

// NewParallelEvaluator 创建并行评估器
func NewParallelEvaluator(workers int) *ParallelEvaluator {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelEvaluator{workers: workers}
}

// EvaluationResult 评估结果
type EvaluationResult struct {
	Index int
	Move  Move
	Delta score.HardSoft
}

// EvaluateBatch 并行评估一批移动，结果按输入顺序返回
func (p *ParallelEvaluator) EvaluateBatch(ctx context.Context, sess *constraint.Session, moves []Move) []EvaluationResult {
	if len(moves) == 0 {
		return nil
	}

	results := make([]EvaluationResult, len(moves))

	// 少量移动直接串行评估
	if p.workers == 1 || len(moves) < 2*p.workers {
		for i, m := range moves {
			results[i] = EvaluationResult{Index: i, Move: m, Delta: sess.Delta(m.Changes())}
		}
		return results
	}

	jobChan := make(chan int, len(moves))
	for i := range moves {
		jobChan <- i
	}
	close(jobChan)

	// 启动工作协程，各自写入不同下标
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobChan {
				if ctx.Err() != nil {
					return
				}
				results[i] = EvaluationResult{Index: i, Move: moves[i], Delta: sess.Delta(moves[i].Changes())}
			}
		}()
	}
	wg.Wait()

	// 取消时丢弃未完成的部分
	if ctx.Err() != nil {
		done := results[:0]
		for _, r := range results {
			if r.Move != nil {
				done = append(done, r)
			}
		}
		return done
	}
	return results
}

// FindBest 找出分数变化最大的移动
// 平局时取班次ID最小者，再取员工名最小者
func (p *ParallelEvaluator) FindBest(results []EvaluationResult) *EvaluationResult {
	if len(results) == 0 {
		return nil
	}

	best := &results[0]
	for i := 1; i < len(results); i++ {
		if better(&results[i], best) {
			best = &results[i]
		}
	}
	return best
}

func better(a, b *EvaluationResult) bool {
	if c := a.Delta.Compare(b.Delta); c != 0 {
		return c > 0
	}
	aShift, aEmp := a.Move.Key()
	bShift, bEmp := b.Move.Key()
	if c := strings.Compare(aShift, bShift); c != 0 {
		return c < 0
	}
	return aEmp < bEmp
}
