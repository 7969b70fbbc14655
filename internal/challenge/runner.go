package challenge

import (
	"math/rand"
	"sync"
	"time"

	"waguri-alarm/internal/models"

	"go.uber.org/zap"
)

// Runner 挑战运行器统一契约
// 根据挑战参数驱动一个交互状态机，满足条件时恰好发出一次完成信号
type Runner interface {
	// Done 完成信号通道（关闭恰好一次）
	Done() <-chan struct{}
}

// NewRunner 按挑战变体创建运行器（封闭集合，穷举分派）
func NewRunner(c models.Challenge, logger *zap.Logger) Runner {
	switch c.Kind {
	case models.ChallengeShake:
		return NewShakeRunner(c.ShakesRequired, logger)
	case models.ChallengeMath:
		return NewMathRunner(c.Difficulty, nil, logger)
	case models.ChallengeMemory:
		return NewMemoryRunner(c.NumRounds, nil, logger)
	default:
		return NewNoneRunner(logger)
	}
}

// completion 一次性完成信号
type completion struct {
	once sync.Once
	done chan struct{}
}

func newCompletion() completion {
	return completion{done: make(chan struct{})}
}

// complete 发出完成信号（至多一次）
func (c *completion) complete() {
	c.once.Do(func() { close(c.done) })
}

// Done 实现 Runner
func (c *completion) Done() <-chan struct{} {
	return c.done
}

// Completed 是否已完成
func (c *completion) Completed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func newRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
