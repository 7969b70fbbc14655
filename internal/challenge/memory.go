package challenge

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// MemoryGridCells 3×3 网格
	MemoryGridCells = 9

	// MemoryBaseLength 第一回合的序列长度，每回合加一
	MemoryBaseLength = 3

	// 展示阶段的高亮/间隔时长（界面按此节奏闪烁单元格）
	MemoryGlowDuration = 600 * time.Millisecond
	MemoryGapDuration  = 200 * time.Millisecond
)

// MemoryPhase 记忆挑战阶段
type MemoryPhase int

const (
	PhaseShowingPattern MemoryPhase = iota // 展示序列
	PhaseAwaitingInput                     // 等待用户复现
	PhaseComplete
)

// MemoryRunner 记忆挑战
// 状态：showing-pattern → awaiting-input →（回合推进或重试）→ complete
// 点错立即失败：丢弃本回合全部输入，同长度重新生成序列，回合不降级，重试不限次
type MemoryRunner struct {
	completion
	totalRounds int
	rng         *rand.Rand
	logger      *zap.Logger

	mu      sync.Mutex
	round   int // 1 起始
	pattern []int
	input   []int
	phase   MemoryPhase
}

// NewMemoryRunner 创建记忆运行器（第一回合序列长度为 3，进入展示阶段）
func NewMemoryRunner(totalRounds int, rng *rand.Rand, logger *zap.Logger) *MemoryRunner {
	r := &MemoryRunner{
		completion:  newCompletion(),
		totalRounds: totalRounds,
		rng:         newRNG(rng),
		logger:      logger,
		round:       1,
		phase:       PhaseShowingPattern,
	}
	r.pattern = r.generatePattern(r.patternLength())
	return r
}

// patternLength 当前回合的序列长度：3 + 回合 - 1
func (r *MemoryRunner) patternLength() int {
	return MemoryBaseLength + r.round - 1
}

func (r *MemoryRunner) generatePattern(length int) []int {
	pattern := make([]int, length)
	for i := range pattern {
		pattern[i] = r.rng.Intn(MemoryGridCells)
	}
	return pattern
}

// Phase 当前阶段
func (r *MemoryRunner) Phase() MemoryPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Round 当前回合（1 起始）
func (r *MemoryRunner) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// TotalRounds 配置的回合总数
func (r *MemoryRunner) TotalRounds() int {
	return r.totalRounds
}

// Pattern 当前序列（拷贝，界面展示用）
func (r *MemoryRunner) Pattern() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pattern := make([]int, len(r.pattern))
	copy(pattern, r.pattern)
	return pattern
}

// BeginInput 展示结束，切换到等待输入阶段（界面闪烁完序列后调用）
func (r *MemoryRunner) BeginInput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseShowingPattern {
		r.input = r.input[:0]
		r.phase = PhaseAwaitingInput
	}
}

// Tap 用户点击一个单元格（仅等待输入阶段有效）
// 逐位即时比对：点错丢弃全部输入、同长度重新生成序列并回到展示阶段；
// 完整复现后推进回合，最后一回合完成时恰好发出一次完成信号
func (r *MemoryRunner) Tap(index int) {
	r.mu.Lock()

	if r.phase != PhaseAwaitingInput || index < 0 || index >= MemoryGridCells {
		r.mu.Unlock()
		return
	}

	r.input = append(r.input, index)
	pos := len(r.input) - 1

	if r.pattern[pos] != index {
		// 点错：同回合同长度重来
		r.logger.Debug("Wrong memory tap, regenerating pattern",
			zap.Int("round", r.round),
			zap.Int("position", pos),
		)
		r.input = r.input[:0]
		r.pattern = r.generatePattern(r.patternLength())
		r.phase = PhaseShowingPattern
		r.mu.Unlock()
		return
	}

	if len(r.input) < len(r.pattern) {
		r.mu.Unlock()
		return
	}

	// 本回合完整复现
	if r.round >= r.totalRounds {
		r.phase = PhaseComplete
		r.mu.Unlock()
		r.complete()
		return
	}

	r.round++
	r.input = r.input[:0]
	r.pattern = r.generatePattern(r.patternLength())
	r.phase = PhaseShowingPattern
	r.mu.Unlock()
}
