package challenge

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// ShakeThreshold 加速度模阈值（超过计为一次摇晃候选）
	ShakeThreshold = 12.0

	// ShakeDebounce 去抖间隔：两次计数之间的最小时间
	// 避免一次摇晃动作被重复计数
	ShakeDebounce = 500 * time.Millisecond

	// SensorFailOpenDelay 传感器缺失时的自动完成等待
	// 设备没有加速度计时不能把用户永远困住，宁可放行
	SensorFailOpenDelay = 2 * time.Second
)

// ShakeRunner 摇晃挑战：去抖计数达到要求次数即完成
// 状态：collecting → complete
type ShakeRunner struct {
	completion
	required int
	logger   *zap.Logger

	mu        sync.Mutex
	count     int
	lastShake time.Time
}

// NewShakeRunner 创建摇晃运行器
func NewShakeRunner(required int, logger *zap.Logger) *ShakeRunner {
	return &ShakeRunner{
		completion: newCompletion(),
		required:   required,
		logger:     logger,
	}
}

// HandleSample 处理一条加速度采样
// 模超过阈值且距上次计数超过去抖间隔才计为一次摇晃
func (r *ShakeRunner) HandleSample(x, y, z float64, at time.Time) {
	magnitude := math.Sqrt(x*x + y*y + z*z)
	if magnitude <= ShakeThreshold {
		return
	}

	r.mu.Lock()
	if !r.lastShake.IsZero() && at.Sub(r.lastShake) < ShakeDebounce {
		r.mu.Unlock()
		return
	}
	r.lastShake = at
	r.count++
	count := r.count
	r.mu.Unlock()

	if count >= r.required {
		r.complete()
	}
}

// Count 当前摇晃计数
func (r *ShakeRunner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Required 需要的摇晃次数
func (r *ShakeRunner) Required() int {
	return r.required
}

// SensorUnavailable 传感器不可用：短暂等待后自动完成（fail-open）
func (r *ShakeRunner) SensorUnavailable() {
	r.logger.Warn("Accelerometer not available, auto-completing shake challenge",
		zap.Duration("delay", SensorFailOpenDelay),
	)
	time.AfterFunc(SensorFailOpenDelay, r.complete)
}
