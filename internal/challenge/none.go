package challenge

import "go.uber.org/zap"

// NoneRunner 无挑战：用户显式确认一次即完成（没有自动完成）
type NoneRunner struct {
	completion
	logger *zap.Logger
}

// NewNoneRunner 创建无挑战运行器
func NewNoneRunner(logger *zap.Logger) *NoneRunner {
	return &NoneRunner{
		completion: newCompletion(),
		logger:     logger,
	}
}

// Confirm 用户确认解除
func (r *NoneRunner) Confirm() {
	r.complete()
}
