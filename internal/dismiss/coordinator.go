package dismiss

import (
	"context"
	"sync"

	"waguri-alarm/internal/challenge"

	"go.uber.org/zap"
)

// SessionStopper 响铃会话的停止动作
type SessionStopper interface {
	Stop(ctx context.Context, sessionID string)
}

// Coordinator 解除协调器
// 响铃会话与挑战运行器之间唯一的同步点：
// 订阅运行器的完成信号，收到后停止会话并把控制权交还界面
type Coordinator struct {
	stopper SessionStopper
	logger  *zap.Logger
}

// NewCoordinator 创建解除协调器
func NewCoordinator(stopper SessionStopper, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		stopper: stopper,
		logger:  logger,
	}
}

// Bind 绑定一个运行器和一个会话
// 返回的通道在会话停止后关闭（界面据此关闭挑战面板）
// 幂等：重复的完成信号不会导致重复停止
func (c *Coordinator) Bind(ctx context.Context, runner challenge.Runner, sessionID string) <-chan struct{} {
	dismissed := make(chan struct{})
	var once sync.Once

	stop := func(reason string) {
		once.Do(func() {
			c.stopper.Stop(ctx, sessionID)
			c.logger.Info("Ring session dismissed",
				zap.String("session_id", sessionID),
				zap.String("reason", reason),
			)
			close(dismissed)
		})
	}

	go func() {
		select {
		case <-runner.Done():
			stop("challenge_completed")
		case <-ctx.Done():
			// 绑定被取消：会话照常停止，确保资源不泄漏
			stop("context_cancelled")
		}
	}()

	return dismissed
}
