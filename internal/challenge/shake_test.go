package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func completed(r Runner) bool {
	select {
	case <-r.Done():
		return true
	default:
		return false
	}
}

func TestShakeRunner_CountsDebouncedShakes(t *testing.T) {
	r := NewShakeRunner(3, zap.NewNop())
	start := time.Now()

	// 三次间隔充分的强摇晃
	r.HandleSample(15, 0, 0, start)
	r.HandleSample(0, 15, 0, start.Add(600*time.Millisecond))
	assert.Equal(t, 2, r.Count())
	assert.False(t, completed(r))

	r.HandleSample(0, 0, 15, start.Add(1200*time.Millisecond))
	assert.Equal(t, 3, r.Count())
	assert.True(t, completed(r))
}

func TestShakeRunner_DebounceWindowCountsOnce(t *testing.T) {
	// 去抖窗口内的 N 条原始样本只计 1 次
	r := NewShakeRunner(5, zap.NewNop())
	start := time.Now()

	for i := 0; i < 10; i++ {
		r.HandleSample(20, 0, 0, start.Add(time.Duration(i)*40*time.Millisecond))
	}

	assert.Equal(t, 1, r.Count())
	assert.False(t, completed(r))
}

func TestShakeRunner_BelowThresholdIgnored(t *testing.T) {
	r := NewShakeRunner(1, zap.NewNop())
	start := time.Now()

	// 模为 √(4²+4²+4²) ≈ 6.9，低于阈值
	r.HandleSample(4, 4, 4, start)
	// 恰好等于阈值也不计数（要求严格大于）
	r.HandleSample(12, 0, 0, start.Add(time.Second))

	assert.Equal(t, 0, r.Count())
	assert.False(t, completed(r))
}

func TestShakeRunner_CompletesExactlyAtRequired(t *testing.T) {
	r := NewShakeRunner(5, zap.NewNop())
	start := time.Now()

	for i := 0; i < 4; i++ {
		r.HandleSample(15, 0, 0, start.Add(time.Duration(i)*time.Second))
		assert.False(t, completed(r))
	}

	r.HandleSample(15, 0, 0, start.Add(4*time.Second))
	assert.True(t, completed(r))
}

func TestShakeRunner_SensorUnavailableFailOpen(t *testing.T) {
	// 传感器缺失：短暂等待后自动完成，不能把用户困住
	r := NewShakeRunner(10, zap.NewNop())
	r.SensorUnavailable()

	assert.False(t, completed(r))

	select {
	case <-r.Done():
	case <-time.After(SensorFailOpenDelay + time.Second):
		t.Fatal("fail-open auto-complete did not fire")
	}
}

func TestShakeRunner_CompletionFiresOnce(t *testing.T) {
	r := NewShakeRunner(1, zap.NewNop())
	start := time.Now()

	// 达标后继续摇晃不会重复发信号（通道只关闭一次，多余样本无害）
	r.HandleSample(15, 0, 0, start)
	r.HandleSample(15, 0, 0, start.Add(time.Second))
	r.HandleSample(15, 0, 0, start.Add(2*time.Second))

	assert.True(t, completed(r))
}
