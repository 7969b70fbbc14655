package ring

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// AudioPlayer 闹钟级音频播放（区别于媒体/通知音量通道）
type AudioPlayer interface {
	// PlayLoop 循环播放指定音源，音源不可用时返回错误
	PlayLoop(source string) error
	Stop()
}

// Vibrator 重复震动
type Vibrator interface {
	// StartWaveform 以重复波形开始震动，pattern 为等待/震动交替时长
	StartWaveform(pattern []time.Duration)
	Cancel()
}

// Notification 响铃通知（高优先级、不可滑动清除、带全屏提示）
type Notification struct {
	SessionID  string
	AlarmID    int
	Title      string
	Label      string
	FullScreen bool // 锁屏时也把挑战界面拉到前台
	Ongoing    bool
}

// Notifier 持久通知展示
type Notifier interface {
	Show(n Notification) error
	Dismiss(sessionID string)
}

// WakeLock 唤醒锁
// 获取时必须给定上限时长，超时自动释放，防止未释放的锁无限耗电
type WakeLock interface {
	Acquire(bound time.Duration) error
	Release()
	Held() bool
}

// 默认震动波形：等待 0ms → 震动 1s → 停 1s，循环
var DefaultVibrationPattern = []time.Duration{0, time.Second, time.Second}

// ============================================
// 默认实现（无硬件环境下记录日志）
// ============================================

// LogAudioPlayer 日志音频播放器（默认实现）
type LogAudioPlayer struct {
	logger *zap.Logger
}

// NewLogAudioPlayer 创建日志音频播放器
func NewLogAudioPlayer(logger *zap.Logger) *LogAudioPlayer {
	return &LogAudioPlayer{logger: logger}
}

// PlayLoop 实现 AudioPlayer
func (p *LogAudioPlayer) PlayLoop(source string) error {
	p.logger.Info("Audio loop started",
		zap.String("source", source),
	)
	return nil
}

// Stop 实现 AudioPlayer
func (p *LogAudioPlayer) Stop() {
	p.logger.Info("Audio loop stopped")
}

// LogVibrator 日志震动器（默认实现）
type LogVibrator struct {
	logger *zap.Logger
}

// NewLogVibrator 创建日志震动器
func NewLogVibrator(logger *zap.Logger) *LogVibrator {
	return &LogVibrator{logger: logger}
}

// StartWaveform 实现 Vibrator
func (v *LogVibrator) StartWaveform(pattern []time.Duration) {
	v.logger.Info("Vibration started",
		zap.Int("pattern_len", len(pattern)),
	)
}

// Cancel 实现 Vibrator
func (v *LogVibrator) Cancel() {
	v.logger.Info("Vibration cancelled")
}

// LogNotifier 日志通知器（默认实现）
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Show 实现 Notifier
func (n *LogNotifier) Show(notification Notification) error {
	n.logger.Info("Notification shown",
		zap.String("session_id", notification.SessionID),
		zap.String("label", notification.Label),
		zap.Bool("full_screen", notification.FullScreen),
	)
	return nil
}

// Dismiss 实现 Notifier
func (n *LogNotifier) Dismiss(sessionID string) {
	n.logger.Info("Notification dismissed",
		zap.String("session_id", sessionID),
	)
}

// TimedWakeLock 带上限的唤醒锁（默认实现）
type TimedWakeLock struct {
	mu     sync.Mutex
	held   bool
	timer  *time.Timer
	logger *zap.Logger
}

// NewTimedWakeLock 创建唤醒锁
func NewTimedWakeLock(logger *zap.Logger) *TimedWakeLock {
	return &TimedWakeLock{logger: logger}
}

// Acquire 实现 WakeLock：到达上限自动释放
func (w *TimedWakeLock) Acquire(bound time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.held {
		return nil
	}
	w.held = true
	w.timer = time.AfterFunc(bound, func() {
		w.logger.Warn("Wake lock bound reached, auto-releasing")
		w.Release()
	})

	w.logger.Debug("Wake lock acquired",
		zap.Duration("bound", bound),
	)
	return nil
}

// Release 实现 WakeLock：重复释放是空操作
func (w *TimedWakeLock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.held {
		return
	}
	w.held = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.logger.Debug("Wake lock released")
}

// Held 实现 WakeLock
func (w *TimedWakeLock) Held() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held
}
