package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"waguri-alarm/internal/models"

	"go.uber.org/zap"
)

// ErrExactTimerNotPermitted 精确定时权限未授予
// 产品承诺"准点响铃"，权限缺失时必须上抛给用户处理，不允许静默降级为非精确定时
var ErrExactTimerNotPermitted = errors.New("exact timer permission not granted")

// TriggerPublisher 触发载荷发布接口（定时器到点时调用）
type TriggerPublisher interface {
	PublishTrigger(ctx context.Context, payload models.TriggerPayload) error
}

// ExactTimerGate 精确定时权限检查
type ExactTimerGate interface {
	ExactTimerAllowed() bool
}

// GateFunc 函数式权限检查
type GateFunc func() bool

// ExactTimerAllowed 实现 ExactTimerGate
func (f GateFunc) ExactTimerAllowed() bool { return f() }

// AlwaysAllowed 默认权限检查（始终允许）
var AlwaysAllowed = GateFunc(func() bool { return true })

// Scheduler 闹钟调度器
// 把闹钟记录转换为按 ID 索引的一次性挂钟定时器；到点后发布扁平触发载荷
type Scheduler struct {
	publisher TriggerPublisher
	gate      ExactTimerGate
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[int]*time.Timer

	now func() time.Time // 便于测试注入
}

// NewScheduler 创建调度器
func NewScheduler(publisher TriggerPublisher, gate ExactTimerGate, logger *zap.Logger) *Scheduler {
	if gate == nil {
		gate = AlwaysAllowed
	}
	return &Scheduler{
		publisher: publisher,
		gate:      gate,
		logger:    logger,
		timers:    make(map[int]*time.Timer),
		now:       time.Now,
	}
}

// NextTriggerTime 计算下一次触发时刻：
// 本地时间今天 HH:MM:00.000；若该时刻不严格晚于 now，则顺延到明天
func NextTriggerTime(alarm models.Alarm, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), alarm.Hour, alarm.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Schedule 注册闹钟定时器（同一 ID 的旧定时器被替换）
func (s *Scheduler) Schedule(alarm models.Alarm) error {
	if !s.gate.ExactTimerAllowed() {
		return ErrExactTimerNotPermitted
	}

	now := s.now()
	triggerAt := NextTriggerTime(alarm, now)
	payload := models.NewTriggerPayload(alarm)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[alarm.ID]; ok {
		old.Stop()
	}

	s.timers[alarm.ID] = time.AfterFunc(triggerAt.Sub(now), func() {
		s.fire(alarm.ID, payload)
	})

	s.logger.Info("Scheduled alarm",
		zap.Int("alarm_id", alarm.ID),
		zap.Time("trigger_at", triggerAt),
	)

	return nil
}

// Cancel 取消闹钟定时器
// 取消不存在的定时器是空操作，不是错误
func (s *Scheduler) Cancel(alarmID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[alarmID]; ok {
		timer.Stop()
		delete(s.timers, alarmID)
		s.logger.Info("Cancelled alarm",
			zap.Int("alarm_id", alarmID),
		)
	}
}

// Pending 当前挂起的定时器数量
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop 停止全部定时器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// fire 定时器到点：发布触发载荷并移除定时器
// 发布是 fire-and-forget：失败只记日志，没有确认通道
func (s *Scheduler) fire(alarmID int, payload models.TriggerPayload) {
	s.mu.Lock()
	delete(s.timers, alarmID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.publisher.PublishTrigger(ctx, payload); err != nil {
		s.logger.Error("Failed to publish trigger",
			zap.Int("alarm_id", alarmID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Alarm fired",
		zap.Int("alarm_id", alarmID),
		zap.String("label", payload.Label),
		zap.String("challenge_type", payload.ChallengeType),
	)
}
