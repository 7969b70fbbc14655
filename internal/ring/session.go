package ring

import (
	"context"
	"sync"
	"time"

	"waguri-alarm/internal/config"
	"waguri-alarm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session 响铃会话
// 独立于任何界面存活，直到被显式停止
type Session struct {
	ID        string
	AlarmID   int
	Label     string
	Challenge models.Challenge
	StartedAt time.Time

	wakeLock WakeLock
	stopOnce sync.Once
}

// Manager 响铃会话管理器
// 对外只暴露一个可触发动作：Stop
type Manager struct {
	config   *config.Config
	state    *StateManager
	audio    AudioPlayer
	vibrator Vibrator
	notifier Notifier
	logger   *zap.Logger

	// 每个会话独立持锁，便于逐会话释放
	newWakeLock func() WakeLock

	// 会话注册完成后的回调（挑战运行器在此挂载）
	onStart func(*Session)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager 创建会话管理器
func NewManager(
	cfg *config.Config,
	state *StateManager,
	audio AudioPlayer,
	vibrator Vibrator,
	notifier Notifier,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		config:      cfg,
		state:       state,
		audio:       audio,
		vibrator:    vibrator,
		notifier:    notifier,
		logger:      logger,
		newWakeLock: func() WakeLock { return NewTimedWakeLock(logger) },
		sessions:    make(map[string]*Session),
	}
}

// SetOnStart 注册会话启动回调（在启动任何会话之前调用一次）
func (m *Manager) SetOnStart(fn func(*Session)) {
	m.onStart = fn
}

// StartSession 启动响铃会话（实现 trigger.SessionStarter）
// 从扁平载荷解码挑战；获取带上限的唤醒锁；展示全屏通知；
// 按回退链启动循环音频；启动重复震动；状态镜像到 Redis
func (m *Manager) StartSession(ctx context.Context, payload models.TriggerPayload) (err error) {
	session := &Session{
		ID:        uuid.New().String(),
		AlarmID:   payload.AlarmID,
		Label:     payload.Label,
		Challenge: payload.Challenge(),
		StartedAt: time.Now(),
		wakeLock:  m.newWakeLock(),
	}

	bound := time.Duration(m.config.Ring.WakeLockTimeout) * time.Second
	if err := session.wakeLock.Acquire(bound); err != nil {
		// 锁获取失败不阻止响铃，记录后继续
		m.logger.Error("Failed to acquire wake lock",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	if err := m.notifier.Show(Notification{
		SessionID:  session.ID,
		AlarmID:    session.AlarmID,
		Title:      "Alarm ringing",
		Label:      session.Label,
		FullScreen: true,
		Ongoing:    true,
	}); err != nil {
		m.logger.Error("Failed to show ring notification",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	m.startRinging(session)
	m.vibrator.StartWaveform(DefaultVibrationPattern)

	if m.state != nil {
		if err := m.state.SaveSession(ctx, SessionState{
			SessionID:     session.ID,
			AlarmID:       session.AlarmID,
			Label:         session.Label,
			ChallengeType: payload.ChallengeType,
			ChallengeVal:  payload.ChallengeVal,
			StartedAt:     session.StartedAt.Unix(),
		}); err != nil {
			m.logger.Error("Failed to mirror session state",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("Ring session started",
		zap.String("session_id", session.ID),
		zap.Int("alarm_id", session.AlarmID),
		zap.String("label", session.Label),
	)

	if m.onStart != nil {
		m.onStart(session)
	}

	return nil
}

// startRinging 按回退链启动循环音频：
// 主题音源 → 系统闹钟铃声 → 系统通知铃声
// 三者全部失败时吞掉错误只记日志：有震动和通知的无声闹钟好过崩溃的会话
func (m *Manager) startRinging(session *Session) {
	sources := []string{
		m.config.Ring.ThemedSound,
		m.config.Ring.AlarmTone,
		m.config.Ring.NotificationTone,
	}

	for _, source := range sources {
		if source == "" {
			continue
		}
		if err := m.audio.PlayLoop(source); err != nil {
			m.logger.Warn("Audio source failed, trying fallback",
				zap.String("session_id", session.ID),
				zap.String("source", source),
				zap.Error(err),
			)
			continue
		}
		return
	}

	m.logger.Error("All audio sources failed, ringing silently",
		zap.String("session_id", session.ID),
	)
}

// Stop 停止响铃会话：停音频、取消震动、释放唤醒锁、撤下通知
// 幂等：重复停止或停止未知会话是空操作
func (m *Manager) Stop(ctx context.Context, sessionID string) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	m.teardown(ctx, session)
}

// StopAll 停止全部会话（进程关闭路径，确保每条退出路径都释放唤醒锁）
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		sessions = append(sessions, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range sessions {
		m.teardown(ctx, session)
	}
}

// Active 当前活跃会话数量
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) teardown(ctx context.Context, session *Session) {
	session.stopOnce.Do(func() {
		m.audio.Stop()
		m.vibrator.Cancel()
		session.wakeLock.Release()
		m.notifier.Dismiss(session.ID)

		if m.state != nil {
			if err := m.state.ClearSession(ctx, session.ID); err != nil {
				m.logger.Error("Failed to clear session state",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
			}
		}

		m.logger.Info("Ring session stopped",
			zap.String("session_id", session.ID),
			zap.Int("alarm_id", session.AlarmID),
		)
	})
}
