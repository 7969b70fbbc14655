package ring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"waguri-alarm/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionState 响铃会话状态（镜像到 Redis，供挑战界面跨进程重建）
// 挑战仍以扁平 (tag, value) 形式存放，界面侧用全函数解码还原
type SessionState struct {
	SessionID     string `json:"session_id"`
	AlarmID       int    `json:"alarm_id"`
	Label         string `json:"label"`
	ChallengeType string `json:"challenge_type"`
	ChallengeVal  int    `json:"challenge_val"`
	StartedAt     int64  `json:"started_at"`
}

// StateManager 会话状态管理器
type StateManager struct {
	config *config.Config
	client *redis.Client
	logger *zap.Logger
}

// NewStateManager 创建状态管理器
func NewStateManager(
	cfg *config.Config,
	client *redis.Client,
	logger *zap.Logger,
) *StateManager {
	return &StateManager{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// SessionKey 构建会话状态键
func (s *StateManager) SessionKey(sessionID string) string {
	return fmt.Sprintf("%s%s", s.config.Ring.SessionKeyPrefix, sessionID)
}

// SaveSession 写入会话状态（带 TTL，会话异常残留时自动过期）
func (s *StateManager) SaveSession(ctx context.Context, state SessionState) error {
	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	ttl := time.Duration(s.config.Ring.SessionTTL) * time.Second
	if err := s.client.Set(ctx, s.SessionKey(state.SessionID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}

// LoadSession 读取会话状态
func (s *StateManager) LoadSession(ctx context.Context, sessionID string) (*SessionState, error) {
	val, err := s.client.Get(ctx, s.SessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session state not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session state: %w", err)
	}

	var state SessionState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}

	return &state, nil
}

// ClearSession 删除会话状态
func (s *StateManager) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
