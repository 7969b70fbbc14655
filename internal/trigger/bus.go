package trigger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"waguri-alarm/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Bus 触发总线（Redis Streams）
// 平台定时器与触发接收器之间的边界不保留富对象，载荷只携带原始类型字段
type Bus struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewBus 创建触发总线
func NewBus(client *redis.Client, stream string, logger *zap.Logger) *Bus {
	return &Bus{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// PublishTrigger 发布触发载荷（实现 scheduler.TriggerPublisher）
func (b *Bus) PublishTrigger(ctx context.Context, payload models.TriggerPayload) error {
	id, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]interface{}{
			"alarm_id":       strconv.Itoa(payload.AlarmID),
			"label":          payload.Label,
			"challenge_type": payload.ChallengeType,
			"challenge_val":  strconv.Itoa(payload.ChallengeVal),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish trigger: %w", err)
	}

	b.logger.Debug("Published trigger",
		zap.String("message_id", id),
		zap.Int("alarm_id", payload.AlarmID),
	)
	return nil
}

// EnsureGroup 创建消费者组（组已存在时忽略）
func (b *Bus) EnsureGroup(ctx context.Context, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, b.stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// DecodePayload 从流消息字段还原触发载荷
// 解码是全函数：字段缺失或损坏时使用默认值（label "Alarm!"，挑战 None），永不报错
func DecodePayload(values map[string]interface{}) models.TriggerPayload {
	payload := models.TriggerPayload{
		AlarmID:       -1,
		Label:         "Alarm!",
		ChallengeType: models.TriggerTypeNone,
	}

	if v, ok := stringField(values, "alarm_id"); ok {
		if id, err := strconv.Atoi(v); err == nil {
			payload.AlarmID = id
		}
	}
	if v, ok := stringField(values, "label"); ok && v != "" {
		payload.Label = v
	}
	if v, ok := stringField(values, "challenge_type"); ok && v != "" {
		payload.ChallengeType = v
	}
	if v, ok := stringField(values, "challenge_val"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			payload.ChallengeVal = n
		}
	}

	return payload
}

func stringField(values map[string]interface{}, key string) (string, bool) {
	raw, ok := values[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
