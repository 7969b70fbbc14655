package trigger

import (
	"context"
	"time"

	"waguri-alarm/internal/config"
	"waguri-alarm/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionStarter 响铃会话启动接口（接收器唯一的下游）
type SessionStarter interface {
	StartSession(ctx context.Context, payload models.TriggerPayload) error
}

// Receiver 触发接收器
// 平台定时器到点后的入口：解码闹钟身份与挑战参数并移交响铃会话
// 接收器本身必须快速返回且永不因损坏载荷崩溃
type Receiver struct {
	config  *config.Config
	client  *redis.Client
	bus     *Bus
	starter SessionStarter
	logger  *zap.Logger
}

// NewReceiver 创建触发接收器
func NewReceiver(
	cfg *config.Config,
	client *redis.Client,
	bus *Bus,
	starter SessionStarter,
	logger *zap.Logger,
) *Receiver {
	return &Receiver{
		config:  cfg,
		client:  client,
		bus:     bus,
		starter: starter,
		logger:  logger,
	}
}

// Start 启动接收循环（阻塞直到 ctx 取消）
func (r *Receiver) Start(ctx context.Context) error {
	if err := r.bus.EnsureGroup(ctx, r.config.Trigger.Group); err != nil {
		return err
	}

	r.logger.Info("Trigger receiver started",
		zap.String("stream", r.config.Trigger.Stream),
		zap.String("group", r.config.Trigger.Group),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Trigger receiver stopped")
			return nil
		default:
		}

		streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    r.config.Trigger.Group,
			Consumer: r.config.Trigger.Consumer,
			Streams:  []string{r.config.Trigger.Stream, ">"},
			Count:    8,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				r.logger.Info("Trigger receiver stopped")
				return nil
			}
			r.logger.Error("Failed to read trigger stream",
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				r.handleMessage(ctx, msg)
			}
		}
	}
}

// handleMessage 处理单条触发消息：解码（带默认值）、确认、移交响铃会话
func (r *Receiver) handleMessage(ctx context.Context, msg redis.XMessage) {
	payload := DecodePayload(msg.Values)

	r.logger.Info("Alarm triggered",
		zap.Int("alarm_id", payload.AlarmID),
		zap.String("label", payload.Label),
		zap.String("challenge_type", payload.ChallengeType),
	)

	if err := r.client.XAck(ctx, r.config.Trigger.Stream, r.config.Trigger.Group, msg.ID).Err(); err != nil {
		r.logger.Error("Failed to ack trigger message",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		// 继续移交，不因确认失败丢响铃
	}

	if err := r.starter.StartSession(ctx, payload); err != nil {
		r.logger.Error("Failed to start ring session",
			zap.Int("alarm_id", payload.AlarmID),
			zap.Error(err),
		)
	}
}
