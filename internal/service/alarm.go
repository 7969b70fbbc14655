package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"waguri-alarm/internal/catalog"
	"waguri-alarm/internal/challenge"
	"waguri-alarm/internal/config"
	"waguri-alarm/internal/dismiss"
	"waguri-alarm/internal/models"
	"waguri-alarm/internal/repository"
	"waguri-alarm/internal/ring"
	"waguri-alarm/internal/scheduler"
	"waguri-alarm/internal/trigger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AlarmService 闹钟服务（整合各层）
// 闹钟增删改与调度器保持一致：存储先行，调度随 Active 状态同步
type AlarmService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	// 各层组件
	alarmRepo   *repository.AlarmRepository
	catalog     *catalog.Service
	scheduler   *scheduler.Scheduler
	bus         *trigger.Bus
	receiver    *trigger.Receiver
	ringManager *ring.Manager
	coordinator *dismiss.Coordinator

	// 活跃会话的挑战运行器
	mu      sync.Mutex
	runners map[string]challenge.Runner

	cancel       context.CancelFunc
	receiverDone chan struct{}
}

// NewAlarmService 创建闹钟服务
func NewAlarmService(cfg *config.Config, logger *zap.Logger) (*AlarmService, error) {
	// 1. 打开存储（进程级共享句柄，默认 SQLite，可切换 Postgres）
	db, err := repository.SharedStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 创建 Repository 层
	alarmRepo := repository.NewAlarmRepository(db, logger)
	catalogSvc := catalog.NewService(repository.NewCatalogRepository(db, logger), logger)

	// 4. 创建触发总线与调度器
	bus := trigger.NewBus(redisClient, cfg.Trigger.Stream, logger)
	sched := scheduler.NewScheduler(bus, scheduler.AlwaysAllowed, logger)

	// 5. 创建响铃层
	stateManager := ring.NewStateManager(cfg, redisClient, logger)
	ringManager := ring.NewManager(
		cfg,
		stateManager,
		ring.NewLogAudioPlayer(logger),
		ring.NewLogVibrator(logger),
		ring.NewLogNotifier(logger),
		logger,
	)

	// 6. 创建触发接收器（响铃管理器即会话启动器）
	receiver := trigger.NewReceiver(cfg, redisClient, bus, ringManager, logger)

	svc := &AlarmService{
		config:       cfg,
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		alarmRepo:    alarmRepo,
		catalog:      catalogSvc,
		scheduler:    sched,
		bus:          bus,
		receiver:     receiver,
		ringManager:  ringManager,
		coordinator:  dismiss.NewCoordinator(ringManager, logger),
		runners:      make(map[string]challenge.Runner),
		receiverDone: make(chan struct{}),
	}

	// 7. 会话启动时挂载挑战运行器
	ringManager.SetOnStart(svc.attachChallenge)

	return svc, nil
}

// ============================================
// 闹钟增删改查
// ============================================

// SaveAlarm 新建闹钟并在激活时调度
func (s *AlarmService) SaveAlarm(ctx context.Context, alarm *models.Alarm) (int, error) {
	id, err := s.alarmRepo.InsertAlarm(ctx, alarm)
	if err != nil {
		return 0, err
	}
	alarm.ID = id

	if alarm.Active {
		if err := s.scheduler.Schedule(*alarm); err != nil {
			return id, fmt.Errorf("alarm saved but not scheduled: %w", err)
		}
	}
	return id, nil
}

// UpdateAlarm 更新闹钟并同步调度状态
func (s *AlarmService) UpdateAlarm(ctx context.Context, alarm models.Alarm) error {
	if err := s.alarmRepo.UpdateAlarm(ctx, alarm); err != nil {
		return err
	}

	if alarm.Active {
		return s.scheduler.Schedule(alarm)
	}
	s.scheduler.Cancel(alarm.ID)
	return nil
}

// ToggleAlarm 切换闹钟激活状态
func (s *AlarmService) ToggleAlarm(ctx context.Context, id int, active bool) error {
	alarm, err := s.alarmRepo.GetAlarmByID(ctx, id)
	if err != nil {
		return err
	}

	alarm.Active = active
	return s.UpdateAlarm(ctx, *alarm)
}

// DeleteAlarm 删除闹钟
// 先取消调度再删记录，保证不会留下指向已删闹钟的定时器
func (s *AlarmService) DeleteAlarm(ctx context.Context, id int) error {
	s.scheduler.Cancel(id)
	return s.alarmRepo.DeleteAlarm(ctx, id)
}

// Alarms 列出全部闹钟
func (s *AlarmService) Alarms(ctx context.Context) ([]models.Alarm, error) {
	return s.alarmRepo.GetAllAlarms(ctx)
}

// GetAlarm 按 ID 查询闹钟
func (s *AlarmService) GetAlarm(ctx context.Context, id int) (*models.Alarm, error) {
	return s.alarmRepo.GetAlarmByID(ctx, id)
}

// ============================================
// 响铃与挑战
// ============================================

// attachChallenge 为新会话创建挑战运行器并绑定解除协调
func (s *AlarmService) attachChallenge(session *ring.Session) {
	runner := challenge.NewRunner(session.Challenge, s.logger)

	s.mu.Lock()
	s.runners[session.ID] = runner
	s.mu.Unlock()

	ctx := context.Background()
	dismissed := s.coordinator.Bind(ctx, runner, session.ID)

	go func() {
		<-dismissed
		s.mu.Lock()
		delete(s.runners, session.ID)
		s.mu.Unlock()
	}()

	s.logger.Info("Challenge attached to session",
		zap.String("session_id", session.ID),
		zap.Int("alarm_id", session.AlarmID),
	)
}

// Catalog 角色目录服务
func (s *AlarmService) Catalog() *catalog.Service {
	return s.catalog
}

// Runner 返回会话对应的挑战运行器（输入事件路由入口）
func (s *AlarmService) Runner(sessionID string) (challenge.Runner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runner, ok := s.runners[sessionID]
	return runner, ok
}

// ActiveSessions 当前活跃响铃会话数
func (s *AlarmService) ActiveSessions() int {
	return s.ringManager.Active()
}

// ============================================
// 生命周期
// ============================================

// Start 启动服务：恢复激活闹钟的调度，启动触发接收循环
func (s *AlarmService) Start(ctx context.Context) error {
	s.logger.Info("Starting alarm service",
		zap.String("store_backend", s.config.Store.Backend),
		zap.String("trigger_stream", s.config.Trigger.Stream),
	)

	// 进程重启后所有定时器丢失，按存储里的激活状态重建
	alarms, err := s.alarmRepo.GetAllAlarms(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alarms for rescheduling: %w", err)
	}
	for _, alarm := range alarms {
		if !alarm.Active {
			continue
		}
		if err := s.scheduler.Schedule(alarm); err != nil {
			s.logger.Error("Failed to reschedule alarm",
				zap.Int("alarm_id", alarm.ID),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("Active alarms rescheduled",
		zap.Int("pending", s.scheduler.Pending()),
	)

	recvCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		defer close(s.receiverDone)
		if err := s.receiver.Start(recvCtx); err != nil {
			s.logger.Error("Trigger receiver exited",
				zap.Error(err),
			)
		}
	}()

	return nil
}

// Stop 停止服务
func (s *AlarmService) Stop() error {
	s.logger.Info("Stopping alarm service")

	if s.cancel != nil {
		s.cancel()
		<-s.receiverDone
	}

	s.scheduler.Stop()
	s.ringManager.StopAll(context.Background())

	// 关闭数据库连接
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	// 关闭 Redis 连接
	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}
