package config

import (
	"os"
	"strconv"
)

// Config 闹钟守护进程配置
type Config struct {
	Store struct {
		Backend string // "sqlite"（默认）或 "postgres"
		Path    string // sqlite 数据库文件路径

		// postgres 连接参数（Backend = "postgres" 时使用）
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	// 触发总线配置（调度器 → 触发接收器）
	Trigger struct {
		Stream   string // 触发载荷的 Redis Stream
		Group    string // 消费者组
		Consumer string // 消费者名称
	}

	// 响铃会话配置
	Ring struct {
		SessionKeyPrefix string // 会话状态缓存键前缀，如 "waguri:ring:"
		SessionTTL       int    // 会话状态 TTL（秒）
		WakeLockTimeout  int    // 唤醒锁上限（秒），超时自动释放防止耗电

		// 音频源回退链：主题音源 → 系统闹钟铃声 → 系统通知铃声
		ThemedSound      string
		AlarmTone        string
		NotificationTone string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量覆盖默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Store.Backend = getEnv("STORE_BACKEND", "sqlite")
	cfg.Store.Path = getEnv("STORE_PATH", "waguri-alarm.db")
	cfg.Store.Host = getEnv("DB_HOST", "localhost")
	cfg.Store.Port = getEnvInt("DB_PORT", 5432)
	cfg.Store.User = getEnv("DB_USER", "postgres")
	cfg.Store.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Store.Database = getEnv("DB_NAME", "waguri")
	cfg.Store.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Trigger.Stream = getEnv("TRIGGER_STREAM", "waguri:triggers")
	cfg.Trigger.Group = getEnv("TRIGGER_GROUP", "ring-service")
	cfg.Trigger.Consumer = getEnv("TRIGGER_CONSUMER", "ring-1")

	cfg.Ring.SessionKeyPrefix = getEnv("RING_SESSION_PREFIX", "waguri:ring:")
	cfg.Ring.SessionTTL = 600
	cfg.Ring.WakeLockTimeout = 600 // 10分钟
	cfg.Ring.ThemedSound = getEnv("RING_THEMED_SOUND", "assets/char_getup.ogg")
	cfg.Ring.AlarmTone = getEnv("RING_ALARM_TONE", "system:alarm")
	cfg.Ring.NotificationTone = getEnv("RING_NOTIFICATION_TONE", "system:notification")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
