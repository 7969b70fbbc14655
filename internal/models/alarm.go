package models

// Alarm 闹钟记录（持久化到 alarms 表）
type Alarm struct {
	ID      int    // 由存储层在插入时分配
	Hour    int    // 0-23
	Minute  int    // 0-59
	Label   string // 闹钟标签，默认 "Alarm"
	Active  bool   // 是否启用
	Vibrate bool   // 响铃时是否震动

	// 星期编码（逗号分隔，如 "1,2,3"）
	// 注意：当前调度器不使用该字段，仅持久化
	DaysOfWeek string

	// 解除闹钟所需的挑战
	Challenge Challenge
}

// DefaultLabel 闹钟默认标签
const DefaultLabel = "Alarm"

// NewAlarm 创建闹钟（填充默认值）
func NewAlarm(hour, minute int) Alarm {
	return Alarm{
		Hour:      hour,
		Minute:    minute,
		Label:     DefaultLabel,
		Active:    true,
		Vibrate:   true,
		Challenge: Challenge{Kind: ChallengeNone},
	}
}
