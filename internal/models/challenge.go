package models

import (
	"strconv"
	"strings"
)

// ChallengeKind 挑战类型（封闭集合，同一时间只有一个变体生效）
type ChallengeKind int

const (
	ChallengeNone   ChallengeKind = iota // 无挑战，确认后直接解除
	ChallengeShake                       // 摇晃挑战
	ChallengeMath                        // 算术挑战
	ChallengeMemory                      // 记忆挑战
)

// MathDifficulty 算术挑战难度
// 注意：顺序固定，跨进程载荷使用序号（ordinal）编码
type MathDifficulty int

const (
	MathEasy MathDifficulty = iota
	MathMedium
	MathHard
)

// String 难度名称（持久化编码使用名称）
func (d MathDifficulty) String() string {
	switch d {
	case MathMedium:
		return "MEDIUM"
	case MathHard:
		return "HARD"
	default:
		return "EASY"
	}
}

// ParseMathDifficulty 解析难度名称，未知名称回退为 EASY
func ParseMathDifficulty(name string) MathDifficulty {
	switch name {
	case "MEDIUM":
		return MathMedium
	case "HARD":
		return MathHard
	default:
		return MathEasy
	}
}

// MathDifficultyFromOrdinal 根据序号解析难度，越界回退为 EASY
func MathDifficultyFromOrdinal(ordinal int) MathDifficulty {
	switch ordinal {
	case 1:
		return MathMedium
	case 2:
		return MathHard
	default:
		return MathEasy
	}
}

// 各变体参数的回退默认值（解码损坏数据时使用）
const (
	DefaultShakesRequired = 10
	DefaultMemoryRounds   = 3
)

// Challenge 挑战（带标签的变体，参数字段仅对对应变体有意义）
type Challenge struct {
	Kind ChallengeKind

	ShakesRequired int            // Shake：需要的摇晃次数
	Difficulty     MathDifficulty // Math：难度
	NumRounds      int            // Memory：回合数
}

// Encode 持久化编码："None" / "Shake|<n>" / "Math|<NAME>" / "Memory|<n>"
func (c Challenge) Encode() string {
	switch c.Kind {
	case ChallengeShake:
		return "Shake|" + strconv.Itoa(c.ShakesRequired)
	case ChallengeMath:
		return "Math|" + c.Difficulty.String()
	case ChallengeMemory:
		return "Memory|" + strconv.Itoa(c.NumRounds)
	default:
		return "None"
	}
}

// DecodeChallenge 解码持久化编码
// 解码是全函数：未知类型或损坏参数永远回退为有效变体，不报错
func DecodeChallenge(value string) Challenge {
	parts := strings.Split(value, "|")
	switch parts[0] {
	case "Shake":
		n := DefaultShakesRequired
		if len(parts) > 1 {
			if v, err := strconv.Atoi(parts[1]); err == nil && v > 0 {
				n = v
			}
		}
		return Challenge{Kind: ChallengeShake, ShakesRequired: n}
	case "Math":
		name := ""
		if len(parts) > 1 {
			name = parts[1]
		}
		return Challenge{Kind: ChallengeMath, Difficulty: ParseMathDifficulty(name)}
	case "Memory":
		n := DefaultMemoryRounds
		if len(parts) > 1 {
			if v, err := strconv.Atoi(parts[1]); err == nil && v > 0 {
				n = v
			}
		}
		return Challenge{Kind: ChallengeMemory, NumRounds: n}
	default:
		return Challenge{Kind: ChallengeNone}
	}
}

// 跨进程触发载荷的挑战类型标签
const (
	TriggerTypeNone   = "NONE"
	TriggerTypeShake  = "SHAKE"
	TriggerTypeMath   = "MATH"
	TriggerTypeMemory = "MEMORY"
)

// TriggerPayload 触发载荷（调度器 → 触发接收器 → 响铃会话）
// 只使用原始类型字段：挑战编码为类型标签 + 单个整数参数
// 早期设计直接传递结构化对象，跨进程边界不可靠，因此改为扁平编码
type TriggerPayload struct {
	AlarmID       int
	Label         string
	ChallengeType string
	ChallengeVal  int
}

// NewTriggerPayload 根据闹钟构建触发载荷
func NewTriggerPayload(alarm Alarm) TriggerPayload {
	p := TriggerPayload{
		AlarmID: alarm.ID,
		Label:   alarm.Label,
	}
	switch alarm.Challenge.Kind {
	case ChallengeShake:
		p.ChallengeType = TriggerTypeShake
		p.ChallengeVal = alarm.Challenge.ShakesRequired
	case ChallengeMath:
		p.ChallengeType = TriggerTypeMath
		p.ChallengeVal = int(alarm.Challenge.Difficulty)
	case ChallengeMemory:
		p.ChallengeType = TriggerTypeMemory
		p.ChallengeVal = alarm.Challenge.NumRounds
	default:
		p.ChallengeType = TriggerTypeNone
	}
	return p
}

// Challenge 从载荷还原挑战变体
// 未知标签或非法参数回退为 None / 各变体默认值，不报错
func (p TriggerPayload) Challenge() Challenge {
	switch p.ChallengeType {
	case TriggerTypeShake:
		n := p.ChallengeVal
		if n <= 0 {
			n = DefaultShakesRequired
		}
		return Challenge{Kind: ChallengeShake, ShakesRequired: n}
	case TriggerTypeMath:
		return Challenge{Kind: ChallengeMath, Difficulty: MathDifficultyFromOrdinal(p.ChallengeVal)}
	case TriggerTypeMemory:
		n := p.ChallengeVal
		if n <= 0 {
			n = DefaultMemoryRounds
		}
		return Challenge{Kind: ChallengeMemory, NumRounds: n}
	default:
		return Challenge{Kind: ChallengeNone}
	}
}
