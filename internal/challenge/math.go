package challenge

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"waguri-alarm/internal/models"

	"go.uber.org/zap"
)

// MaxAnswerDigits 答案输入缓冲上限
const MaxAnswerDigits = 5

// MathQuestion 算术题目
type MathQuestion struct {
	Text   string // 展示文本，如 "4 x 6 + 10"
	Answer int
}

// GenerateMathQuestion 按难度生成题目
// EASY：个位数加法；MEDIUM：两位数减个位数；HARD：乘法加偏移
func GenerateMathQuestion(difficulty models.MathDifficulty, rng *rand.Rand) MathQuestion {
	rng = newRNG(rng)

	switch difficulty {
	case models.MathMedium:
		return mediumQuestion(10+rng.Intn(40), 1+rng.Intn(9)) // a∈[10,49] b∈[1,9]
	case models.MathHard:
		return hardQuestion(2+rng.Intn(8), 2+rng.Intn(8), 1+rng.Intn(19)) // a,b∈[2,9] c∈[1,19]
	default:
		return easyQuestion(1+rng.Intn(9), 1+rng.Intn(9)) // a,b∈[1,9]
	}
}

func easyQuestion(a, b int) MathQuestion {
	return MathQuestion{
		Text:   fmt.Sprintf("%d + %d", a, b),
		Answer: a + b,
	}
}

func mediumQuestion(a, b int) MathQuestion {
	return MathQuestion{
		Text:   fmt.Sprintf("%d - %d", a, b),
		Answer: a - b,
	}
}

func hardQuestion(a, b, c int) MathQuestion {
	return MathQuestion{
		Text:   fmt.Sprintf("%d x %d + %d", a, b, c),
		Answer: a*b + c,
	}
}

// MathRunner 算术挑战：答对唯一一道题即完成
// 状态：awaiting-input → complete
// 答错只清空输入缓冲，题目保持不变
type MathRunner struct {
	completion
	question MathQuestion
	logger   *zap.Logger

	mu    sync.Mutex
	input string
}

// NewMathRunner 创建算术运行器（进入时生成一道题）
func NewMathRunner(difficulty models.MathDifficulty, rng *rand.Rand, logger *zap.Logger) *MathRunner {
	return &MathRunner{
		completion: newCompletion(),
		question:   GenerateMathQuestion(difficulty, rng),
		logger:     logger,
	}
}

// Question 当前题目
func (r *MathRunner) Question() MathQuestion {
	return r.question
}

// Press 追加一位数字（缓冲满后忽略）
func (r *MathRunner) Press(digit int) {
	if digit < 0 || digit > 9 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.input) < MaxAnswerDigits {
		r.input += strconv.Itoa(digit)
	}
}

// Clear 清空输入缓冲
func (r *MathRunner) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.input = ""
}

// Input 当前输入缓冲
func (r *MathRunner) Input() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input
}

// Submit 提交答案
// 精确匹配完成并返回 true；否则清空缓冲、保留原题并返回 false
func (r *MathRunner) Submit() bool {
	r.mu.Lock()
	input := r.input
	correct := input == strconv.Itoa(r.question.Answer)
	if !correct {
		r.input = ""
	}
	r.mu.Unlock()

	if correct {
		r.complete()
		return true
	}

	r.logger.Debug("Wrong math answer",
		zap.String("input", input),
		zap.Int("expected", r.question.Answer),
	)
	return false
}
