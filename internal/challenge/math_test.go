package challenge

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"waguri-alarm/internal/models"
)

// ============================================
// 题目生成
// ============================================

func TestGenerateMathQuestion_EasyOperandRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		q := GenerateMathQuestion(models.MathEasy, rng)

		var a, b int
		_, err := fmt.Sscanf(q.Text, "%d + %d", &a, &b)
		require.NoError(t, err, "text=%q", q.Text)

		// EASY：两个操作数都在 [1,9]，答案恰好等于 a+b
		assert.GreaterOrEqual(t, a, 1)
		assert.LessOrEqual(t, a, 9)
		assert.GreaterOrEqual(t, b, 1)
		assert.LessOrEqual(t, b, 9)
		assert.Equal(t, a+b, q.Answer)
	}
}

func TestGenerateMathQuestion_MediumRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		q := GenerateMathQuestion(models.MathMedium, rng)

		var a, b int
		_, err := fmt.Sscanf(q.Text, "%d - %d", &a, &b)
		require.NoError(t, err, "text=%q", q.Text)

		assert.GreaterOrEqual(t, a, 10)
		assert.LessOrEqual(t, a, 49)
		assert.GreaterOrEqual(t, b, 1)
		assert.LessOrEqual(t, b, 9)
		assert.Equal(t, a-b, q.Answer)
	}
}

func TestGenerateMathQuestion_HardRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		q := GenerateMathQuestion(models.MathHard, rng)

		var a, b, c int
		_, err := fmt.Sscanf(q.Text, "%d x %d + %d", &a, &b, &c)
		require.NoError(t, err, "text=%q", q.Text)

		assert.GreaterOrEqual(t, a, 2)
		assert.LessOrEqual(t, a, 9)
		assert.GreaterOrEqual(t, b, 2)
		assert.LessOrEqual(t, b, 9)
		assert.GreaterOrEqual(t, c, 1)
		assert.LessOrEqual(t, c, 19)
		assert.Equal(t, a*b+c, q.Answer)
	}
}

func TestHardQuestion_ConcreteScenario(t *testing.T) {
	// a=4, b=6, c=10 → "4 x 6 + 10"，答案 34
	q := hardQuestion(4, 6, 10)
	assert.Equal(t, "4 x 6 + 10", q.Text)
	assert.Equal(t, 34, q.Answer)
}

// ============================================
// 运行器状态机
// ============================================

func TestMathRunner_CorrectAnswerCompletes(t *testing.T) {
	r := NewMathRunner(models.MathEasy, rand.New(rand.NewSource(7)), zap.NewNop())

	for _, ch := range strconv.Itoa(r.Question().Answer) {
		r.Press(int(ch - '0'))
	}

	assert.True(t, r.Submit())
	assert.True(t, completed(r))
}

func TestMathRunner_WrongAnswerClearsBufferKeepsQuestion(t *testing.T) {
	r := NewMathRunner(models.MathEasy, rand.New(rand.NewSource(7)), zap.NewNop())
	question := r.Question()

	// 提交一个必错的答案（EASY 最大和为 18）
	r.Press(9)
	r.Press(9)
	r.Press(9)
	require.Equal(t, "999", r.Input())

	assert.False(t, r.Submit())
	assert.False(t, completed(r))

	// 缓冲被清空，题目不变（答错不换题）
	assert.Equal(t, "", r.Input())
	assert.Equal(t, question, r.Question())

	// 重试正确答案仍然可以完成
	for _, ch := range strconv.Itoa(question.Answer) {
		r.Press(int(ch - '0'))
	}
	assert.True(t, r.Submit())
	assert.True(t, completed(r))
}

func TestMathRunner_EmptySubmitIsWrong(t *testing.T) {
	r := NewMathRunner(models.MathHard, rand.New(rand.NewSource(11)), zap.NewNop())

	assert.False(t, r.Submit())
	assert.False(t, completed(r))
}

func TestMathRunner_InputBufferCap(t *testing.T) {
	r := NewMathRunner(models.MathEasy, rand.New(rand.NewSource(5)), zap.NewNop())

	for i := 0; i < 10; i++ {
		r.Press(1)
	}
	assert.Len(t, r.Input(), MaxAnswerDigits)

	// 非法数字被忽略
	r.Clear()
	r.Press(-1)
	r.Press(10)
	assert.Equal(t, "", r.Input())
}

func TestMathRunner_LeadingZeroIsNotExactMatch(t *testing.T) {
	r := NewMathRunner(models.MathEasy, rand.New(rand.NewSource(7)), zap.NewNop())

	// 前导零不是精确整数匹配
	answer := strconv.Itoa(r.Question().Answer)
	r.Press(0)
	for _, ch := range answer {
		r.Press(int(ch - '0'))
	}

	assert.False(t, r.Submit())
	assert.False(t, completed(r))
}
