package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/SlpAus/quiz-game-backend/internal/question"
)

const (
	// TimeLimitSeconds 是每道题的答题时限（秒）。
	// 计分公式和前端倒计时共用这一个常量，两者不一致会导致
	// 显示的剩余时间和实际加分对不上。
	TimeLimitSeconds = 20

	// baseScore 是答对一题的保底分数
	baseScore = 100

	// bonusPerSecond 是每剩余一秒的奖励分数
	bonusPerSecond = 5
)

// Engine 持有一局进行中游戏的全部状态。
// 整个进程只有一个会话，但HTTP处理器可能交错调用，所以仍然加锁保护。
type Engine struct {
	mu        sync.Mutex
	category  string
	questions []question.Question
	cursor    int
	score     int
	startedAt time.Time
}

// engine 是本模块唯一的会话实例
var engine = &Engine{}

// ListCategories 返回题库中所有可玩的分类。
func ListCategories() ([]string, error) {
	return question.ListCategories()
}

// StartGame 以指定分类开始一局新游戏，覆盖之前的所有会话状态。
// 分类下题目不多于count时全部保留（保持存储顺序）；
// 多于count时做等概率的无放回抽样，恰好抽出count道。
func (e *Engine) StartGame(category string, count int) error {
	selected, err := question.GetByCategory(category)
	if err != nil {
		return err
	}

	if len(selected) > count {
		// 打乱后取前缀：每道题进入样本的概率相等
		shuffled := make([]question.Question, len(selected))
		copy(shuffled, selected)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		selected = shuffled[:count]
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.category = category
	e.questions = selected
	e.cursor = 0
	e.score = 0
	e.startedAt = time.Now()
	return nil
}

// start 直接用给定的题目序列开始游戏，仅供测试注入固定题目。
func (e *Engine) start(category string, questions []question.Question) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.category = category
	e.questions = questions
	e.cursor = 0
	e.score = 0
	e.startedAt = time.Now()
}

// NextQuestion 取出游标处的题目并前进一步。
// 一道题只会被取出一次；题目耗尽后可以反复调用，始终返回耗尽信号。
func (e *Engine) NextQuestion() (*question.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cursor >= len(e.questions) {
		return nil, false
	}
	q := e.questions[e.cursor]
	e.cursor++
	return &q, true
}

// CheckAnswer 校验一次作答并在答对时累加分数。
// 按ID在本局已加载的题目中查找（而不是只看当前题），以容忍乱序确认；
// 未知ID不是故障，按答错处理且无任何副作用。
func (e *Engine) CheckAnswer(questionID uint, selectedIndex int, timeSpentSec float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.questions {
		if e.questions[i].ID != questionID {
			continue
		}
		if selectedIndex != e.questions[i].CorrectIndex {
			return false
		}
		// 剩余时间奖励向下取整，超时后奖励为0而不是负数
		bonus := (TimeLimitSeconds - timeSpentSec) * bonusPerSecond
		if bonus < 0 {
			bonus = 0
		}
		e.score += baseScore + int(bonus)
		return true
	}
	return false
}

// Score 返回本局当前累计分数。
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Remaining 返回尚未取出的题目数量。
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.questions) - e.cursor
}

// Category 返回本局正在玩的分类。
func (e *Engine) Category() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.category
}

// ElapsedSeconds 返回本局已经进行的秒数。
func (e *Engine) ElapsedSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startedAt.IsZero() {
		return 0
	}
	return int(time.Since(e.startedAt).Seconds())
}

// Reset 将会话清回初始的空状态。
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.category = ""
	e.questions = nil
	e.cursor = 0
	e.score = 0
	e.startedAt = time.Time{}
}
