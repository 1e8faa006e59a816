package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/SlpAus/quiz-game-backend/internal/profile"
	"github.com/SlpAus/quiz-game-backend/internal/question"
	"github.com/gin-gonic/gin"
)

// ErrNoActiveGame 表示在没有进行中游戏时收到了游戏操作。
var ErrNoActiveGame = errors.New("当前没有进行中的游戏")

// shellState 对应原版UI里散落的全局窗口状态：当前题目、定时器句柄、当前用户。
// 在这里收拢为一个显式的状态对象，由锁保护。
type shellState struct {
	mu sync.Mutex
	// current 是已出题、尚未作答的题目
	current *question.Question
	// userID 是开局时绑定的活动用户，过期回调在请求之外触发时仍需要它
	userID uint
	// finalized 标记本局成绩是否已经落库，保证只落一次
	finalized bool
	// inProgress 标记是否有已开始且未结束的一局
	inProgress bool
}

var state shellState

// countdown 是当前题目的服务端权威倒计时
var countdown Countdown

// --- 请求体 ---

type StartGameRequestBody struct {
	Category string `json:"category" binding:"required"`
}

type AnswerRequestBody struct {
	QuestionID    uint    `json:"question_id" binding:"required"`
	SelectedIndex *int    `json:"selected_index" binding:"required"`
	TimeSpentSec  float64 `json:"time_spent_sec"`
}

type ExpiredRequestBody struct {
	QuestionID   uint    `json:"question_id"`
	TimeSpentSec float64 `json:"time_spent_sec"`
}

// --- API响应模型 ---

// QuestionResponse 是出题时发给前端的公开题面，绝不包含正确答案下标
type QuestionResponse struct {
	ID       uint     `json:"id"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
}

// ShowQuestionResponse 对应原版UI的 show_question 调用所携带的数据
type ShowQuestionResponse struct {
	Question  QuestionResponse `json:"question"`
	Remaining int              `json:"remaining"`
	Score     int              `json:"score"`
	TimerSec  int              `json:"timer_sec"`
}

// ShowResultResponse 对应原版UI的 show_result 调用所携带的数据
type ShowResultResponse struct {
	Finished bool `json:"finished"`
	Score    int  `json:"score"`
}

// AnswerResponse 是一次作答的完整反馈：对错、当前分数，外加下一题或终局
type AnswerResponse struct {
	Correct  bool                  `json:"correct"`
	Score    int                   `json:"score"`
	Next     *ShowQuestionResponse `json:"next,omitempty"`
	Finished bool                  `json:"finished"`
}

// GameStateResponse 是查询当前对局状态的响应
type GameStateResponse struct {
	InProgress bool `json:"in_progress"`
	Score      int  `json:"score"`
	Remaining  int  `json:"remaining"`
}

// --- 控制器函数 ---

// GetCategories 返回所有可玩的分类
func GetCategories(c *gin.Context) {
	categories, err := ListCategories()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "题库暂时不可用，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// StartGame 开始一局新游戏并下发第一道题
func StartGame(c *gin.Context) {
	var body StartGameRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	// 先作废上一局残留的倒计时：旧题到点的回调不能对新对局终局
	countdown.Cancel()

	state.mu.Lock()
	state.inProgress = false
	state.current = nil
	state.mu.Unlock()

	if err := engine.StartGame(body.Category, questionsPerGame); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "题库暂时不可用，请稍后重试"})
		return
	}

	state.mu.Lock()
	state.userID = profile.ActiveUserID(c)
	state.finalized = false
	state.inProgress = true
	state.mu.Unlock()

	q, ok := engine.NextQuestion()
	if !ok {
		// 分类下没有任何题目：开局即耗尽，不产生成绩记录
		state.mu.Lock()
		state.inProgress = false
		state.finalized = true
		state.mu.Unlock()
		c.JSON(http.StatusOK, ShowResultResponse{Finished: true, Score: engine.Score()})
		return
	}

	serveQuestion(c, q)
}

// SubmitAnswer 处理一次作答：计分、推进到下一题或结束本局
func SubmitAnswer(c *gin.Context) {
	var body AnswerRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	// 先作废当前题的倒计时，之后的迟到回调不会再触发终局
	countdown.Cancel()

	state.mu.Lock()
	if !state.inProgress {
		state.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": ErrNoActiveGame.Error()})
		return
	}
	state.current = nil
	state.mu.Unlock()

	correct := engine.CheckAnswer(body.QuestionID, *body.SelectedIndex, body.TimeSpentSec)

	response := AnswerResponse{Correct: correct, Score: engine.Score()}

	if q, ok := engine.NextQuestion(); ok {
		next := buildShowQuestion(q)
		response.Next = &next
		armCountdown(q)
		state.mu.Lock()
		state.current = q
		state.mu.Unlock()
		c.JSON(http.StatusOK, response)
		return
	}

	// 题目耗尽：落库并结束本局
	if err := finalizeGame(); err != nil {
		respondFinalizeError(c, err)
		return
	}
	response.Finished = true
	c.JSON(http.StatusOK, response)
}

// TimeExpired 处理前端上报的答题超时：直接结束本局并落库
func TimeExpired(c *gin.Context) {
	var body ExpiredRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	state.mu.Lock()
	inProgress := state.inProgress
	stale := state.current != nil && body.QuestionID != 0 && body.QuestionID != state.current.ID
	state.mu.Unlock()

	if stale {
		// 前端一个迟到的旧定时器在为已被换下的题目报超时，忽略它
		c.JSON(http.StatusOK, GameStateResponse{
			InProgress: inProgress,
			Score:      engine.Score(),
			Remaining:  engine.Remaining(),
		})
		return
	}

	countdown.Cancel()

	if !inProgress {
		// 服务端倒计时可能已经先一步终局了，此时直接回显结果
		c.JSON(http.StatusOK, ShowResultResponse{Finished: true, Score: engine.Score()})
		return
	}

	if err := finalizeGame(); err != nil {
		respondFinalizeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShowResultResponse{Finished: true, Score: engine.Score()})
}

// QuitGame 处理返回主菜单：作废倒计时并丢弃本局，不产生成绩记录。
// 没有进行中的游戏时也可以调用，结果相同。
func QuitGame(c *gin.Context) {
	countdown.Cancel()

	state.mu.Lock()
	state.inProgress = false
	state.finalized = true
	state.current = nil
	state.mu.Unlock()

	engine.Reset()

	c.JSON(http.StatusOK, GameStateResponse{InProgress: false})
}

// GetGameState 返回当前对局的分数和剩余题数
func GetGameState(c *gin.Context) {
	state.mu.Lock()
	inProgress := state.inProgress
	state.mu.Unlock()

	c.JSON(http.StatusOK, GameStateResponse{
		InProgress: inProgress,
		Score:      engine.Score(),
		Remaining:  engine.Remaining(),
	})
}

// --- 内部辅助 ---

// serveQuestion 下发一道题并武装它的倒计时
func serveQuestion(c *gin.Context, q *question.Question) {
	armCountdown(q)
	state.mu.Lock()
	state.current = q
	state.mu.Unlock()
	c.JSON(http.StatusOK, buildShowQuestion(q))
}

// armCountdown 为一道题启动服务端权威倒计时。
// 到点仍无人作答时由服务端终局，确保成绩不因前端消失而丢失。
func armCountdown(q *question.Question) {
	countdown.Start(TimeLimitSeconds*time.Second, func(token string) {
		state.mu.Lock()
		stillCurrent := state.inProgress && state.current != nil && state.current.ID == q.ID
		state.mu.Unlock()
		if !stillCurrent {
			return
		}
		if err := finalizeGame(); err != nil {
			fmt.Printf("倒计时到期后结算失败: %v\n", err)
		}
	})
}

// finalizeGame 结束本局：保存成绩并复位进行中标记。幂等，只落库一次。
func finalizeGame() error {
	state.mu.Lock()
	if state.finalized {
		state.mu.Unlock()
		return nil
	}
	state.finalized = true
	state.inProgress = false
	state.current = nil
	userID := state.userID
	state.mu.Unlock()

	return profile.SaveResult(userID, engine.Score(), engine.ElapsedSeconds(), engine.Category())
}

func buildShowQuestion(q *question.Question) ShowQuestionResponse {
	return ShowQuestionResponse{
		Question: QuestionResponse{
			ID:       q.ID,
			Category: q.Category,
			Text:     q.Text,
			Options:  q.Options(),
		},
		Remaining: engine.Remaining(),
		Score:     engine.Score(),
		TimerSec:  TimeLimitSeconds,
	}
}

// respondFinalizeError 将终局落库的错误映射为HTTP状态码
func respondFinalizeError(c *gin.Context, err error) {
	if errors.Is(err, profile.ErrForeignKey) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "保存对局成绩失败"})
}
