package session_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/SlpAus/quiz-game-backend/api"
	"github.com/SlpAus/quiz-game-backend/internal/platform/config"
	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
	"github.com/SlpAus/quiz-game-backend/internal/profile"
	"github.com/SlpAus/quiz-game-backend/internal/question"
	"github.com/SlpAus/quiz-game-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// setupTestServer 搭起一个完整的内存测试环境：临时SQLite、默认用户、固定题库
func setupTestServer(t *testing.T, questions []question.Question) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), "test")
	if err != nil {
		t.Fatalf("database.Open failed: %v", err)
	}
	database.DB = db

	if err := db.AutoMigrate(&question.Question{}); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	if len(questions) > 0 {
		if err := db.Create(&questions).Error; err != nil {
			t.Fatalf("failed to insert fixture questions: %v", err)
		}
	}
	if err := profile.PrimeDB("Player1"); err != nil {
		t.Fatalf("profile.PrimeDB failed: %v", err)
	}
	session.ConfigureModule(config.GameConfig{QuestionsPerGame: 10})

	r := gin.New()
	api.SetupRoutes(r)
	return r
}

func fixtureQuestions(category string, n int) []question.Question {
	questions := make([]question.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, question.Question{
			ID:       uint(i + 1),
			Category: category,
			Text:     fmt.Sprintf("question %d", i+1),
			Option1:  "a", Option2: "b", Option3: "c", Option4: "d",
			CorrectIndex: i % 4,
		})
	}
	return questions
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal response failed: %v (body: %s)", err, w.Body.String())
		}
	}
	return w
}

func TestFullGameFlowOverHTTP(t *testing.T) {
	questions := fixtureQuestions("science", 3)
	r := setupTestServer(t, questions)

	correctByID := map[uint]int{}
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectIndex
	}

	// 分类列表
	var categories []string
	if w := doJSON(t, r, http.MethodGet, "/api/categories", nil, &categories); w.Code != http.StatusOK {
		t.Fatalf("GET /api/categories: status %d", w.Code)
	}
	if len(categories) != 1 || categories[0] != "science" {
		t.Fatalf("unexpected categories: %v", categories)
	}

	// 开局拿到第一道题
	var first session.ShowQuestionResponse
	if w := doJSON(t, r, http.MethodPost, "/api/game/start", map[string]string{"category": "science"}, &first); w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/start: status %d", w.Code)
	}
	if first.TimerSec != session.TimeLimitSeconds {
		t.Fatalf("timer_sec = %d, want %d", first.TimerSec, session.TimeLimitSeconds)
	}
	if first.Remaining != 2 {
		t.Fatalf("remaining after first serve = %d, want 2", first.Remaining)
	}
	if len(first.Question.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(first.Question.Options))
	}

	// 全部答对，time_spent_sec=0，每题恰好200分
	current := first.Question.ID
	totalAnswered := 0
	for {
		var resp session.AnswerResponse
		w := doJSON(t, r, http.MethodPost, "/api/game/answer", map[string]interface{}{
			"question_id":    current,
			"selected_index": correctByID[current],
			"time_spent_sec": 0,
		}, &resp)
		if w.Code != http.StatusOK {
			t.Fatalf("POST /api/game/answer: status %d (body: %s)", w.Code, w.Body.String())
		}
		if !resp.Correct {
			t.Fatalf("correct answer for question %d rejected", current)
		}
		totalAnswered++

		if resp.Finished {
			if totalAnswered != 3 {
				t.Fatalf("game finished after %d answers, want 3", totalAnswered)
			}
			if resp.Score != 600 {
				t.Fatalf("final score = %d, want 600", resp.Score)
			}
			break
		}
		if resp.Next == nil {
			t.Fatalf("unfinished game returned no next question")
		}
		current = resp.Next.Question.ID
	}

	// 成绩应当已经落到默认用户头上
	stats, err := profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 1 || stats.BestScore != 600 {
		t.Fatalf("unexpected stats after game: %+v", stats)
	}
	if len(stats.ByCategory) != 1 || stats.ByCategory[0].Category != "science" {
		t.Fatalf("unexpected category stats: %+v", stats.ByCategory)
	}
}

func TestTimeExpiredEndsGameAndPersists(t *testing.T) {
	questions := fixtureQuestions("history", 2)
	r := setupTestServer(t, questions)

	var first session.ShowQuestionResponse
	if w := doJSON(t, r, http.MethodPost, "/api/game/start", map[string]string{"category": "history"}, &first); w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/start: status %d", w.Code)
	}

	var result session.ShowResultResponse
	w := doJSON(t, r, http.MethodPost, "/api/game/expired", map[string]interface{}{
		"question_id":    first.Question.ID,
		"time_spent_sec": session.TimeLimitSeconds,
	}, &result)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/expired: status %d", w.Code)
	}
	if !result.Finished || result.Score != 0 {
		t.Fatalf("unexpected expiry result: %+v", result)
	}

	stats, err := profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("expired game was not persisted: %+v", stats)
	}

	// 对已结束的一局重复上报超时只会回显结果，不会再落一次库
	doJSON(t, r, http.MethodPost, "/api/game/expired", map[string]interface{}{
		"question_id":    first.Question.ID,
		"time_spent_sec": session.TimeLimitSeconds,
	}, &result)
	stats, err = profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 1 {
		t.Fatalf("duplicate expiry persisted a second result: %+v", stats)
	}
}

func TestQuitAbandonsGameWithoutPersisting(t *testing.T) {
	questions := fixtureQuestions("geography", 2)
	r := setupTestServer(t, questions)

	var first session.ShowQuestionResponse
	if w := doJSON(t, r, http.MethodPost, "/api/game/start", map[string]string{"category": "geography"}, &first); w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/start: status %d", w.Code)
	}

	// 返回主菜单：丢弃本局
	var quit session.GameStateResponse
	if w := doJSON(t, r, http.MethodPost, "/api/game/quit", nil, &quit); w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/quit: status %d", w.Code)
	}
	if quit.InProgress {
		t.Fatalf("game still in progress after quit")
	}

	var st session.GameStateResponse
	doJSON(t, r, http.MethodGet, "/api/game/state", nil, &st)
	if st.InProgress || st.Score != 0 || st.Remaining != 0 {
		t.Fatalf("unexpected state after quit: %+v", st)
	}

	// 被放弃的一局绝不产生成绩记录
	stats, err := profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Fatalf("abandoned game was persisted as a result: %+v", stats)
	}

	// 退出后前端一个迟到的超时上报也不能落库
	var result session.ShowResultResponse
	doJSON(t, r, http.MethodPost, "/api/game/expired", map[string]interface{}{
		"question_id":    first.Question.ID,
		"time_spent_sec": session.TimeLimitSeconds,
	}, &result)
	stats, err = profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Fatalf("late expiry after quit persisted a result: %+v", stats)
	}

	// 没有进行中的游戏时重复退出是无操作
	if w := doJSON(t, r, http.MethodPost, "/api/game/quit", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("repeated quit: status %d", w.Code)
	}
}

func TestStartGameEmptyCategoryReturnsImmediateResult(t *testing.T) {
	r := setupTestServer(t, nil)

	var result session.ShowResultResponse
	w := doJSON(t, r, http.MethodPost, "/api/game/start", map[string]string{"category": "science"}, &result)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/game/start: status %d", w.Code)
	}
	if !result.Finished || result.Score != 0 {
		t.Fatalf("expected an immediately finished empty game, got %+v", result)
	}

	// 空局不产生成绩记录
	stats, err := profile.GetStats(profile.DefaultUserID())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Fatalf("empty game must not be persisted: %+v", stats)
	}
}

func TestAnswerWithoutActiveGameIsRejected(t *testing.T) {
	r := setupTestServer(t, nil)

	idx := 0
	w := doJSON(t, r, http.MethodPost, "/api/game/answer", map[string]interface{}{
		"question_id":    1,
		"selected_index": idx,
		"time_spent_sec": 0,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for answer without a game, got %d", w.Code)
	}
}

func TestProfileEndpointReturnsDefaultUser(t *testing.T) {
	r := setupTestServer(t, nil)

	var resp profile.ProfileResponse
	w := doJSON(t, r, http.MethodGet, "/api/profile", nil, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/profile: status %d", w.Code)
	}
	if resp.Profile == nil || resp.Profile.Name != "Player1" {
		t.Fatalf("unexpected profile: %+v", resp.Profile)
	}
	if resp.Stats == nil || resp.Stats.GamesPlayed != 0 {
		t.Fatalf("unexpected stats: %+v", resp.Stats)
	}
}
