package session

import (
	"fmt"

	"github.com/SlpAus/quiz-game-backend/internal/platform/config"
	"github.com/SlpAus/quiz-game-backend/internal/question"
)

// questionsPerGame 是一局游戏抽取的题目数量，来自配置
var questionsPerGame = 10

// ConfigureModule 按配置设定session模块的游戏规则参数。
func ConfigureModule(cfg config.GameConfig) {
	if cfg.QuestionsPerGame > 0 {
		questionsPerGame = cfg.QuestionsPerGame
	}
}

// PrimeModule 是session模块的初始化总入口。
// 会话本身是纯内存状态，这里只做启动自检：没有题目不算错误，
// 但要提醒运维这局游戏开起来会立即结束。
func PrimeModule() error {
	count, err := question.Count()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("警告: 题库为空，任何分类开局都会立即结束。")
	} else {
		fmt.Printf("Session模块就绪，题库共 %d 道题目，每局抽取 %d 道。\n", count, questionsPerGame)
	}
	return nil
}
