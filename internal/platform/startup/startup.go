package startup

import (
	"fmt"

	"github.com/SlpAus/quiz-game-backend/internal/platform/config"
	"github.com/SlpAus/quiz-game-backend/internal/profile"
	"github.com/SlpAus/quiz-game-backend/internal/question"
	"github.com/SlpAus/quiz-game-backend/internal/session"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 按依赖顺序初始化各模块：先题库和档案落库，再装配会话规则。
func InitializeApplication(cfg *config.Config) error {
	fmt.Println("开始应用首次初始化...")

	if err := question.PrimeDB(cfg.Game.SeedFile); err != nil {
		return err
	}
	if err := profile.PrimeDB(cfg.Game.DefaultUserName); err != nil {
		return err
	}

	session.ConfigureModule(cfg.Game)
	if err := session.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
