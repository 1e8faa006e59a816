package question

import (
	"fmt"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Question{}); err != nil {
		return fmt.Errorf("无法迁移question表: %w", err)
	}
	fmt.Println("Question数据库表迁移成功。")
	return nil
}

// PrimeDB 是question模块的初始化总入口。
// 迁移表结构后，仅在题库为空时才执行一次种子导入。
func PrimeDB(seedFile string) error {
	if err := migrateDB(); err != nil {
		return err
	}

	count, err := Count()
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("题库已有 %d 道题目，跳过种子导入。\n", count)
		return nil
	}

	if _, err := SeedFromCSV(seedFile); err != nil {
		return err
	}
	return nil
}
