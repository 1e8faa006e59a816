package profile

import (
	"fmt"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
)

// defaultUserID 是启动时确保存在的默认用户的ID。
// 没有Cookie的请求都会落到这个用户上。
var defaultUserID uint

// DefaultUserID 返回默认用户的ID。
func DefaultUserID() uint {
	return defaultUserID
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&User{}, &Result{}); err != nil {
		return fmt.Errorf("无法迁移profile相关表: %w", err)
	}
	fmt.Println("User/Result数据库表迁移成功。")
	return nil
}

// PrimeDB 是profile模块的初始化总入口。
// 迁移表结构后确保默认用户存在，使游戏无需注册即可开始。
func PrimeDB(defaultUserName string) error {
	if err := migrateDB(); err != nil {
		return err
	}

	id, err := EnsureDefaultUser(defaultUserName)
	if err != nil {
		return fmt.Errorf("无法确保默认用户存在: %w", err)
	}
	defaultUserID = id
	fmt.Printf("默认用户 [%s] 就绪，ID=%d。\n", defaultUserName, id)
	return nil
}
