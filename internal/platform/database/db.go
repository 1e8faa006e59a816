package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/SlpAus/quiz-game-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例，供项目其他部分使用
var DB *gorm.DB

// Open 按指定路径打开一个SQLite数据库连接。
// SQLite默认不启用外键约束，这里通过DSN参数强制开启，
// 否则results到users的引用完整性形同虚设。
func Open(path string, mode string) (*gorm.DB, error) {
	// 确保数据库文件所在目录存在
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("无法创建数据库目录 %s: %w", dir, err)
		}
	}

	// GORM日志配置
	logLevel := logger.Silent
	if mode == "debug" {
		logLevel = logger.Warn
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logLevel,
			Colorful:      true,
		},
	)

	dsn := path + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(cfg config.SqliteConfig, mode string) {
	db, err := Open(cfg.Path, mode)
	if err != nil {
		panic(err)
	}
	DB = db
	fmt.Println("数据库连接成功！")
}
