package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库相关的配置
type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// SqliteConfig 定义了SQLite数据库文件的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// GameConfig 定义了游戏规则相关的配置
type GameConfig struct {
	// QuestionsPerGame 是一局游戏抽取的题目数量
	QuestionsPerGame int `mapstructure:"questionsPerGame"`
	// SeedFile 是首次启动时导入题库的CSV文件路径
	SeedFile string `mapstructure:"seedFile"`
	// DefaultUserName 是未登录时使用的默认档案名
	DefaultUserName string `mapstructure:"defaultUserName"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 本地游戏必须零配置可运行，因此找不到config.yaml时回退到内置默认值
func LoadConfig() (*Config, error) {
	// 1. 先加载 .env 文件（如果存在），让环境变量可以覆盖配置
	_ = godotenv.Load()

	v := viper.New()

	// 2. 设置配置文件名和类型
	v.SetConfigName("config") // 文件名 (不带扩展名)
	v.SetConfigType("yaml")   // 文件类型

	// 3. 添加配置文件搜索路径
	v.AddConfigPath("./config") // `config/config.yaml`
	v.AddConfigPath(".")        // `./config.yaml` (如果在根目录)

	// 4. 内置默认值：保证没有任何配置文件时也能启动
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.sqlite.path", "data/app.db")
	v.SetDefault("game.questionsPerGame", 10)
	v.SetDefault("game.seedFile", "data/seed_questions.csv")
	v.SetDefault("game.defaultUserName", "Player1")

	// 5. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 6. 读取配置文件；文件不存在不是错误，其他读取错误要上报
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		fmt.Println("未找到config.yaml，使用内置默认配置。")
	}

	// 7. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 8. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}
