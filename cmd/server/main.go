package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/quiz-game-backend/api"
	"github.com/SlpAus/quiz-game-backend/internal/platform/config"
	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
	"github.com/SlpAus/quiz-game-backend/internal/platform/shutdown"
	"github.com/SlpAus/quiz-game-backend/internal/platform/startup"
	"github.com/SlpAus/quiz-game-backend/internal/session"
	"github.com/SlpAus/quiz-game-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置并初始化数据库
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("配置加载失败，无法启动: %v", err))
	}
	database.InitDB(cfg.Database.Sqlite, cfg.Server.Mode)

	// 2. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(cfg); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 3. 创建生命周期管理器，并注册倒计时监督器
	manager := lifecycle.NewManager()
	if err := session.StartCountdownSupervisor(manager); err != nil {
		panic(fmt.Sprintf("无法启动倒计时监督器: %v", err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	// 4. 异步启动HTTP服务器，主goroutine负责停机编排
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(manager)
	coordinator.ListenForSignalsAndShutdown(server)
}
