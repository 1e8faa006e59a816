package api

import (
	"github.com/SlpAus/quiz-game-backend/internal/profile"
	"github.com/SlpAus/quiz-game-backend/internal/session"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 分类列表
		api.GET("/categories", session.GetCategories)

		// 对局相关的路由组
		game := api.Group("/game", profile.ActiveUserMiddleware())
		{
			game.POST("/start", session.StartGame)
			game.POST("/answer", session.SubmitAnswer)
			game.POST("/expired", session.TimeExpired)
			game.POST("/quit", session.QuitGame)
			game.GET("/state", session.GetGameState)
		}

		// 档案相关的路由组
		prof := api.Group("/profile", profile.ActiveUserMiddleware())
		{
			prof.GET("", profile.GetProfile)
			prof.PUT("", profile.PutProfile)
			prof.GET("/stats", profile.GetUserStats)
		}
	}
}
