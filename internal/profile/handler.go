package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequestBody 定义了更新档案时请求体的JSON结构。
// 缺省的字段保持不变。
type UpdateProfileRequestBody struct {
	Name       *string `json:"name"`
	AvatarPath *string `json:"avatar_path"`
}

// ProfileResponse 是档案相关API的统一响应：档案加统计。
// 原版UI的“打开档案”页面同时展示两者。
type ProfileResponse struct {
	Profile *ProfileDTO `json:"profile"`
	Stats   *StatsDTO   `json:"stats"`
}

// GetProfile 返回当前活动用户的档案和统计数据
func GetProfile(c *gin.Context) {
	userID := ActiveUserID(c)

	dto, err := LoadProfile(userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	stats, err := GetStats(userID)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: dto, Stats: stats})
}

// PutProfile 更新当前活动用户的显示名和/或头像
func PutProfile(c *gin.Context) {
	var body UpdateProfileRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	userID := ActiveUserID(c)
	if err := UpdateProfile(userID, body.Name, body.AvatarPath); err != nil {
		respondProfileError(c, err)
		return
	}

	// 更新成功后回显最新的档案页数据
	GetProfile(c)
}

// GetUserStats 只返回当前活动用户的统计数据
func GetUserStats(c *gin.Context) {
	stats, err := GetStats(ActiveUserID(c))
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// respondProfileError 将服务层错误映射为HTTP状态码
func respondProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "档案存储暂时不可用"})
	}
}
