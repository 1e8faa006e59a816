package profile

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CookieName   = "user-id"
	CookieMaxAge = 365 * 24 * 60 * 60
	UserIDKey    = "userID"
)

// ActiveUserMiddleware 确定当前请求的活动用户。
// Cookie中携带合法的用户ID时使用它；否则回退到默认用户并重新下发Cookie。
// 处理器随后从 Gin 上下文的 UserIDKey 中读取活动用户ID。
func ActiveUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := defaultUserID

		if raw, err := c.Cookie(CookieName); err == nil {
			if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
				// Cookie里的ID必须指向真实存在的用户
				if _, err := LoadProfile(uint(parsed)); err == nil {
					userID = uint(parsed)
				}
			}
		}

		if userID == defaultUserID {
			c.SetCookie(CookieName, strconv.FormatUint(uint64(defaultUserID), 10), CookieMaxAge, "/", "", false, true)
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// ActiveUserID 从Gin上下文中取出活动用户ID。
func ActiveUserID(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return defaultUserID
}
