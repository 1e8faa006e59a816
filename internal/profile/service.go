package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
	"gorm.io/gorm"
)

// 档案模块的错误类型。
// API层根据这些哨兵错误决定返回给前端的状态码和提示文案。
var (
	// ErrNotFound 表示引用的用户不存在
	ErrNotFound = errors.New("用户不存在")
	// ErrDuplicateName 表示显示名与其他用户冲突
	ErrDuplicateName = errors.New("用户名已被占用")
	// ErrInvalidName 表示显示名去除首尾空白后为空
	ErrInvalidName = errors.New("用户名不能为空")
	// ErrForeignKey 表示成绩记录引用了不存在的用户
	ErrForeignKey = errors.New("成绩引用的用户不存在")
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// ProfileDTO 包含了档案API所需的用户信息
type ProfileDTO struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	AvatarPath *string   `json:"avatar_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryStats 是单个分类的统计条目
type CategoryStats struct {
	Category string  `json:"category"`
	Games    int     `json:"games"`
	AvgScore float64 `json:"avg_score"`
}

// StatsDTO 是用户统计数据的规范形态。
// 没有任何成绩时返回全零形态，而不是错误。
type StatsDTO struct {
	GamesPlayed int             `json:"games_played"`
	BestScore   int             `json:"best_score"`
	AvgScore    float64         `json:"avg_score"`
	ByCategory  []CategoryStats `json:"by_category"`
}

// --- Service Functions ---

// CreateProfile 创建一个新的用户档案，返回新分配的用户ID。
// 显示名去除首尾空白后入库；空名和重名都会被拒绝。
func CreateProfile(name string, avatarPath *string) (uint, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, ErrInvalidName
	}

	var newUser User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 先显式查重，给出确定的错误类型；唯一索引兜底并发场景
		var count int64
		if err := tx.Model(&User{}).Where("name = ?", trimmed).Count(&count).Error; err != nil {
			return fmt.Errorf("无法检查用户名是否重复: %w", err)
		}
		if count > 0 {
			return ErrDuplicateName
		}

		newUser = User{
			Name:       trimmed,
			AvatarPath: avatarPath,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(&newUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return fmt.Errorf("无法创建用户档案: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newUser.ID, nil
}

// LoadProfile 按ID加载用户档案。
func LoadProfile(userID uint) (*ProfileDTO, error) {
	var user User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("无法加载用户档案: %w", err)
	}
	return &ProfileDTO{
		ID:         user.ID,
		Name:       user.Name,
		AvatarPath: user.AvatarPath,
		CreatedAt:  user.CreatedAt,
	}, nil
}

// UpdateProfile 更新用户档案中被提供的字段。
// name和avatarPath为nil表示保持不变；两者都为nil时是无操作。
// 新名字与当前名字相同时静默跳过；与其他用户冲突时返回ErrDuplicateName。
func UpdateProfile(userID uint, name *string, avatarPath *string) error {
	if name == nil && avatarPath == nil {
		return nil
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("无法加载待更新的用户: %w", err)
		}

		updates := map[string]interface{}{}

		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return ErrInvalidName
			}
			// 名字未变化时静默跳过，保证更新操作幂等
			if trimmed != user.Name {
				var count int64
				if err := tx.Model(&User{}).
					Where("name = ? AND id <> ?", trimmed, userID).
					Count(&count).Error; err != nil {
					return fmt.Errorf("无法检查用户名是否重复: %w", err)
				}
				if count > 0 {
					return ErrDuplicateName
				}
				updates["name"] = trimmed
			}
		}

		if avatarPath != nil {
			updates["avatar_path"] = *avatarPath
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return fmt.Errorf("无法更新用户档案: %w", err)
		}
		return nil
	})
}

// SaveResult 追加一条对局成绩。
// 用户不存在时返回ErrForeignKey并拒绝写入——静默丢弃成绩是数据丢失bug。
func SaveResult(userID uint, score int, durationSec int, category string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("无法检查成绩所属用户: %w", err)
		}
		if count == 0 {
			return ErrForeignKey
		}

		result := Result{
			UserID:      userID,
			Category:    category,
			Score:       score,
			DurationSec: durationSec,
			PlayedAt:    time.Now(),
		}
		if err := tx.Create(&result).Error; err != nil {
			return fmt.Errorf("无法保存对局成绩: %w", err)
		}
		return nil
	})
}

// GetStats 汇总某个用户的历史成绩。
// 从未玩过的用户得到全零的统计形态，分类列表按名称升序。
func GetStats(userID uint) (*StatsDTO, error) {
	var overall struct {
		GamesPlayed int
		BestScore   int
		AvgScore    float64
	}
	err := database.DB.Model(&Result{}).
		Select("COUNT(*) AS games_played, COALESCE(MAX(score), 0) AS best_score, COALESCE(AVG(score), 0) AS avg_score").
		Where("user_id = ?", userID).
		Scan(&overall).Error
	if err != nil {
		return nil, fmt.Errorf("无法汇总用户成绩: %w", err)
	}

	stats := &StatsDTO{
		GamesPlayed: overall.GamesPlayed,
		BestScore:   overall.BestScore,
		AvgScore:    round2(overall.AvgScore),
		ByCategory:  []CategoryStats{},
	}
	if overall.GamesPlayed == 0 {
		return stats, nil
	}

	var rows []struct {
		Category string
		Games    int
		AvgScore float64
	}
	err = database.DB.Model(&Result{}).
		Select("category, COUNT(*) AS games, AVG(score) AS avg_score").
		Where("user_id = ?", userID).
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法按分类汇总用户成绩: %w", err)
	}

	for _, row := range rows {
		stats.ByCategory = append(stats.ByCategory, CategoryStats{
			Category: row.Category,
			Games:    row.Games,
			AvgScore: round2(row.AvgScore),
		})
	}
	return stats, nil
}

// EnsureDefaultUser 查找或创建配置的默认用户，返回其ID。
// 重复调用是幂等的；名字的唯一索引是真正的幂等保证。
func EnsureDefaultUser(name string) (uint, error) {
	var user User
	err := database.DB.Where("name = ?", name).First(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("无法查找默认用户: %w", err)
	}
	return CreateProfile(name, nil)
}

// round2 将平均分保留两位小数。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
