package question

import (
	"errors"
	"fmt"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
)

// ErrStoreUnavailable 表示题库存储无法访问。
// 调用方（API层）据此向用户展示“服务不可用”，而不是笼统的内部错误。
var ErrStoreUnavailable = errors.New("题库存储不可用")

// ListCategories 返回题库中所有不同的分类标签，按名称升序。
func ListCategories() ([]string, error) {
	var categories []string
	err := database.DB.Model(&Question{}).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("%w: 无法读取分类列表: %v", ErrStoreUnavailable, err)
	}
	return categories, nil
}

// GetByCategory 返回指定分类下的全部题目，保持存储顺序。
// 分类不存在时返回空切片，不视为错误。
func GetByCategory(category string) ([]Question, error) {
	var questions []Question
	err := database.DB.Where("category = ?", category).Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: 无法读取分类 %s 的题目: %v", ErrStoreUnavailable, category, err)
	}
	return questions, nil
}

// Count 返回题库中题目的总数。
func Count() (int64, error) {
	var count int64
	if err := database.DB.Model(&Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: 无法统计题目数量: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}
