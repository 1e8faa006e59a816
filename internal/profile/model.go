package profile

import "time"

// User 定义了玩家档案在SQLite数据库中的持久化模型。
// 档案只会被创建和更新，本系统从不删除用户。
type User struct {
	// ID 是用户的自增主键
	ID uint `gorm:"primarykey"`

	// Name 是用户的显示名，全局唯一且非空
	Name string `gorm:"uniqueIndex;not null"`

	// AvatarPath 是头像文件的路径，可以为空
	AvatarPath *string

	// CreatedAt 是档案的创建时间，由创建操作固定写入
	CreatedAt time.Time
}

// Result 定义了一局游戏结束后落库的成绩记录。
// 记录只追加，从不修改或删除；删除用户时由数据库级联清理其成绩。
type Result struct {
	// ID 是成绩记录的自增主键
	ID uint `gorm:"primarykey"`

	// UserID 是成绩所属用户，带外键约束
	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// Category 是这局游戏所玩的分类
	Category string `gorm:"not null;index"`

	// Score 是这局游戏的最终得分
	Score int `gorm:"not null"`

	// DurationSec 是这局游戏耗费的秒数
	DurationSec int `gorm:"not null"`

	// PlayedAt 是成绩落库的时间
	PlayedAt time.Time
}
