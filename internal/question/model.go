package question

// Question 定义了题库中一道题在SQLite数据库中的持久化模型。
// 题目一旦导入即为只读数据，对局中持有的是它的拷贝。
type Question struct {
	// ID 是题目的自增主键，在一次对局内保持稳定
	ID uint `gorm:"primarykey" json:"id"`

	// Category 是题目的分类标签，例如 "science"
	Category string `gorm:"not null;index" json:"category"`

	// Text 是题干文本
	Text string `gorm:"not null" json:"text"`

	// Option1..Option4 是四个固定的选项
	Option1 string `gorm:"not null" json:"-"`
	Option2 string `gorm:"not null" json:"-"`
	Option3 string `gorm:"not null" json:"-"`
	Option4 string `gorm:"not null" json:"-"`

	// CorrectIndex 是正确选项的下标，约定为0基（0..3）
	CorrectIndex int `gorm:"not null;check:correct_index BETWEEN 0 AND 3" json:"-"`
}

// Options 以切片形式返回四个选项，方便序列化到API响应。
func (q *Question) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}
