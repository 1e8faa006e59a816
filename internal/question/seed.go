package question

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
	"gorm.io/gorm"
)

// ErrBadSeedHeader 表示种子CSV的表头与约定格式不符。
// 表头错误意味着整个文件格式不可信，初始化必须中止，而不是逐行跳过。
var ErrBadSeedHeader = errors.New("种子文件表头格式错误")

// seedHeader 是种子CSV唯一合法的表头，列序固定。
// correct_index 采用0基约定（0..3）。
var seedHeader = [...]string{"category", "text", "option1", "option2", "option3", "option4", "correct_index"}

// SeedFromCSV 从CSV文件向题库导入题目。
// 种子文件不存在时跳过导入（本地游戏允许空题库启动）；
// 表头不匹配是致命错误；单行数据非法则跳过该行并打印警告。
// 所有合法行在一个事务内写入，要么全部成功，要么一行不留。
func SeedFromCSV(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("警告: 种子文件 %s 不存在，跳过题库导入。\n", path)
			return 0, nil
		}
		return 0, fmt.Errorf("无法打开种子文件 %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 1. 校验表头
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			fmt.Printf("警告: 种子文件 %s 为空，跳过题库导入。\n", path)
			return 0, nil
		}
		return 0, fmt.Errorf("无法读取种子文件表头: %w", err)
	}
	if len(header) != len(seedHeader) {
		return 0, fmt.Errorf("%w: 期望 %v, 实际 %v", ErrBadSeedHeader, seedHeader, header)
	}
	for i, name := range seedHeader {
		if header[i] != name {
			return 0, fmt.Errorf("%w: 期望 %v, 实际 %v", ErrBadSeedHeader, seedHeader, header)
		}
	}

	// 2. 逐行解析，非法行跳过
	var questions []Question
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Printf("警告: 第%d行无法解析，已跳过: %v\n", line, err)
			continue
		}

		empty := false
		for _, field := range record {
			if field == "" {
				empty = true
				break
			}
		}
		if empty {
			fmt.Printf("警告: 第%d行存在空字段，已跳过: %v\n", line, record)
			continue
		}

		correctIndex, err := strconv.Atoi(record[6])
		if err != nil {
			fmt.Printf("警告: 第%d行correct_index不是整数，已跳过: %s\n", line, record[6])
			continue
		}
		if correctIndex < 0 || correctIndex > 3 {
			fmt.Printf("警告: 第%d行correct_index越界，已跳过: %d\n", line, correctIndex)
			continue
		}

		questions = append(questions, Question{
			Category:     record[0],
			Text:         record[1],
			Option1:      record[2],
			Option2:      record[3],
			Option3:      record[4],
			Option4:      record[5],
			CorrectIndex: correctIndex,
		})
	}

	if len(questions) == 0 {
		fmt.Printf("警告: 种子文件 %s 中没有任何合法题目。\n", path)
		return 0, nil
	}

	// 3. 一个事务内整体写入
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
	if err != nil {
		return 0, fmt.Errorf("写入种子题目失败: %w", err)
	}

	fmt.Printf("成功从 %s 导入 %d 道题目。\n", path, len(questions))
	return len(questions), nil
}
