package profile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/SlpAus/quiz-game-backend/internal/platform/database"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), "test")
	if err != nil {
		t.Fatalf("database.Open failed: %v", err)
	}
	database.DB = db
	if err := migrateDB(); err != nil {
		t.Fatalf("migrateDB failed: %v", err)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	setupTestDB(t)

	id, err := CreateProfile("Alice", nil)
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a non-zero user id")
	}

	if _, err := CreateProfile("Alice", nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	// 名字先去除首尾空白再查重
	if _, err := CreateProfile("  Alice  ", nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName for padded name, got %v", err)
	}
	if _, err := CreateProfile("   ", nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestLoadProfile(t *testing.T) {
	setupTestDB(t)

	avatar := "avatars/alice.png"
	id, err := CreateProfile("Alice", &avatar)
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	dto, err := LoadProfile(id)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if dto.Name != "Alice" || dto.AvatarPath == nil || *dto.AvatarPath != avatar {
		t.Fatalf("unexpected profile: %+v", dto)
	}
	if dto.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp to be set")
	}

	if _, err := LoadProfile(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB(t)

	aliceID, err := CreateProfile("Alice", nil)
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	if _, err := CreateProfile("Bob", nil); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	// 两个字段都缺省：无操作，也不是错误
	if err := UpdateProfile(aliceID, nil, nil); err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}

	// 新名字与当前名字相同：静默跳过
	same := "Alice"
	if err := UpdateProfile(aliceID, &same, nil); err != nil {
		t.Fatalf("idempotent rename failed: %v", err)
	}

	// 与另一个用户冲突
	bob := "Bob"
	if err := UpdateProfile(aliceID, &bob, nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	// 空名字
	blank := "   "
	if err := UpdateProfile(aliceID, &blank, nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	// 用户不存在
	name := "Carol"
	if err := UpdateProfile(9999, &name, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// 正常改名加头像
	avatar := "avatars/new.png"
	renamed := "Alice2"
	if err := UpdateProfile(aliceID, &renamed, &avatar); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	dto, err := LoadProfile(aliceID)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if dto.Name != "Alice2" || dto.AvatarPath == nil || *dto.AvatarPath != avatar {
		t.Fatalf("update not applied: %+v", dto)
	}
}

func TestSaveResultRequiresExistingUser(t *testing.T) {
	setupTestDB(t)

	if err := SaveResult(9999, 100, 30, "science"); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}

	var count int64
	if err := database.DB.Model(&Result{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected result was still persisted")
	}
}

func TestGetStatsZeroShape(t *testing.T) {
	setupTestDB(t)

	id, err := CreateProfile("Alice", nil)
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	stats, err := GetStats(id)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 0 || stats.BestScore != 0 || stats.AvgScore != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if stats.ByCategory == nil || len(stats.ByCategory) != 0 {
		t.Fatalf("expected empty (non-nil) category list, got %+v", stats.ByCategory)
	}
}

func TestGetStatsAggregation(t *testing.T) {
	setupTestDB(t)

	id, err := CreateProfile("Alice", nil)
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}

	results := []struct {
		score    int
		duration int
		category string
	}{
		{250, 45, "science"},
		{150, 30, "science"},
		{100, 20, "art"},
	}
	for _, r := range results {
		if err := SaveResult(id, r.score, r.duration, r.category); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	stats, err := GetStats(id)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.GamesPlayed != 3 {
		t.Fatalf("games_played = %d, want 3", stats.GamesPlayed)
	}
	if stats.BestScore != 250 {
		t.Fatalf("best_score = %d, want 250", stats.BestScore)
	}
	if stats.AvgScore != 166.67 {
		t.Fatalf("avg_score = %v, want 166.67", stats.AvgScore)
	}

	// 分类按名称升序
	if len(stats.ByCategory) != 2 {
		t.Fatalf("expected 2 category entries, got %+v", stats.ByCategory)
	}
	art, science := stats.ByCategory[0], stats.ByCategory[1]
	if art.Category != "art" || art.Games != 1 || art.AvgScore != 100 {
		t.Fatalf("unexpected art entry: %+v", art)
	}
	if science.Category != "science" || science.Games != 2 || science.AvgScore != 200 {
		t.Fatalf("unexpected science entry: %+v", science)
	}
}

func TestEnsureDefaultUserIsIdempotent(t *testing.T) {
	setupTestDB(t)

	first, err := EnsureDefaultUser("Player1")
	if err != nil {
		t.Fatalf("EnsureDefaultUser failed: %v", err)
	}
	second, err := EnsureDefaultUser("Player1")
	if err != nil {
		t.Fatalf("EnsureDefaultUser failed: %v", err)
	}
	if first != second {
		t.Fatalf("default user id changed between calls: %d vs %d", first, second)
	}

	var count int64
	if err := database.DB.Model(&User{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one user row, got %d", count)
	}
}
