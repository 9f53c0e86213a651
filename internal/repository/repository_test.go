package repository

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/model"
	"course_backend/pkg/database"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedCatalog creates two modules with two lessons each and a test on the first.
func seedCatalog(t *testing.T, db *gorm.DB) []model.Module {
	t.Helper()
	ctx := context.Background()
	repo := NewModuleRepository(db)

	var modules []model.Module
	for i := 1; i <= 2; i++ {
		m := &model.Module{Position: i, Title: "Module"}
		require.NoError(t, repo.CreateModule(ctx, m))
		for p := 2; p >= 1; p-- {
			require.NoError(t, repo.CreateLesson(ctx, &model.Lesson{ModuleID: m.ID, Position: p, Title: "Lesson"}))
		}
		modules = append(modules, *m)
	}
	require.NoError(t, repo.SaveTest(ctx, &model.Test{
		ModuleID:     modules[0].ID,
		Title:        "Quiz",
		PassingScore: 80,
		Questions: []model.TestQuestion{
			{OrderNumber: 2, Question: "q2", CorrectAnswer: "b"},
			{OrderNumber: 1, Question: "q1", CorrectAnswer: "a"},
		},
	}))
	return modules
}
