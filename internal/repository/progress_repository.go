package repository

import (
	"context"
	"course_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// UpsertLessonCompletion marks a lesson done. A repeat completion keeps the
// single row and only moves completed_at.
func (r *ProgressRepository) UpsertLessonCompletion(ctx context.Context, userID, moduleID, lessonID uint, at time.Time) error {
	row := model.UserProgress{
		UserID:      userID,
		ModuleID:    moduleID,
		LessonID:    &lessonID,
		Completed:   true,
		CompletedAt: &at,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"module_id", "completed", "completed_at", "updated_at"}),
	}).Create(&row).Error
}

// upsertTestScore records the latest score of a module test on the module
// row (lesson_id NULL), keyed by the (user_id, score_module_id) unique index.
func upsertTestScore(tx *gorm.DB, userID, moduleID uint, score float64, passed bool, at time.Time) error {
	row := model.UserProgress{
		UserID:        userID,
		ModuleID:      moduleID,
		ScoreModuleID: &moduleID,
		Completed:     passed,
		TestScore:     &score,
		CompletedAt:   &at,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "score_module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"test_score", "completed", "completed_at", "updated_at"}),
	}).Create(&row).Error
}

// ListLessonCompletions returns the completed lesson rows of a learner.
func (r *ProgressRepository) ListLessonCompletions(ctx context.Context, userID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id IS NOT NULL AND completed = ?", userID, true).
		Find(&rows).Error
	return rows, err
}

// ListTestScores returns the module rows that carry a test score.
func (r *ProgressRepository) ListTestScores(ctx context.Context, userID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id IS NULL", userID).
		Order("module_id ASC").
		Find(&rows).Error
	return rows, err
}

// ResetLessonProgress deletes every lesson row of a learner and reports how
// many went away. Test scores and attempts are kept.
func (r *ProgressRepository) ResetLessonProgress(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id IS NOT NULL", userID).
		Delete(&model.UserProgress{})
	return res.RowsAffected, res.Error
}
