package repository

import (
	"context"
	"course_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

// FindTest loads a test with its questions in order.
func (r *TestRepository) FindTest(ctx context.Context, id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number ASC, id ASC")
		}).
		First(&test, id).Error
	return &test, err
}

// RecordSubmission appends the attempt and stores its percentage as the
// module test score in one transaction. Attempts are never updated or deleted.
func (r *TestRepository) RecordSubmission(ctx context.Context, attempt *model.TestAttempt, moduleID uint, score float64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		return upsertTestScore(tx, attempt.UserID, moduleID, score, attempt.Passed, attempt.CompletedAt)
	})
}

// ListAttemptsByUser returns every attempt of a learner across all tests.
func (r *TestRepository) ListAttemptsByUser(ctx context.Context, userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *TestRepository) ListAttempts(ctx context.Context, userID, testID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND test_id = ?", userID, testID).
		Order("completed_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}
