package repository

import (
	"context"
	"course_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) Find(ctx context.Context, userID uint) (*model.UserProfile, error) {
	var p model.UserProfile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

// SaveGrade overwrites the cached grade and module count. Certificate columns
// are left as they are.
func (r *ProfileRepository) SaveGrade(ctx context.Context, userID uint, grade *float64, completed int, at time.Time) error {
	p := model.UserProfile{
		UserID:               userID,
		OverallGrade:         grade,
		CompletedModuleCount: completed,
		GradeComputedAt:      &at,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"overall_grade", "completed_module_count", "grade_computed_at", "updated_at"}),
	}).Create(&p).Error
}

// IssueCertificate sets the certificate on a profile that does not have one
// yet. It reports false when the certificate was already earned; the update
// never clears the flag.
func (r *ProfileRepository) IssueCertificate(ctx context.Context, userID uint, number string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.UserProfile{}).
		Where("user_id = ? AND certificate_earned = ?", userID, false).
		Updates(map[string]interface{}{
			"certificate_earned":    true,
			"certificate_issued_at": at,
			"certificate_number":    number,
		})
	return res.RowsAffected == 1, res.Error
}
