package repository

import (
	"context"
	"course_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessRepository stores purchases and per-module exemptions.
type AccessRepository struct {
	DB *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: db}
}

// Grant stores a purchase. Replaying the same checkout session is a no-op and
// reports false.
func (r *AccessRepository) Grant(ctx context.Context, access *model.CourseAccess) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "checkout_session_id"}},
		DoNothing: true,
	}).Create(access)
	return res.RowsAffected == 1, res.Error
}

func (r *AccessRepository) HasAccess(ctx context.Context, userID uint, courseSlug string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CourseAccess{}).
		Where("user_id = ? AND course_slug = ?", userID, courseSlug).
		Count(&count).Error
	return count > 0, err
}

func (r *AccessRepository) AddExemption(ctx context.Context, e *model.ModuleAccessExemption) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(e).Error
}

func (r *AccessRepository) RemoveExemption(ctx context.Context, userID, moduleID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Delete(&model.ModuleAccessExemption{})
	return res.RowsAffected, res.Error
}

func (r *AccessRepository) ListExemptModuleIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.ModuleAccessExemption{}).
		Where("user_id = ?", userID).
		Pluck("module_id", &ids).Error
	return ids, err
}
