package repository

import (
	"context"
	"course_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) CreateAssignmentSubmission(ctx context.Context, s *model.AssignmentSubmission) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *SubmissionRepository) ListAssignmentSubmissions(ctx context.Context, assignmentID, userID uint) ([]model.AssignmentSubmission, error) {
	var list []model.AssignmentSubmission
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Order("submitted_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// SaveProject creates the learner's project or overwrites the previous one.
func (r *SubmissionRepository) SaveProject(ctx context.Context, p *model.Project) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "repository_url", "file_url", "submitted_at", "updated_at"}),
	}).Create(p).Error
}

func (r *SubmissionRepository) FindProject(ctx context.Context, userID uint) (*model.Project, error) {
	var p model.Project
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return &p, err
}
