package repository

import (
	"context"
	"course_backend/internal/model"
	"errors"

	"gorm.io/gorm"
)

// ModuleRepository reads and writes the course catalog: modules, lessons,
// tests and assignments.
type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

// ListModules returns the catalog in course order with lessons, test header
// and assignments preloaded. Questions are not loaded.
func (r *ModuleRepository) ListModules(ctx context.Context) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Test").
		Preload("Assignments").
		Order("position ASC, id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) ListLessons(ctx context.Context) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).Order("module_id ASC, position ASC, id ASC").Find(&lessons).Error
	return lessons, err
}

func (r *ModuleRepository) FindModule(ctx context.Context, id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *ModuleRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var l model.Lesson
	err := r.DB.WithContext(ctx).First(&l, id).Error
	return &l, err
}

func (r *ModuleRepository) CreateModule(ctx context.Context, m *model.Module) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *ModuleRepository) CreateLesson(ctx context.Context, l *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(l).Error
}

// SaveTest creates or replaces the test of test.ModuleID together with its
// questions.
func (r *ModuleRepository) SaveTest(ctx context.Context, test *model.Test) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Test
		err := tx.Where("module_id = ?", test.ModuleID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(test).Error
		case err != nil:
			return err
		}

		if err := tx.Unscoped().Where("test_id = ?", existing.ID).Delete(&model.TestQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"title":         test.Title,
			"passing_score": test.PassingScore,
		}).Error; err != nil {
			return err
		}

		test.ID = existing.ID
		test.CreatedAt = existing.CreatedAt
		for i := range test.Questions {
			test.Questions[i].ID = 0
			test.Questions[i].TestID = existing.ID
		}
		if len(test.Questions) == 0 {
			return nil
		}
		return tx.Create(&test.Questions).Error
	})
}

func (r *ModuleRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *ModuleRepository) FindAssignment(ctx context.Context, id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *ModuleRepository) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.DB.WithContext(ctx).Order("module_id ASC, id ASC").Find(&list).Error
	return list, err
}
