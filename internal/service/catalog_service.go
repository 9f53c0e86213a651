package service

import (
	"context"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CatalogService serves the module list and owns admin catalog writes.
type CatalogService struct {
	Catalog             CatalogStore
	Cache               CatalogCache
	DefaultPassingScore int
}

func NewCatalogService(catalog CatalogStore, cache CatalogCache, defaultPassingScore int) *CatalogService {
	if cache == nil {
		cache = noopCatalogCache{}
	}
	if defaultPassingScore <= 0 {
		defaultPassingScore = model.DefaultPassingScore
	}
	return &CatalogService{Catalog: catalog, Cache: cache, DefaultPassingScore: defaultPassingScore}
}

type CreateModuleRequest struct {
	Order       int    `json:"order" binding:"required,min=1"`
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

type CreateLessonRequest struct {
	Order    int    `json:"order" binding:"required,min=1"`
	Title    string `json:"title" binding:"required,max=255"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl" binding:"omitempty,url"`
}

type QuestionInput struct {
	Question      string `json:"question" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer" binding:"required,answer_choice"`
}

type SaveTestRequest struct {
	Title        string          `json:"title" binding:"required,max=255"`
	PassingScore int             `json:"passingScore" binding:"omitempty,min=0,max=100"`
	Questions    []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

type CreateAssignmentRequest struct {
	Title        string     `json:"title" binding:"required,max=255"`
	Instructions string     `json:"instructions"`
	DueAt        *time.Time `json:"dueAt"`
}

// ListModules returns the catalog in course order.
func (s *CatalogService) ListModules(ctx context.Context) ([]model.Module, error) {
	if modules, ok := s.Cache.Get(ctx); ok {
		return modules, nil
	}

	modules, err := s.Catalog.ListModules(ctx)
	if err != nil {
		return nil, util.NewPersistenceError("list modules", err)
	}
	if err := s.Cache.Set(ctx, modules); err != nil {
		logger.Log.Warn("Failed to cache catalog", zap.Error(err))
	}
	return modules, nil
}

func (s *CatalogService) CreateModule(ctx context.Context, req CreateModuleRequest) (*model.Module, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	m := &model.Module{Position: req.Order, Title: strings.TrimSpace(req.Title), Description: req.Description}
	if err := s.Catalog.CreateModule(ctx, m); err != nil {
		return nil, util.NewPersistenceError("create module", err)
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *CatalogService) AddLesson(ctx context.Context, moduleID uint, req CreateLessonRequest) (*model.Lesson, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Catalog.FindModule(ctx, moduleID); err != nil {
		return nil, util.NewPersistenceError("find module", err)
	}
	l := &model.Lesson{
		ModuleID: moduleID,
		Position: req.Order,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		VideoURL: req.VideoURL,
	}
	if err := s.Catalog.CreateLesson(ctx, l); err != nil {
		return nil, util.NewPersistenceError("create lesson", err)
	}
	s.invalidate(ctx)
	return l, nil
}

// SaveTest creates or replaces the test of a module.
func (s *CatalogService) SaveTest(ctx context.Context, moduleID uint, req SaveTestRequest) (*model.Test, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if len(req.Questions) == 0 {
		return nil, util.Invalid("questions", "a test needs at least one question")
	}

	var fields []util.FieldError
	for i, q := range req.Questions {
		if !util.IsAnswerChoice(strings.ToLower(q.CorrectAnswer)) {
			fields = append(fields, util.FieldError{
				Field: fmt.Sprintf("questions[%d].correctAnswer", i),
				Error: "must be one of a, b, c, d",
			})
		}
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError(errors.New("invalid questions"), fields...)
	}

	if _, err := s.Catalog.FindModule(ctx, moduleID); err != nil {
		return nil, util.NewPersistenceError("find module", err)
	}

	passing := req.PassingScore
	if passing == 0 {
		passing = s.DefaultPassingScore
	}
	test := &model.Test{ModuleID: moduleID, Title: strings.TrimSpace(req.Title), PassingScore: passing}
	for i, q := range req.Questions {
		test.Questions = append(test.Questions, model.TestQuestion{
			OrderNumber:   i + 1,
			Question:      q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: strings.ToLower(q.CorrectAnswer),
		})
	}
	if err := s.Catalog.SaveTest(ctx, test); err != nil {
		return nil, util.NewPersistenceError("save test", err)
	}
	s.invalidate(ctx)
	return test, nil
}

func (s *CatalogService) AddAssignment(ctx context.Context, moduleID uint, req CreateAssignmentRequest) (*model.Assignment, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Catalog.FindModule(ctx, moduleID); err != nil {
		return nil, util.NewPersistenceError("find module", err)
	}
	a := &model.Assignment{
		ModuleID:     moduleID,
		Title:        strings.TrimSpace(req.Title),
		Instructions: req.Instructions,
		DueAt:        req.DueAt,
	}
	if err := s.Catalog.CreateAssignment(ctx, a); err != nil {
		return nil, util.NewPersistenceError("create assignment", err)
	}
	s.invalidate(ctx)
	return a, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}
