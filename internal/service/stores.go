package service

import (
	"context"
	"course_backend/internal/model"
	"time"
)

// The stores below are implemented by internal/repository. Services depend
// on them through these interfaces so they can be tested with in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
	ListIDs(ctx context.Context) ([]uint, error)
}

type CatalogStore interface {
	ListModules(ctx context.Context) ([]model.Module, error)
	ListLessons(ctx context.Context) ([]model.Lesson, error)
	FindModule(ctx context.Context, id uint) (*model.Module, error)
	FindLesson(ctx context.Context, id uint) (*model.Lesson, error)
	CreateModule(ctx context.Context, m *model.Module) error
	CreateLesson(ctx context.Context, l *model.Lesson) error
	SaveTest(ctx context.Context, test *model.Test) error
	CreateAssignment(ctx context.Context, a *model.Assignment) error
	FindAssignment(ctx context.Context, id uint) (*model.Assignment, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
}

type AttemptStore interface {
	FindTest(ctx context.Context, id uint) (*model.Test, error)
	// RecordSubmission stores the attempt and the module test score
	// atomically.
	RecordSubmission(ctx context.Context, attempt *model.TestAttempt, moduleID uint, score float64) error
	ListAttemptsByUser(ctx context.Context, userID uint) ([]model.TestAttempt, error)
	ListAttempts(ctx context.Context, userID, testID uint) ([]model.TestAttempt, error)
}

type ProgressStore interface {
	UpsertLessonCompletion(ctx context.Context, userID, moduleID, lessonID uint, at time.Time) error
	ListLessonCompletions(ctx context.Context, userID uint) ([]model.UserProgress, error)
	ListTestScores(ctx context.Context, userID uint) ([]model.UserProgress, error)
	ResetLessonProgress(ctx context.Context, userID uint) (int64, error)
}

type ProfileStore interface {
	Find(ctx context.Context, userID uint) (*model.UserProfile, error)
	SaveGrade(ctx context.Context, userID uint, grade *float64, completed int, at time.Time) error
	IssueCertificate(ctx context.Context, userID uint, number string, at time.Time) (bool, error)
}

type AccessStore interface {
	Grant(ctx context.Context, access *model.CourseAccess) (bool, error)
	HasAccess(ctx context.Context, userID uint, courseSlug string) (bool, error)
	AddExemption(ctx context.Context, e *model.ModuleAccessExemption) error
	RemoveExemption(ctx context.Context, userID, moduleID uint) (int64, error)
	ListExemptModuleIDs(ctx context.Context, userID uint) ([]uint, error)
}

type SubmissionStore interface {
	CreateAssignmentSubmission(ctx context.Context, s *model.AssignmentSubmission) error
	ListAssignmentSubmissions(ctx context.Context, assignmentID, userID uint) ([]model.AssignmentSubmission, error)
	SaveProject(ctx context.Context, p *model.Project) error
	FindProject(ctx context.Context, userID uint) (*model.Project, error)
}

// ModuleGate decides whether a learner may work inside a module.
type ModuleGate interface {
	EnsureModuleOpen(ctx context.Context, userID, moduleID uint) error
}
