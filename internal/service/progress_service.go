package service

import (
	"context"
	"course_backend/internal/config"
	"course_backend/internal/grading"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"course_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressService owns lesson progress and decides which modules a learner
// may enter.
type ProgressService struct {
	Catalog  CatalogStore
	Progress ProgressStore
	Access   AccessStore
	Course   config.CourseConfig
	now      func() time.Time
}

func NewProgressService(catalog CatalogStore, progress ProgressStore, access AccessStore, course config.CourseConfig) *ProgressService {
	return &ProgressService{
		Catalog:  catalog,
		Progress: progress,
		Access:   access,
		Course:   course,
		now:      time.Now,
	}
}

type ModuleProgress struct {
	grading.ModuleState
	Title      string   `json:"title"`
	Order      int      `json:"order"`
	Free       bool     `json:"free"`
	TestID     *uint    `json:"testId,omitempty"`
	TestScore  *float64 `json:"testScore,omitempty"`
	TestPassed bool     `json:"testPassed"`
}

type CourseProgress struct {
	CourseSlug       string           `json:"courseSlug"`
	HasAccess        bool             `json:"hasAccess"`
	CompletedModules int              `json:"completedModules"`
	TotalModules     int              `json:"totalModules"`
	Modules          []ModuleProgress `json:"modules"`
}

type ExemptionRequest struct {
	ModuleID uint   `json:"moduleId" binding:"required"`
	Reason   string `json:"reason" binding:"max=255"`
}

// snapshot is everything the unlock evaluator needs for one learner.
type snapshot struct {
	modules     []model.Module
	lessons     []model.Lesson
	completions []model.UserProgress
	scores      []model.UserProgress
	exempt      []uint
	hasAccess   bool
}

// load fetches the catalog and the learner's rows concurrently. Any failed
// read fails the whole snapshot.
func (s *ProgressService) load(ctx context.Context, userID uint) (*snapshot, error) {
	ctx, span := tracing.Start(ctx, "progress.load", attribute.Int64("user.id", int64(userID)))
	var err error
	defer func() { tracing.End(span, err) }()

	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		modules, err := s.Catalog.ListModules(gctx)
		if err != nil {
			return util.NewPersistenceError("list modules", err)
		}
		snap.modules = modules
		return nil
	})
	g.Go(func() error {
		lessons, err := s.Catalog.ListLessons(gctx)
		if err != nil {
			return util.NewPersistenceError("list lessons", err)
		}
		snap.lessons = lessons
		return nil
	})
	g.Go(func() error {
		rows, err := s.Progress.ListLessonCompletions(gctx, userID)
		if err != nil {
			return util.NewPersistenceError("list lesson progress", err)
		}
		snap.completions = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.Progress.ListTestScores(gctx, userID)
		if err != nil {
			return util.NewPersistenceError("list test scores", err)
		}
		snap.scores = rows
		return nil
	})
	g.Go(func() error {
		ids, err := s.Access.ListExemptModuleIDs(gctx, userID)
		if err != nil {
			return util.NewPersistenceError("list exemptions", err)
		}
		snap.exempt = ids
		return nil
	})
	g.Go(func() error {
		ok, err := s.Access.HasAccess(gctx, userID, s.Course.Slug)
		if err != nil {
			return util.NewPersistenceError("check course access", err)
		}
		snap.hasAccess = ok
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (snap *snapshot) evaluate() []grading.ModuleState {
	modules := make([]grading.Module, 0, len(snap.modules))
	for _, m := range snap.modules {
		modules = append(modules, grading.Module{ID: m.ID, Position: m.Position})
	}
	lessons := make([]grading.Lesson, 0, len(snap.lessons))
	for _, l := range snap.lessons {
		lessons = append(lessons, grading.Lesson{ID: l.ID, ModuleID: l.ModuleID, Position: l.Position, CreatedAt: l.CreatedAt})
	}
	completions := make([]grading.LessonCompletion, 0, len(snap.completions))
	for _, row := range snap.completions {
		if row.LessonID == nil || !row.Completed {
			continue
		}
		// created_at is the first completion; repeats only move completed_at
		c := grading.LessonCompletion{ModuleID: row.ModuleID, LessonID: *row.LessonID, CompletedAt: row.CreatedAt}
		if c.CompletedAt.IsZero() && row.CompletedAt != nil {
			c.CompletedAt = *row.CompletedAt
		}
		completions = append(completions, c)
	}
	exempt := make(map[uint]bool, len(snap.exempt))
	for _, id := range snap.exempt {
		exempt[id] = true
	}

	marks := grading.WatermarksFrom(lessons, completions)
	return grading.EvaluateModules(modules, lessons, marks, exempt)
}

func (s *ProgressService) isFree(m *model.Module) bool {
	return m.Position <= s.Course.FreeModules
}

func (s *ProgressService) report(snap *snapshot) *CourseProgress {
	byID := make(map[uint]*model.Module, len(snap.modules))
	for i := range snap.modules {
		byID[snap.modules[i].ID] = &snap.modules[i]
	}
	scores := make(map[uint]model.UserProgress, len(snap.scores))
	for _, row := range snap.scores {
		scores[row.ModuleID] = row
	}

	out := &CourseProgress{
		CourseSlug: s.Course.Slug,
		HasAccess:  snap.hasAccess,
		Modules:    []ModuleProgress{},
	}
	for _, st := range snap.evaluate() {
		m := byID[st.ModuleID]
		mp := ModuleProgress{
			ModuleState: st,
			Title:       m.Title,
			Order:       m.Position,
			Free:        s.isFree(m),
		}
		if m.Test != nil {
			id := m.Test.ID
			mp.TestID = &id
		}
		if row, ok := scores[m.ID]; ok {
			mp.TestScore = row.TestScore
			mp.TestPassed = row.Completed
		}
		if st.LessonCount > 0 && st.CompletedLessons == st.LessonCount {
			out.CompletedModules++
		}
		out.Modules = append(out.Modules, mp)
	}
	out.TotalModules = len(out.Modules)
	return out
}

// GetCourseProgress returns progress and lock state of every module for the
// caller.
func (s *ProgressService) GetCourseProgress(ctx context.Context) (*CourseProgress, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.ProgressFor(ctx, sess.UserID())
}

func (s *ProgressService) ProgressFor(ctx context.Context, userID uint) (*CourseProgress, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.report(snap), nil
}

// EnsureModuleOpen fails with ErrPaymentRequired for paid modules without a
// purchase and with ErrModuleLocked while the module is locked.
func (s *ProgressService) EnsureModuleOpen(ctx context.Context, userID, moduleID uint) error {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.checkOpen(snap, moduleID)
	return err
}

func (s *ProgressService) checkOpen(snap *snapshot, moduleID uint) (*model.Module, error) {
	var module *model.Module
	for i := range snap.modules {
		if snap.modules[i].ID == moduleID {
			module = &snap.modules[i]
			break
		}
	}
	if module == nil {
		return nil, util.ErrNotFound
	}
	if !s.isFree(module) && !snap.hasAccess {
		return nil, util.ErrPaymentRequired
	}
	for _, st := range snap.evaluate() {
		if st.ModuleID == moduleID && st.IsLocked {
			return nil, util.ErrModuleLocked
		}
	}
	return module, nil
}

// CompleteLesson marks a lesson of an open module as done and returns the
// updated course progress. Completing the same lesson again only moves its
// completion time.
func (s *ProgressService) CompleteLesson(ctx context.Context, lessonID uint) (*CourseProgress, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}

	lesson, err := s.Catalog.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, util.NewPersistenceError("find lesson", err)
	}

	snap, err := s.load(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	if _, err := s.checkOpen(snap, lesson.ModuleID); err != nil {
		return nil, err
	}

	if err := s.Progress.UpsertLessonCompletion(ctx, sess.UserID(), lesson.ModuleID, lesson.ID, s.now()); err != nil {
		return nil, util.NewPersistenceError("save lesson progress", err)
	}

	logger.Log.Debug("Lesson completed",
		zap.Uint("userID", sess.UserID()),
		zap.Uint("moduleID", lesson.ModuleID),
		zap.Uint("lessonID", lesson.ID),
	)
	return s.ProgressFor(ctx, sess.UserID())
}

// ResetProgress removes the caller's lesson progress. Test attempts, and so
// the grade, are kept.
func (s *ProgressService) ResetProgress(ctx context.Context) (*CourseProgress, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.Progress.ResetLessonProgress(ctx, sess.UserID())
	if err != nil {
		return nil, util.NewPersistenceError("reset progress", err)
	}
	logger.Log.Info("Course progress reset", zap.Uint("userID", sess.UserID()), zap.Int64("rows", n))

	return s.ProgressFor(ctx, sess.UserID())
}

func (s *ProgressService) GrantExemption(ctx context.Context, userID uint, req ExemptionRequest) error {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return err
	}
	if _, err := s.Catalog.FindModule(ctx, req.ModuleID); err != nil {
		return util.NewPersistenceError("find module", err)
	}
	e := &model.ModuleAccessExemption{UserID: userID, ModuleID: req.ModuleID, Reason: req.Reason}
	if err := s.Access.AddExemption(ctx, e); err != nil {
		return util.NewPersistenceError("add exemption", err)
	}
	return nil
}

func (s *ProgressService) RevokeExemption(ctx context.Context, userID, moduleID uint) error {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return err
	}
	n, err := s.Access.RemoveExemption(ctx, userID, moduleID)
	if err != nil {
		return util.NewPersistenceError("remove exemption", err)
	}
	if n == 0 {
		return util.ErrNotFound
	}
	return nil
}
