package service

import (
	"context"
	"course_backend/internal/grading"
	"course_backend/internal/model"
	"course_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_RequiresSession(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())

	_, err := f.progress.GetCourseProgress(context.Background())
	assert.ErrorIs(t, err, util.ErrNotAuthenticated)

	_, err = f.progress.CompleteLesson(context.Background(), f.lessons[f.modules[0].ID][0].ID)
	assert.ErrorIs(t, err, util.ErrNotAuthenticated)

	assert.Zero(t, f.store.callCount())
}

func TestProgressService_InitialState(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())

	p, err := f.progress.GetCourseProgress(learnerCtx())
	require.NoError(t, err)
	require.Len(t, p.Modules, 3)
	assert.False(t, p.Modules[0].IsLocked)
	assert.True(t, p.Modules[0].Free)
	assert.True(t, p.Modules[1].IsLocked)
	assert.True(t, p.Modules[2].IsLocked)
	assert.False(t, p.HasAccess)
	require.NotNil(t, p.Modules[0].TestID)
}

func TestProgressService_CompleteLessonIsIdempotent(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	lesson := f.lessons[f.modules[0].ID][0]

	first, err := f.progress.CompleteLesson(learnerCtx(), lesson.ID)
	require.NoError(t, err)
	second, err := f.progress.CompleteLesson(learnerCtx(), lesson.ID)
	require.NoError(t, err)

	assert.Equal(t, 50.0, first.Modules[0].ProgressPercent)
	assert.Equal(t, first.Modules, second.Modules)
	assert.Len(t, f.store.lessonRows, 1)
}

func TestProgressService_PaywallAndLock(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	second := f.modules[1].ID

	require.NoError(t, f.completeModule(t, f.modules[0].ID))

	_, err := f.progress.CompleteLesson(learnerCtx(), f.lessons[second][0].ID)
	assert.ErrorIs(t, err, util.ErrPaymentRequired)

	f.grantAccess()
	_, err = f.progress.CompleteLesson(learnerCtx(), f.lessons[second][0].ID)
	require.NoError(t, err)

	// module 3 stays locked while module 2 is half done
	_, err = f.progress.CompleteLesson(learnerCtx(), f.lessons[f.modules[2].ID][0].ID)
	assert.ErrorIs(t, err, util.ErrModuleLocked)
}

func TestProgressService_ResetRelocksAndKeepsGrade(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.grantAccess()
	first := f.modules[0].ID

	require.NoError(t, f.completeModule(t, first))
	_, err := f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 2))
	require.NoError(t, err)

	before, err := f.grades.Summary(learnerCtx())
	require.NoError(t, err)
	p, err := f.progress.GetCourseProgress(learnerCtx())
	require.NoError(t, err)
	require.False(t, p.Modules[1].IsLocked)

	p, err = f.progress.ResetProgress(learnerCtx())
	require.NoError(t, err)
	assert.True(t, p.Modules[1].IsLocked)
	assert.Zero(t, p.Modules[0].ProgressPercent)

	after, err := f.grades.Summary(learnerCtx())
	require.NoError(t, err)
	assert.Equal(t, before.OverallGrade, after.OverallGrade)
	assert.Equal(t, before.CompletedModuleCount, after.CompletedModuleCount)
}

func TestProgressService_Exemption(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.grantAccess()
	third := f.modules[2].ID

	req := ExemptionRequest{ModuleID: third, Reason: "prior credit"}
	assert.ErrorIs(t, f.progress.GrantExemption(learnerCtx(), learnerID, req), util.ErrForbidden)
	require.NoError(t, f.progress.GrantExemption(adminCtx(), learnerID, req))

	p, err := f.progress.GetCourseProgress(learnerCtx())
	require.NoError(t, err)
	assert.True(t, p.Modules[1].IsLocked)
	assert.False(t, p.Modules[2].IsLocked)
	assert.True(t, p.Modules[2].Exempt)

	require.NoError(t, f.progress.RevokeExemption(adminCtx(), learnerID, third))
	assert.ErrorIs(t, f.progress.RevokeExemption(adminCtx(), learnerID, third), util.ErrNotFound)
}

func TestProgressService_NewLessonDoesNotRelock(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.grantAccess()
	first := f.modules[0].ID

	require.NoError(t, f.completeModule(t, first))
	f.store.CreateLesson(context.Background(), &model.Lesson{
		ModuleID:  first,
		Position:  3,
		BaseModel: model.BaseModel{CreatedAt: time.Now().Add(time.Hour)},
	})

	p, err := f.progress.GetCourseProgress(learnerCtx())
	require.NoError(t, err)
	assert.Equal(t, 3, p.Modules[0].LessonCount)
	assert.False(t, p.Modules[1].IsLocked)

	// revisiting the old last lesson after the addition keeps it open
	f.progress.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = f.progress.CompleteLesson(learnerCtx(), f.lessons[first][1].ID)
	require.NoError(t, err)
	p, err = f.progress.GetCourseProgress(learnerCtx())
	require.NoError(t, err)
	assert.False(t, p.Modules[1].IsLocked)

	_, err = f.progress.CompleteLesson(learnerCtx(), f.lessons[f.modules[1].ID][0].ID)
	assert.NoError(t, err)
}
