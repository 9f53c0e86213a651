package service

import (
	"context"
	"course_backend/internal/grading"
	"course_backend/internal/model"
	"course_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestService_SubmitStoresAttemptAndGrade(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	first := f.modules[0].ID

	res, err := f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 50.0, res.Percentage)
	assert.False(t, res.Passed)
	require.NotNil(t, res.Grade)
	require.NotNil(t, res.Grade.OverallGrade)
	assert.Equal(t, 50.0, *res.Grade.OverallGrade)
	assert.True(t, res.Grade.Persisted)

	res, err = f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 2))
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 100.0, *res.Grade.OverallGrade)
	assert.Equal(t, 1, res.Grade.CompletedModuleCount)

	assert.Len(t, f.store.attempts, 2)
	row := f.store.scoreRows[[2]uint{learnerID, first}]
	require.NotNil(t, row.TestScore)
	assert.Equal(t, 100.0, *row.TestScore)
	assert.True(t, row.Completed)
	assert.Equal(t, 100.0, *f.store.profiles[learnerID].OverallGrade)

	attempts, err := f.testSvc.ListAttempts(learnerCtx(), f.tests[first].ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 2, attempts[0].Score)
}

func TestTestService_RejectsBeforeWriting(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	first := f.modules[0].ID
	testID := f.tests[first].ID

	empty := &model.Test{ModuleID: first}
	f.store.tests[testID] = empty
	empty.ID = testID
	_, err := f.testSvc.Submit(learnerCtx(), testID, SubmitTestRequest{})
	assert.True(t, util.IsValidation(err))

	f = newFixture(grading.DefaultPolicy())
	req := f.answers(first, 2)
	req.Answers = req.Answers[:1]
	_, err = f.testSvc.Submit(learnerCtx(), f.tests[first].ID, req)
	assert.True(t, util.IsValidation(err))

	req = f.answers(first, 2)
	req.Answers[1].Answer = "e"
	_, err = f.testSvc.Submit(learnerCtx(), f.tests[first].ID, req)
	assert.True(t, util.IsValidation(err))

	req = f.answers(first, 2)
	req.Answers = append(req.Answers, AnswerInput{QuestionID: 12345, Answer: "a"})
	_, err = f.testSvc.Submit(learnerCtx(), f.tests[first].ID, req)
	assert.True(t, util.IsValidation(err))

	assert.Empty(t, f.store.attempts)
	assert.Empty(t, f.store.scoreRows)
	assert.Empty(t, f.store.profiles)
}

func TestTestService_Unauthenticated(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	first := f.modules[0].ID

	_, err := f.testSvc.Submit(context.Background(), f.tests[first].ID, f.answers(first, 2))
	assert.ErrorIs(t, err, util.ErrNotAuthenticated)
	assert.Zero(t, f.store.callCount())
}

func TestTestService_LockedModule(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.grantAccess()
	second := f.modules[1].ID

	_, err := f.testSvc.GetForLearner(learnerCtx(), f.tests[second].ID)
	assert.ErrorIs(t, err, util.ErrModuleLocked)

	require.NoError(t, f.completeModule(t, f.modules[0].ID))
	test, err := f.testSvc.GetForLearner(learnerCtx(), f.tests[second].ID)
	require.NoError(t, err)
	assert.Len(t, test.Questions, 2)
}

func TestTestService_FailedProfileWriteStillReturnsGrade(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.store.saveGradeErr = errBoom
	first := f.modules[0].ID

	res, err := f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 2))
	require.NoError(t, err)
	require.NotNil(t, res.Grade)
	assert.False(t, res.Grade.Persisted)
	assert.Equal(t, 100.0, *res.Grade.OverallGrade)
	assert.Len(t, f.store.attempts, 1)
}

func TestTestService_FailedSubmissionWriteLeavesNothing(t *testing.T) {
	f := newFixture(grading.DefaultPolicy())
	f.store.recordErr = errBoom
	first := f.modules[0].ID

	res, err := f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 2))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, util.IsPersistence(err))
	assert.Empty(t, f.store.attempts)
	assert.Empty(t, f.store.scoreRows)
	assert.Nil(t, f.store.profiles[learnerID])

	// a retry after the failure stores exactly one attempt
	f.store.recordErr = nil
	_, err = f.testSvc.Submit(learnerCtx(), f.tests[first].ID, f.answers(first, 2))
	require.NoError(t, err)
	assert.Len(t, f.store.attempts, 1)
	assert.Len(t, f.store.scoreRows, 1)
}
