package service

import (
	"context"
	"course_backend/internal/grading"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"course_backend/pkg/monitoring"
	"course_backend/pkg/tracing"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type TestService struct {
	Attempts AttemptStore
	Gate     ModuleGate
	Grades   *GradeService
	now      func() time.Time
}

func NewTestService(attempts AttemptStore, gate ModuleGate, grades *GradeService) *TestService {
	return &TestService{
		Attempts: attempts,
		Gate:     gate,
		Grades:   grades,
		now:      time.Now,
	}
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required,answer_choice"`
}

type SubmitTestRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,dive"`
}

type SubmitTestResult struct {
	AttemptID    uint          `json:"attemptId"`
	TestID       uint          `json:"testId"`
	Score        int           `json:"score"`
	Total        int           `json:"total"`
	Percentage   float64       `json:"percentage"`
	PassingScore int           `json:"passingScore"`
	Passed       bool          `json:"passed"`
	Grade        *GradeSummary `json:"grade"`
}

func (s *TestService) openTest(ctx context.Context, userID, testID uint) (*model.Test, error) {
	test, err := s.Attempts.FindTest(ctx, testID)
	if err != nil {
		return nil, util.NewPersistenceError("find test", err)
	}
	if err := s.Gate.EnsureModuleOpen(ctx, userID, test.ModuleID); err != nil {
		return nil, err
	}
	return test, nil
}

// GetForLearner returns a test with its questions. Correct answers are never
// serialized.
func (s *TestService) GetForLearner(ctx context.Context, testID uint) (*model.Test, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.openTest(ctx, sess.UserID(), testID)
}

// score checks that every question is answered exactly once and counts the
// correct answers.
func score(questions []model.TestQuestion, answers []AnswerInput) (int, map[string]string, error) {
	byID := make(map[uint]string, len(answers))
	var fields []util.FieldError
	for i, a := range answers {
		choice := strings.ToLower(strings.TrimSpace(a.Answer))
		if !util.IsAnswerChoice(choice) {
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("answers[%d].answer", i), Error: "must be one of a, b, c, d"})
			continue
		}
		if _, dup := byID[a.QuestionID]; dup {
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("answers[%d].questionId", i), Error: "answered more than once"})
			continue
		}
		byID[a.QuestionID] = choice
	}

	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
		if _, ok := byID[q.ID]; !ok {
			fields = append(fields, util.FieldError{Field: "answers", Error: fmt.Sprintf("question %d is not answered", q.ID)})
		}
	}
	for i, a := range answers {
		if !known[a.QuestionID] {
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("answers[%d].questionId", i), Error: "unknown question"})
		}
	}
	if len(fields) > 0 {
		return 0, nil, util.NewValidationError(errors.New("invalid answers"), fields...)
	}

	correct := 0
	recorded := make(map[string]string, len(questions))
	for _, q := range questions {
		choice := byID[q.ID]
		recorded[fmt.Sprint(q.ID)] = choice
		if choice == strings.ToLower(q.CorrectAnswer) {
			correct++
		}
	}
	return correct, recorded, nil
}

// Submit grades a full set of answers, appends the attempt, stores the module
// test score and recomputes the learner's grade. Nothing is written when the
// test has no questions or the answers are incomplete.
func (s *TestService) Submit(ctx context.Context, testID uint, req SubmitTestRequest) (res *SubmitTestResult, err error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	userID := sess.UserID()

	ctx, span := tracing.Start(ctx, "test.submit",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("test.id", int64(testID)),
	)
	defer func() { tracing.End(span, err) }()

	test, err := s.openTest(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	if len(test.Questions) == 0 {
		return nil, util.Invalid("testId", "test has no questions")
	}

	correct, recorded, err := score(test.Questions, req.Answers)
	if err != nil {
		return nil, err
	}
	answers, err := json.Marshal(recorded)
	if err != nil {
		return nil, err
	}

	total := len(test.Questions)
	pct := grading.Round1(grading.Attempt{Score: correct, Total: total}.Percentage())
	passed := pct >= float64(test.PassingScore)
	now := s.now()

	attempt := &model.TestAttempt{
		TestID:         test.ID,
		UserID:         userID,
		Score:          correct,
		TotalQuestions: total,
		Answers:        datatypes.JSON(answers),
		CompletedAt:    now,
		Passed:         passed,
	}
	if err = s.Attempts.RecordSubmission(ctx, attempt, test.ModuleID, pct); err != nil {
		return nil, util.NewPersistenceError("save attempt", err)
	}
	monitoring.ObserveSubmission(passed)

	res = &SubmitTestResult{
		AttemptID:    attempt.ID,
		TestID:       test.ID,
		Score:        correct,
		Total:        total,
		Percentage:   pct,
		PassingScore: test.PassingScore,
		Passed:       passed,
	}

	// The attempt is stored, so a failed profile write is reported through
	// Grade.Persisted rather than failing the submission.
	grade, gerr := s.Grades.RecomputeFor(ctx, userID)
	if gerr != nil && grade == nil {
		return nil, gerr
	}
	if gerr != nil {
		logger.Log.Warn("Grade computed but not stored", zap.Uint("userID", userID), zap.Error(gerr))
	}
	res.Grade = grade
	return res, nil
}

// ListAttempts returns the caller's attempts of one test, newest first.
func (s *TestService) ListAttempts(ctx context.Context, testID uint) ([]model.TestAttempt, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Attempts.ListAttempts(ctx, sess.UserID(), testID)
	if err != nil {
		return nil, util.NewPersistenceError("list attempts", err)
	}
	return attempts, nil
}
