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
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GradeService aggregates test attempts into the learner's grade and keeps
// the profile cache and certificate in step with it.
type GradeService struct {
	Attempts AttemptStore
	Profiles ProfileStore
	Users    UserStore
	Policy   grading.Policy
	now      func() time.Time
}

func NewGradeService(attempts AttemptStore, profiles ProfileStore, users UserStore, policy grading.Policy) *GradeService {
	return &GradeService{
		Attempts: attempts,
		Profiles: profiles,
		Users:    users,
		Policy:   policy,
		now:      time.Now,
	}
}

type TestGrade struct {
	TestID      uint      `json:"testId"`
	AttemptID   uint      `json:"attemptId"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completedAt"`
}

type GradeSummary struct {
	UserID               uint        `json:"userId"`
	OverallGrade         *float64    `json:"overallGrade"`
	CompletedModuleCount int         `json:"completedModuleCount"`
	RequiredTests        int         `json:"requiredTests"`
	MinGrade             float64     `json:"minGrade"`
	Eligible             bool        `json:"eligible"`
	CertificateEarned    bool        `json:"certificateEarned"`
	Tests                []TestGrade `json:"tests"`
	SkippedAttempts      []uint      `json:"skippedAttempts,omitempty"`
	// Persisted is false when the profile could not be written.
	Persisted bool `json:"persisted"`
}

type Certificate struct {
	Earned    bool       `json:"earned"`
	Eligible  bool       `json:"eligible"`
	Number    string     `json:"number,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	Grade     *float64   `json:"grade"`
	Completed int        `json:"completedModuleCount"`
	Required  int        `json:"requiredTests"`
	MinGrade  float64    `json:"minGrade"`
}

func (s *GradeService) summarize(userID uint, res grading.Result) *GradeSummary {
	sum := &GradeSummary{
		UserID:               userID,
		OverallGrade:         res.Grade,
		CompletedModuleCount: res.CompletedModuleCount,
		RequiredTests:        s.Policy.RequiredTests,
		MinGrade:             s.Policy.MinGrade,
		Eligible:             s.Policy.Eligible(res.Grade, res.CompletedModuleCount),
		Tests:                make([]TestGrade, 0, len(res.Latest)),
		SkippedAttempts:      res.Skipped,
	}
	for _, a := range res.Latest {
		sum.Tests = append(sum.Tests, TestGrade{
			TestID:      a.TestID,
			AttemptID:   a.ID,
			Score:       a.Score,
			Total:       a.Total,
			Percentage:  grading.Round1(a.Percentage()),
			CompletedAt: a.CompletedAt,
		})
	}
	return sum
}

func (s *GradeService) aggregate(ctx context.Context, userID uint) (grading.Result, error) {
	rows, err := s.Attempts.ListAttemptsByUser(ctx, userID)
	if err != nil {
		return grading.Result{}, util.NewPersistenceError("list attempts", err)
	}
	attempts := make([]grading.Attempt, 0, len(rows))
	for _, r := range rows {
		attempts = append(attempts, grading.Attempt{
			ID:          r.ID,
			TestID:      r.TestID,
			Score:       r.Score,
			Total:       r.TotalQuestions,
			CompletedAt: r.CompletedAt,
		})
	}
	res := grading.Aggregate(attempts)
	if len(res.Skipped) > 0 {
		logger.Log.Warn("Skipped attempts without questions",
			zap.Uint("userID", userID),
			zap.Uints("attemptIDs", res.Skipped),
		)
	}
	return res, nil
}

func (s *GradeService) findProfile(ctx context.Context, userID uint) (*model.UserProfile, error) {
	p, err := s.Profiles.Find(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, util.NewPersistenceError("find profile", err)
	}
	return p, nil
}

// Summary computes the caller's grade from stored attempts. It does not
// write anything; Persisted tells whether the stored profile is up to date.
func (s *GradeService) Summary(ctx context.Context) (*GradeSummary, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregate(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	profile, err := s.findProfile(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	sum := s.summarize(sess.UserID(), res)
	sum.CertificateEarned = profile.CertificateEarned
	sum.Persisted = storedMatches(profile, res)
	return sum, nil
}

// storedMatches reports whether the profile holds the grade just computed.
func storedMatches(p *model.UserProfile, res grading.Result) bool {
	if p.GradeComputedAt == nil || p.CompletedModuleCount != res.CompletedModuleCount {
		return false
	}
	if p.OverallGrade == nil || res.Grade == nil {
		return p.OverallGrade == nil && res.Grade == nil
	}
	return *p.OverallGrade == *res.Grade
}

// Recompute recalculates and stores the caller's grade.
func (s *GradeService) Recompute(ctx context.Context) (*GradeSummary, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	return s.RecomputeFor(ctx, sess.UserID())
}

// RecomputeUser is the admin variant of Recompute.
func (s *GradeService) RecomputeUser(ctx context.Context, userID uint) (*GradeSummary, error) {
	if _, err := session.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return nil, util.NewPersistenceError("find user", err)
	}
	return s.RecomputeFor(ctx, userID)
}

// RecomputeFor aggregates the stored attempts of userID, overwrites the
// profile grade and issues the certificate once the policy is met. When the
// profile write fails the computed summary is still returned, with
// Persisted false, alongside the error.
func (s *GradeService) RecomputeFor(ctx context.Context, userID uint) (sum *GradeSummary, err error) {
	ctx, span := tracing.Start(ctx, "grade.recompute", attribute.Int64("user.id", int64(userID)))
	defer func() {
		monitoring.ObserveRecompute(err)
		tracing.End(span, err)
	}()

	res, err := s.aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum = s.summarize(userID, res)

	now := s.now()
	if err = s.Profiles.SaveGrade(ctx, userID, res.Grade, res.CompletedModuleCount, now); err != nil {
		err = util.NewPersistenceError("save grade", err)
		logger.Log.Error("Failed to store recomputed grade", zap.Uint("userID", userID), zap.Error(err))
		return sum, err
	}
	sum.Persisted = true

	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return sum, err
	}
	sum.CertificateEarned = profile.CertificateEarned

	if s.Policy.ShouldIssue(res.Grade, res.CompletedModuleCount, profile.CertificateEarned) {
		issued, ierr := s.Profiles.IssueCertificate(ctx, userID, newCertificateNumber(), now)
		if ierr != nil {
			err = util.NewPersistenceError("issue certificate", ierr)
			return sum, err
		}
		if issued {
			monitoring.CertificatesIssued.Inc()
			logger.Log.Info("Certificate issued", zap.Uint("userID", userID), zap.Float64p("grade", res.Grade))
		}
		sum.CertificateEarned = true
	}
	return sum, nil
}

// RecomputeAll recomputes every user and returns how many failed.
func (s *GradeService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.Users.ListIDs(ctx)
	if err != nil {
		return 0, util.NewPersistenceError("list users", err)
	}
	failed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if _, err := s.RecomputeFor(ctx, id); err != nil {
			failed++
			logger.Log.Error("Grade recompute failed", zap.Uint("userID", id), zap.Error(err))
		}
	}
	return failed, nil
}

func (s *GradeService) Certificate(ctx context.Context) (*Certificate, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.findProfile(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	return &Certificate{
		Earned:    profile.CertificateEarned,
		Eligible:  s.Policy.Eligible(profile.OverallGrade, profile.CompletedModuleCount),
		Number:    profile.CertificateNumber,
		IssuedAt:  profile.CertificateIssuedAt,
		Grade:     profile.OverallGrade,
		Completed: profile.CompletedModuleCount,
		Required:  s.Policy.RequiredTests,
		MinGrade:  s.Policy.MinGrade,
	}, nil
}

func newCertificateNumber() string {
	return "CERT-" + strings.ToUpper(strings.ReplaceAll(model.GenerateUUID(), "-", "")[:16])
}
