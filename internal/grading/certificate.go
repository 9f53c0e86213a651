package grading

const (
	DefaultMinGrade      = 80.0
	DefaultRequiredTests = 7
)

// Policy holds the certificate thresholds.
type Policy struct {
	MinGrade      float64
	RequiredTests int
}

func DefaultPolicy() Policy {
	return Policy{MinGrade: DefaultMinGrade, RequiredTests: DefaultRequiredTests}
}

// Eligible reports whether grade and count meet the thresholds, regardless
// of whether a certificate was already issued.
func (p Policy) Eligible(grade *float64, completed int) bool {
	return grade != nil && *grade >= p.MinGrade && completed >= p.RequiredTests
}

// ShouldIssue is true only for a learner that is eligible and has no
// certificate yet. An issued certificate is never re-issued or revoked.
func (p Policy) ShouldIssue(grade *float64, completed int, alreadyEarned bool) bool {
	return !alreadyEarned && p.Eligible(grade, completed)
}

// ShouldIssue applies the default policy.
func ShouldIssue(grade *float64, completed int, alreadyEarned bool) bool {
	return DefaultPolicy().ShouldIssue(grade, completed, alreadyEarned)
}
