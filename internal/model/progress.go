package model

import (
	"time"

	"gorm.io/datatypes"
)

// TestAttempt rows are append-only.
// swagger:model TestAttempt
type TestAttempt struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TestID         uint           `gorm:"index:idx_attempt_user_test;not null" json:"testId"`
	UserID         uint           `gorm:"index:idx_attempt_user_test;not null" json:"userId"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	Answers        datatypes.JSON `json:"answers"`
	CompletedAt    time.Time      `gorm:"index;not null" json:"completedAt"`
	Passed         bool           `gorm:"default:false" json:"passed"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// UserProgress is either a lesson completion (LessonID set) or the test
// score of a module (LessonID nil, TestScore set). Score rows also carry
// ScoreModuleID so that (user_id, score_module_id) is unique for them.
// swagger:model UserProgress
type UserProgress struct {
	ID            uint  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint  `gorm:"uniqueIndex:idx_progress_user_lesson;uniqueIndex:idx_progress_user_score;index;not null" json:"userId"`
	ModuleID      uint  `gorm:"index;not null" json:"moduleId"`
	LessonID      *uint `gorm:"uniqueIndex:idx_progress_user_lesson" json:"lessonId"`
	ScoreModuleID *uint `gorm:"uniqueIndex:idx_progress_user_score" json:"-"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	TestScore     *float64   `json:"testScore"`
	CompletedAt   *time.Time `json:"completedAt"`
	Timestamps
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// swagger:model CourseAccess
type CourseAccess struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint      `gorm:"index:idx_access_user_course;not null" json:"userId"`
	CourseSlug        string    `gorm:"size:100;index:idx_access_user_course;not null" json:"courseSlug"`
	CheckoutSessionID string    `gorm:"size:255;uniqueIndex;not null" json:"checkoutSessionId"`
	GrantedAt         time.Time `json:"grantedAt"`
	Timestamps
}

func (CourseAccess) TableName() string {
	return "course_access"
}

// ModuleAccessExemption unlocks a module for one learner regardless of the
// predecessor rule.
// swagger:model ModuleAccessExemption
type ModuleAccessExemption struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uint   `gorm:"uniqueIndex:idx_exemption_user_module;not null" json:"userId"`
	ModuleID uint   `gorm:"uniqueIndex:idx_exemption_user_module;not null" json:"moduleId"`
	Reason   string `gorm:"size:255" json:"reason"`
	Timestamps
}

func (ModuleAccessExemption) TableName() string {
	return "module_access_exemptions"
}
