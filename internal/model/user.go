package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;default:'student'" json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile caches the aggregate grade of a learner. OverallGrade and
// CompletedModuleCount are overwritten on every recompute; the certificate
// fields only ever move from unset to set.
// swagger:model UserProfile
type UserProfile struct {
	UserID               uint       `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	OverallGrade         *float64   `json:"overallGrade"`
	CompletedModuleCount int        `gorm:"default:0" json:"completedModuleCount"`
	CertificateEarned    bool       `gorm:"default:false" json:"certificateEarned"`
	CertificateIssuedAt  *time.Time `json:"certificateIssuedAt,omitempty"`
	CertificateNumber    string     `gorm:"size:64" json:"certificateNumber,omitempty"`
	GradeComputedAt      *time.Time `json:"gradeComputedAt,omitempty"`
	Timestamps
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
