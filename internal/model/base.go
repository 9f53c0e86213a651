package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Timestamps is used by rows that are hard-deleted or carry unique indexes
// which would collide with soft-deleted rows.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func GenerateUUID() string {
	return uuid.New().String()
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Module{},
		&Lesson{},
		&Test{},
		&TestQuestion{},
		&TestAttempt{},
		&UserProgress{},
		&UserProfile{},
		&Assignment{},
		&AssignmentSubmission{},
		&Project{},
		&CourseAccess{},
		&ModuleAccessExemption{},
	}
}
