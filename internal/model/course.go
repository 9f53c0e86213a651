package model

import (
	"time"
)

const DefaultPassingScore = 80

// swagger:model Module
type Module struct {
	BaseModel
	Position    int    `gorm:"index;not null" json:"order"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Lessons     []Lesson     `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
	Test        *Test        `gorm:"foreignKey:ModuleID" json:"test,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:ModuleID" json:"assignments,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	ModuleID uint   `gorm:"index;not null" json:"moduleId"`
	Position int    `gorm:"not null" json:"order"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content,omitempty"`
	VideoURL string `gorm:"size:512" json:"videoUrl,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model Test
type Test struct {
	BaseModel
	ModuleID     uint           `gorm:"uniqueIndex;not null" json:"moduleId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	PassingScore int            `gorm:"default:80" json:"passingScore"`
	Questions    []TestQuestion `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model TestQuestion
type TestQuestion struct {
	BaseModel
	TestID        uint   `gorm:"index;not null" json:"testId"`
	OrderNumber   int    `gorm:"not null" json:"orderNumber"`
	Question      string `gorm:"type:text;not null" json:"question"`
	OptionA       string `gorm:"size:512" json:"optionA"`
	OptionB       string `gorm:"size:512" json:"optionB"`
	OptionC       string `gorm:"size:512" json:"optionC"`
	OptionD       string `gorm:"size:512" json:"optionD"`
	CorrectAnswer string `gorm:"size:1;not null" json:"-"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// swagger:model Assignment
type Assignment struct {
	BaseModel
	ModuleID     uint       `gorm:"index;not null" json:"moduleId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Instructions string     `gorm:"type:text" json:"instructions"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// swagger:model AssignmentSubmission
type AssignmentSubmission struct {
	BaseModel
	AssignmentID uint      `gorm:"index;not null" json:"assignmentId"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Content      string    `gorm:"type:text" json:"content"`
	FileURL      string    `gorm:"size:512" json:"fileUrl,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

// Project is the final course project; one per learner, resubmission overwrites it.
// swagger:model Project
type Project struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	RepositoryURL string    `gorm:"size:512" json:"repositoryUrl,omitempty"`
	FileURL       string    `gorm:"size:512" json:"fileUrl,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Timestamps
}

func (Project) TableName() string {
	return "projects"
}
