package database

import (
	"course_backend/internal/model"
	"fmt"

	"gorm.io/gorm"
)

// SeedCourse creates a sample seven-module course when the catalog is empty.
// Every module gets three lessons and a five-question test; the last module
// is assignment-only. It reports whether anything was created.
func SeedCourse(db *gorm.DB, passingScore int) (bool, error) {
	var count int64
	if err := db.Model(&model.Module{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	titles := []string{
		"Getting Started",
		"Core Concepts",
		"Working With Data",
		"Building Features",
		"Testing",
		"Deployment",
		"Operations",
		"Capstone Assignment",
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, title := range titles {
			m := &model.Module{Position: i + 1, Title: title, Description: title + " module"}
			if err := tx.Create(m).Error; err != nil {
				return err
			}

			if i == len(titles)-1 {
				a := &model.Assignment{ModuleID: m.ID, Title: "Capstone", Instructions: "Submit your final write-up."}
				if err := tx.Create(a).Error; err != nil {
					return err
				}
				continue
			}

			for p := 1; p <= 3; p++ {
				l := &model.Lesson{ModuleID: m.ID, Position: p, Title: fmt.Sprintf("%s: lesson %d", title, p)}
				if err := tx.Create(l).Error; err != nil {
					return err
				}
			}

			test := &model.Test{ModuleID: m.ID, Title: title + " quiz", PassingScore: passingScore}
			for q := 1; q <= 5; q++ {
				test.Questions = append(test.Questions, model.TestQuestion{
					OrderNumber:   q,
					Question:      fmt.Sprintf("%s question %d", title, q),
					OptionA:       "Option A",
					OptionB:       "Option B",
					OptionC:       "Option C",
					OptionD:       "Option D",
					CorrectAnswer: "a",
				})
			}
			if err := tx.Create(test).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
