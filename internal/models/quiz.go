package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID           string  `json:"id" gorm:"primaryKey;size:36"`
	Title        string  `json:"title" gorm:"not null;size:200;index"`
	Description  string  `json:"description" gorm:"type:text;not null"`
	Duration     int     `json:"duration" gorm:"not null"` // minutes
	IsPublic     bool    `json:"is_public" gorm:"default:false;index"`
	PasswordHash *string `json:"-" gorm:"size:255"`
	AttemptCount int     `json:"attempt_count" gorm:"not null;default:0"`

	TeacherID string  `json:"teacher_id" gorm:"not null;size:36;index"`
	ClassID   *string `json:"class_id" gorm:"size:36;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher   User        `json:"-" gorm:"foreignKey:TeacherID"`
	Questions []Question  `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Images    []QuizImage `json:"images,omitempty" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	TotalMarks     int  `json:"total_marks" gorm:"-"`
	QuestionsCount int  `json:"questions_count" gorm:"-"`
	HasPassword    bool `json:"has_password" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// AfterFind fills the computed fields from whatever questions were loaded.
func (q *Quiz) AfterFind(tx *gorm.DB) error {
	q.RefreshComputed()
	return nil
}

// RefreshComputed recomputes TotalMarks from the current question set.
// TotalMarks is never persisted.
func (q *Quiz) RefreshComputed() {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].EffectiveMarks()
	}
	q.TotalMarks = total
	q.QuestionsCount = len(q.Questions)
	q.HasPassword = q.PasswordHash != nil && *q.PasswordHash != ""
}

// IsOwnedBy reports whether userID is the teacher who created the quiz.
func (q *Quiz) IsOwnedBy(userID string) bool {
	return q.TeacherID == userID
}
