package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	SingleSelect   QuestionType = "SINGLE_SELECT"
	MultipleSelect QuestionType = "MULTIPLE_SELECT"
	FillInBlank    QuestionType = "FILL_IN_BLANK"
	Integer        QuestionType = "INTEGER"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case SingleSelect, MultipleSelect, FillInBlank, Integer:
		return true
	}
	return false
}

// UsesOptions reports whether answers for this type are option indices.
func (t QuestionType) UsesOptions() bool {
	return t == SingleSelect || t == MultipleSelect
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

const DefaultMarks = 1

type Question struct {
	ID            string                      `json:"id" gorm:"primaryKey;size:36"`
	QuizID        string                      `json:"quiz_id" gorm:"not null;size:36;index"`
	Text          string                      `json:"text" gorm:"type:text;not null"`
	Type          QuestionType                `json:"type" gorm:"not null;size:32"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer AnswerJSON                  `json:"correct_answer,omitempty"`
	Marks         int                         `json:"marks" gorm:"not null;default:1"`
	Position      int                         `json:"position" gorm:"not null;default:0"`

	// Metadata
	Subject     *string                     `json:"subject" gorm:"size:100;index"`
	Explanation *string                     `json:"explanation" gorm:"type:text"`
	AnswerLink  *string                     `json:"answer_link" gorm:"size:500"`
	Difficulty  DifficultyLevel             `json:"difficulty" gorm:"size:10;default:MEDIUM"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Images []QuestionImage `json:"images,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	return nil
}

// EffectiveMarks returns the question's marks, defaulting unset values to 1.
func (q *Question) EffectiveMarks() int {
	if q.Marks <= 0 {
		return DefaultMarks
	}
	return q.Marks
}

// AnswerKey decodes the stored correct answer according to the question type.
func (q *Question) AnswerKey() (AnswerKey, error) {
	return DecodeAnswerKey(q.Type, q.CorrectAnswer)
}
