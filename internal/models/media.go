package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredObject describes a blob held in the object store.
type StoredObject struct {
	URL      string `json:"url" gorm:"not null;size:1000"`
	Key      string `json:"key" gorm:"not null;size:500"`
	FileName string `json:"file_name" gorm:"size:255"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type" gorm:"size:100"`
}

type QuizImage struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	QuizID string `json:"quiz_id" gorm:"not null;size:36;index"`
	StoredObject
	CreatedAt time.Time `json:"created_at"`
}

func (QuizImage) TableName() string {
	return "quiz_images"
}

func (i *QuizImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type QuestionImage struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	QuestionID string `json:"question_id" gorm:"not null;size:36;index"`
	StoredObject
	CreatedAt time.Time `json:"created_at"`
}

func (QuestionImage) TableName() string {
	return "question_images"
}

func (i *QuestionImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type ResourceMaterial struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	ClassID     *string `json:"class_id" gorm:"size:36;index"`
	TeacherID   string  `json:"teacher_id" gorm:"not null;size:36;index"`
	StoredObject
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ResourceMaterial) TableName() string {
	return "resource_materials"
}

func (m *ResourceMaterial) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every persisted model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Class{},
		&Quiz{},
		&Question{},
		&QuizImage{},
		&QuestionImage{},
		&Response{},
		&ResourceMaterial{},
	}
}
