package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID           string  `json:"id" gorm:"primaryKey;size:36"`
	Name         string  `json:"name" gorm:"not null;size:100"`
	Description  *string `json:"description" gorm:"type:text"`
	PasswordHash string  `json:"-" gorm:"not null;size:255"`
	TeacherID    string  `json:"teacher_id" gorm:"not null;size:36;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher  User   `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Students []User `json:"students,omitempty" gorm:"many2many:class_students"`
	Quizzes  []Quiz `json:"quizzes,omitempty" gorm:"foreignKey:ClassID"`
}

func (Class) TableName() string {
	return "classes"
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
