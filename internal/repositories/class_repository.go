package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ClassRepository interface for classes and enrolment
type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Class, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	// Delete drops enrolments and detaches quizzes and materials first.
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) ([]*models.Class, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Class, error)

	AddStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) error
	IsStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) (bool, error)
	CountByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) (int64, error)
	CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
}
