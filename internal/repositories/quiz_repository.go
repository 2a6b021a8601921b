package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuizRepository interface for quiz-specific operations
type QuizRepository interface {
	// Create inserts the quiz together with its questions.
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	// GetByIDWithDetails loads questions in position order plus all images.
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	// Delete removes the quiz and every row that belongs to it.
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)
	IncrementAttemptCount(ctx context.Context, tx *gorm.DB, id string) error
	CountByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) (int64, error)
}
