package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for question operations
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	// Delete removes the question and its image rows.
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]models.Question, error)
	NextPosition(ctx context.Context, tx *gorm.DB, quizID string) (int, error)
	ListSubjects(ctx context.Context, tx *gorm.DB) ([]SubjectCount, error)
}
