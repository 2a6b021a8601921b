package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// MediaRepository interface for records that point at stored blobs
type MediaRepository interface {
	CreateQuizImage(ctx context.Context, tx *gorm.DB, image *models.QuizImage) error
	GetQuizImage(ctx context.Context, tx *gorm.DB, id string) (*models.QuizImage, error)
	DeleteQuizImage(ctx context.Context, tx *gorm.DB, id string) error

	CreateQuestionImage(ctx context.Context, tx *gorm.DB, image *models.QuestionImage) error
	GetQuestionImage(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionImage, error)
	DeleteQuestionImage(ctx context.Context, tx *gorm.DB, id string) error

	CreateResourceMaterial(ctx context.Context, tx *gorm.DB, material *models.ResourceMaterial) error
	GetResourceMaterial(ctx context.Context, tx *gorm.DB, id string) (*models.ResourceMaterial, error)
	DeleteResourceMaterial(ctx context.Context, tx *gorm.DB, id string) error
	ListResourceMaterials(ctx context.Context, tx *gorm.DB, classID string) ([]*models.ResourceMaterial, error)

	// QuizBlobKeys returns the object keys of the quiz's images and of
	// every image attached to its questions.
	QuizBlobKeys(ctx context.Context, tx *gorm.DB, quizID string) ([]string, error)
	QuestionBlobKeys(ctx context.Context, tx *gorm.DB, questionID string) ([]string, error)
}
