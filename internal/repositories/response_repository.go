package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// ResponseRepository interface for graded submissions
type ResponseRepository interface {
	// Create fails with a duplicate key error when the user already
	// responded to the quiz.
	Create(ctx context.Context, tx *gorm.DB, response *models.Response) error
	GetByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.Response, error)
	ExistsForUser(ctx context.Context, tx *gorm.DB, quizID, userID string) (bool, error)

	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.Response, error)
	// ListByUser returns the user's responses with their quizzes, newest first.
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Response, error)
	// Leaderboard orders by score descending, earliest submission first on ties.
	Leaderboard(ctx context.Context, tx *gorm.DB, quizID string, limit int) ([]*models.Response, error)

	TeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*TeacherResponseStats, error)
	UserStats(ctx context.Context, tx *gorm.DB, userID string) (*UserResponseStats, error)
}
