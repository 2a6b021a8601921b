package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	base
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{base{db: db}}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Omit("User", "Quiz").Create(response).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) GetByQuizAndUser(ctx context.Context, tx *gorm.DB, quizID, userID string) (*models.Response, error) {
	db := r.getDB(tx)
	var response models.Response
	err := db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) ExistsForUser(ctx context.Context, tx *gorm.DB, quizID, userID string) (bool, error) {
	db := r.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Response{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ResponsePostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]*models.Response, error) {
	db := r.getDB(tx)
	var responses []*models.Response
	err := db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ?", quizID).
		Order("created_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Response, error) {
	db := r.getDB(tx)
	var responses []*models.Response
	err := db.WithContext(ctx).
		Preload("Quiz").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user responses: %w", err)
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) Leaderboard(ctx context.Context, tx *gorm.DB, quizID string, limit int) ([]*models.Response, error) {
	db := r.getDB(tx)
	if limit <= 0 {
		limit = 10
	}
	var responses []*models.Response
	err := db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ?", quizID).
		Order("score DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) TeacherStats(ctx context.Context, tx *gorm.DB, teacherID string) (*repositories.TeacherResponseStats, error) {
	db := r.getDB(tx)
	var stats repositories.TeacherResponseStats
	err := db.WithContext(ctx).
		Table("responses").
		Select("COUNT(*) AS total_attempts, COUNT(DISTINCT responses.user_id) AS distinct_students").
		Joins("JOIN quizzes ON quizzes.id = responses.quiz_id").
		Where("quizzes.teacher_id = ?", teacherID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher stats: %w", err)
	}
	return &stats, nil
}

func (r *ResponsePostgreSQL) UserStats(ctx context.Context, tx *gorm.DB, userID string) (*repositories.UserResponseStats, error) {
	db := r.getDB(tx)
	var stats repositories.UserResponseStats
	err := db.WithContext(ctx).
		Model(&models.Response{}).
		Select("COUNT(*) AS attempts, COALESCE(SUM(score), 0) AS total_score, COALESCE(AVG(score), 0) AS average_score").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &stats, nil
}
