package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	base
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{base{db: db}}
}

// Create inserts the quiz and its nested questions
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.RefreshComputed()
	return nil
}

// GetByID retrieves a quiz with its questions so computed totals are correct
func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	err := db.WithContext(ctx).
		Preload("Questions", orderByPosition).
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	quiz.RefreshComputed()
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	err := db.WithContext(ctx).
		Preload("Questions", orderByPosition).
		Preload("Questions.Images").
		Preload("Images").
		Where("id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	quiz.RefreshComputed()
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	db := q.getDB(tx)
	result := db.WithContext(ctx).Model(&models.Quiz{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the quiz with its questions, images and responses
func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	run := func(tx *gorm.DB) error {
		questionIDs := tx.Model(&models.Question{}).Select("id").Where("quiz_id = ?", id)

		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.QuestionImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete question images: %w", err)
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.QuizImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete quiz images: %w", err)
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return fmt.Errorf("failed to delete responses: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Quiz{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete quiz: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return q.db.WithContext(ctx).Transaction(run)
}

func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Quiz{})

	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filters.Search != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", likePattern(filters.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quizzes: %w", err)
	}

	limit, offset := repositories.NormalizePage(filters.Limit, filters.Offset)

	var quizzes []*models.Quiz
	err := query.
		Preload("Questions", orderByPosition).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&quizzes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}

	for _, quiz := range quizzes {
		quiz.RefreshComputed()
	}
	return quizzes, total, nil
}

// IncrementAttemptCount adds one to attempt_count in a single UPDATE
func (q *QuizPostgreSQL) IncrementAttemptCount(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment attempt count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuizPostgreSQL) CountByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.Quiz{}).Where("teacher_id = ?", teacherID).Count(&count).Error
	return count, err
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}
