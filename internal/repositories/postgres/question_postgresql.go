package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	base
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{base{db: db}}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	err := db.WithContext(ctx).
		Preload("Images").
		Where("id = ?", id).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	// Omit associations so preloaded images are not re-upserted
	if err := db.WithContext(ctx).Omit("Images").Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	run := func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete question images: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Question{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete question: %w", result.Error)
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

func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID string) ([]models.Question, error) {
	db := q.getDB(tx)
	var questions []models.Question
	err := orderByPosition(db.WithContext(ctx)).
		Where("quiz_id = ?", quizID).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// NextPosition returns one past the highest position used in the quiz
func (q *QuestionPostgreSQL) NextPosition(ctx context.Context, tx *gorm.DB, quizID string) (int, error) {
	db := q.getDB(tx)
	var maxPos sql.NullInt64
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("MAX(position)").
		Row().
		Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	if !maxPos.Valid {
		return 0, nil
	}
	return int(maxPos.Int64) + 1, nil
}

// ListSubjects groups questions by subject. Questions without one are skipped.
func (q *QuestionPostgreSQL) ListSubjects(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectCount, error) {
	db := q.getDB(tx)
	var subjects []repositories.SubjectCount
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("subject, COUNT(*) AS question_count").
		Where("subject IS NOT NULL AND subject <> ''").
		Group("subject").
		Order("subject ASC").
		Scan(&subjects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}
