package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type MediaPostgreSQL struct {
	base
}

func NewMediaPostgreSQL(db *gorm.DB) repositories.MediaRepository {
	return &MediaPostgreSQL{base{db: db}}
}

// ===== QUIZ IMAGES =====

func (m *MediaPostgreSQL) CreateQuizImage(ctx context.Context, tx *gorm.DB, image *models.QuizImage) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create quiz image: %w", err)
	}
	return nil
}

func (m *MediaPostgreSQL) GetQuizImage(ctx context.Context, tx *gorm.DB, id string) (*models.QuizImage, error) {
	db := m.getDB(tx)
	var image models.QuizImage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (m *MediaPostgreSQL) DeleteQuizImage(ctx context.Context, tx *gorm.DB, id string) error {
	return m.deleteByID(ctx, tx, &models.QuizImage{}, id)
}

// ===== QUESTION IMAGES =====

func (m *MediaPostgreSQL) CreateQuestionImage(ctx context.Context, tx *gorm.DB, image *models.QuestionImage) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create question image: %w", err)
	}
	return nil
}

func (m *MediaPostgreSQL) GetQuestionImage(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionImage, error) {
	db := m.getDB(tx)
	var image models.QuestionImage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (m *MediaPostgreSQL) DeleteQuestionImage(ctx context.Context, tx *gorm.DB, id string) error {
	return m.deleteByID(ctx, tx, &models.QuestionImage{}, id)
}

// ===== RESOURCE MATERIALS =====

func (m *MediaPostgreSQL) CreateResourceMaterial(ctx context.Context, tx *gorm.DB, material *models.ResourceMaterial) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(material).Error; err != nil {
		return fmt.Errorf("failed to create resource material: %w", err)
	}
	return nil
}

func (m *MediaPostgreSQL) GetResourceMaterial(ctx context.Context, tx *gorm.DB, id string) (*models.ResourceMaterial, error) {
	db := m.getDB(tx)
	var material models.ResourceMaterial
	if err := db.WithContext(ctx).Where("id = ?", id).First(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (m *MediaPostgreSQL) DeleteResourceMaterial(ctx context.Context, tx *gorm.DB, id string) error {
	return m.deleteByID(ctx, tx, &models.ResourceMaterial{}, id)
}

func (m *MediaPostgreSQL) ListResourceMaterials(ctx context.Context, tx *gorm.DB, classID string) ([]*models.ResourceMaterial, error) {
	db := m.getDB(tx)
	var materials []*models.ResourceMaterial
	err := db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resource materials: %w", err)
	}
	return materials, nil
}

// ===== BLOB KEYS =====

func (m *MediaPostgreSQL) QuizBlobKeys(ctx context.Context, tx *gorm.DB, quizID string) ([]string, error) {
	db := m.getDB(tx).WithContext(ctx)

	var keys []string
	if err := db.Model(&models.QuizImage{}).Where("quiz_id = ?", quizID).Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to get quiz image keys: %w", err)
	}

	var questionKeys []string
	err := db.Model(&models.QuestionImage{}).
		Where("question_id IN (?)", db.Model(&models.Question{}).Select("id").Where("quiz_id = ?", quizID)).
		Pluck("key", &questionKeys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get question image keys: %w", err)
	}

	return append(keys, questionKeys...), nil
}

func (m *MediaPostgreSQL) QuestionBlobKeys(ctx context.Context, tx *gorm.DB, questionID string) ([]string, error) {
	db := m.getDB(tx)
	var keys []string
	err := db.WithContext(ctx).
		Model(&models.QuestionImage{}).
		Where("question_id = ?", questionID).
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get question image keys: %w", err)
	}
	return keys, nil
}

func (m *MediaPostgreSQL) deleteByID(ctx context.Context, tx *gorm.DB, model interface{}, id string) error {
	db := m.getDB(tx)
	result := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete media record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
