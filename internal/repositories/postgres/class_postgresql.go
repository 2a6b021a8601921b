package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassPostgreSQL struct {
	base
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{base{db: db}}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(class).Error; err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Class, error) {
	db := c.getDB(tx)
	var class models.Class
	err := db.WithContext(ctx).
		Preload("Teacher").
		Preload("Students").
		Preload("Quizzes").
		Where("id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	db := c.getDB(tx)
	result := db.WithContext(ctx).Model(&models.Class{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update class: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *ClassPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	run := func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM class_students WHERE class_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete enrolments: %w", err)
		}
		if err := tx.Model(&models.Quiz{}).Where("class_id = ?", id).Update("class_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach quizzes: %w", err)
		}
		if err := tx.Model(&models.ResourceMaterial{}).Where("class_id = ?", id).Update("class_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach materials: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Class{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete class: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return c.db.WithContext(ctx).Transaction(run)
}

func (c *ClassPostgreSQL) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) ([]*models.Class, error) {
	db := c.getDB(tx)
	var classes []*models.Class
	err := db.WithContext(ctx).
		Preload("Students").
		Preload("Quizzes").
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list teaching classes: %w", err)
	}
	return classes, nil
}

func (c *ClassPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Class, error) {
	db := c.getDB(tx)
	var classes []*models.Class
	err := db.WithContext(ctx).
		Preload("Teacher").
		Preload("Quizzes").
		Joins("JOIN class_students ON class_students.class_id = classes.id").
		Where("class_students.user_id = ?", studentID).
		Order("classes.created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled classes: %w", err)
	}
	return classes, nil
}

// AddStudent enrols the student. Enrolling twice is a no-op.
func (c *ClassPostgreSQL) AddStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) error {
	db := c.getDB(tx)
	err := db.WithContext(ctx).Exec(
		"INSERT INTO class_students (class_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		classID, studentID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to add student: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) IsStudent(ctx context.Context, tx *gorm.DB, classID, studentID string) (bool, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Table("class_students").
		Where("class_id = ? AND user_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (c *ClassPostgreSQL) CountByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) (int64, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.Class{}).Where("teacher_id = ?", teacherID).Count(&count).Error
	return count, err
}

func (c *ClassPostgreSQL) CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Table("class_students").Where("user_id = ?", studentID).Count(&count).Error
	return count, err
}
