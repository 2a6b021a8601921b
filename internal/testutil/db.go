// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/pkg"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated sqlite database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateQuiz stores a quiz owned by teacherID with the given questions.
func CreateQuiz(t *testing.T, db *gorm.DB, teacherID string, questions ...models.Question) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{
		Title:       "Quiz",
		Description: "desc",
		Duration:    30,
		IsPublic:    true,
		TeacherID:   teacherID,
		Questions:   questions,
	}
	require.NoError(t, db.Create(quiz).Error)
	quiz.RefreshComputed()
	return quiz
}

func SingleSelect(text string, correct, marks, position int) models.Question {
	return models.Question{
		Text:          text,
		Type:          models.SingleSelect,
		Options:       datatypes.JSONSlice[string]{"a", "b", "c", "d"},
		CorrectAnswer: models.AnswerJSON(mustJSON(correct)),
		Marks:         marks,
		Position:      position,
	}
}

func MultipleSelect(text string, correct []int, marks, position int) models.Question {
	return models.Question{
		Text:          text,
		Type:          models.MultipleSelect,
		Options:       datatypes.JSONSlice[string]{"a", "b", "c", "d"},
		CorrectAnswer: models.AnswerJSON(mustJSON(correct)),
		Marks:         marks,
		Position:      position,
	}
}

func FillInBlank(text string, accepted []string, marks, position int) models.Question {
	return models.Question{
		Text:          text,
		Type:          models.FillInBlank,
		CorrectAnswer: models.AnswerJSON(mustJSON(accepted)),
		Marks:         marks,
		Position:      position,
	}
}

func Integer(text string, value float64, marks, position int) models.Question {
	return models.Question{
		Text:          text,
		Type:          models.Integer,
		CorrectAnswer: models.AnswerJSON(mustJSON(value)),
		Marks:         marks,
		Position:      position,
	}
}
