package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every repository and owns transaction boundaries.
// Methods taking a tx use it when non-nil and the base connection otherwise.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Response() ResponseRepository
	User() UserRepository
	Class() ClassRepository
	Media() MediaRepository

	// WithTransaction runs fn in one database transaction. Returning an
	// error from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	TeacherID  *string `json:"teacher_id"`
	ClassID    *string `json:"class_id"`
	PublicOnly bool    `json:"public_only"`
	Search     string  `json:"search"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

type UserFilters struct {
	Role   *string `json:"role"`
	Search string  `json:"search"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// TeacherResponseStats aggregates responses across a teacher's quizzes.
type TeacherResponseStats struct {
	TotalAttempts    int64 `json:"total_attempts"`
	DistinctStudents int64 `json:"distinct_students"`
}

// UserResponseStats aggregates one user's responses.
type UserResponseStats struct {
	Attempts     int64   `json:"attempts"`
	TotalScore   float64 `json:"total_score"`
	AverageScore float64 `json:"average_score"`
}

type SubjectCount struct {
	Subject       string `json:"subject"`
	QuestionCount int64  `json:"question_count"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxExportRows   = 10000
)

// NormalizePage clamps limit and offset to sane values.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
