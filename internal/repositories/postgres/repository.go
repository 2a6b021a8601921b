package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db       *gorm.DB
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	response repositories.ResponseRepository
	user     repositories.UserRepository
	class    repositories.ClassRepository
	media    repositories.MediaRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		user:     NewUserPostgreSQL(db),
		class:    NewClassPostgreSQL(db),
		media:    NewMediaPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Response() repositories.ResponseRepository { return r.response }
func (r *Repository) User() repositories.UserRepository         { return r.user }
func (r *Repository) Class() repositories.ClassRepository       { return r.class }
func (r *Repository) Media() repositories.MediaRepository       { return r.media }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// base is embedded by every repository for tx selection.
type base struct {
	db *gorm.DB
}

func (b base) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return b.db
}

func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + s + "%"
}
