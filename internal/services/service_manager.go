package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Repo      repositories.Repository
	Store     storage.ObjectStore
	Cache     cache.CacheService
	Events    events.EventPublisher
	Tokens    *auth.TokenManager
	Validator *validator.Validator
	Logger    *slog.Logger

	LeaderboardTTL time.Duration
	MaxUploadBytes int64
}

type ServiceManager interface {
	Quiz() QuizService
	Question() QuestionService
	Submission() SubmissionService
	ImportExport() ImportExportService
	Auth() AuthService
	User() UserService
	Admin() AdminService
	Class() ClassService
	Media() MediaService
}

type serviceManager struct {
	quiz         QuizService
	question     QuestionService
	submission   SubmissionService
	importExport ImportExportService
	auth         AuthService
	user         UserService
	admin        AdminService
	class        ClassService
	media        MediaService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopCache()
	}
	if deps.LeaderboardTTL <= 0 {
		deps.LeaderboardTTL = time.Minute
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}

	return &serviceManager{
		quiz:         NewQuizService(deps),
		question:     NewQuestionService(deps),
		submission:   NewSubmissionService(deps),
		importExport: NewImportExportService(deps),
		auth:         NewAuthService(deps),
		user:         NewUserService(deps),
		admin:        NewAdminService(deps),
		class:        NewClassService(deps),
		media:        NewMediaService(deps),
	}
}

func (m *serviceManager) Quiz() QuizService                 { return m.quiz }
func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) Submission() SubmissionService     { return m.submission }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Admin() AdminService               { return m.admin }
func (m *serviceManager) Class() ClassService               { return m.class }
func (m *serviceManager) Media() MediaService               { return m.media }
