package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
)

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, actor auth.Identity) (*QuizView, error)
	// GetByID returns correct answers only when the actor owns the quiz.
	GetByID(ctx context.Context, id string, actor auth.Identity) (*QuizView, error)
	Update(ctx context.Context, id string, req *UpdateQuizRequest, actor auth.Identity) (*QuizView, error)
	// Delete removes stored blobs first, then every row of the quiz.
	Delete(ctx context.Context, id string, actor auth.Identity) error
	List(ctx context.Context, req *ListQuizzesRequest, actor auth.Identity) (*QuizListResponse, error)
	// GetPublic serves anonymous, answer-free views of public quizzes.
	GetPublic(ctx context.Context, id string, password string) (*QuizView, error)
	// Metadata is GetByID without the questions.
	Metadata(ctx context.Context, id string, actor auth.Identity) (*QuizView, error)
	// ValidatePassword checks a public quiz's password without loading it.
	ValidatePassword(ctx context.Context, id string, password string) error
}

type QuestionService interface {
	Add(ctx context.Context, quizID string, req *QuestionInput, actor auth.Identity) (*QuestionView, error)
	Update(ctx context.Context, id string, req *UpdateQuestionRequest, actor auth.Identity) (*QuestionView, error)
	Delete(ctx context.Context, id string, actor auth.Identity) error
}

type SubmissionService interface {
	Submit(ctx context.Context, quizID string, req *SubmitRequest, actor auth.Identity) (*SubmitResult, error)
	Leaderboard(ctx context.Context, quizID string, limit int) ([]LeaderboardEntry, error)
	// Responses returns every response to the owner and only their own to
	// anyone else.
	Responses(ctx context.Context, quizID string, actor auth.Identity) ([]ResponseDetail, error)
	// Attempted lists the quizzes the actor has submitted, newest first.
	Attempted(ctx context.Context, actor auth.Identity) ([]AttemptedQuiz, error)
}

type ImportExportService interface {
	ExportResponses(ctx context.Context, quizID string, format ExportFormat, actor auth.Identity) ([]byte, error)
	ImportQuestions(ctx context.Context, quizID string, r io.Reader, fileName string, actor auth.Identity) (*ImportResult, error)
}

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, actor auth.Identity) (*models.User, error)
}

type UserService interface {
	GetProfile(ctx context.Context, actor auth.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest, actor auth.Identity) (*models.User, error)
	ChangePassword(ctx context.Context, req *ChangePasswordRequest, actor auth.Identity) error
	Stats(ctx context.Context, actor auth.Identity) (*UserStats, error)
	Subjects(ctx context.Context) ([]Subject, error)
	Grades(ctx context.Context) []Grade
}

type AdminService interface {
	ListUsers(ctx context.Context, req *ListUsersRequest) (*UserListResponse, error)
	CreateUser(ctx context.Context, req *AdminCreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req *AdminUpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, actor auth.Identity) (*models.Class, error)
	Teaching(ctx context.Context, actor auth.Identity) ([]*models.Class, error)
	Enrolled(ctx context.Context, actor auth.Identity) ([]*models.Class, error)
	Join(ctx context.Context, req *JoinClassRequest, actor auth.Identity) (*models.Class, error)
	Update(ctx context.Context, id string, req *UpdateClassRequest, actor auth.Identity) (*models.Class, error)
	Delete(ctx context.Context, id string, actor auth.Identity) error
}

type MediaService interface {
	UploadQuizImage(ctx context.Context, quizID string, file storage.File, actor auth.Identity) (*models.QuizImage, error)
	DeleteQuizImage(ctx context.Context, id string, actor auth.Identity) error
	UploadQuestionImage(ctx context.Context, questionID string, file storage.File, actor auth.Identity) (*models.QuestionImage, error)
	DeleteQuestionImage(ctx context.Context, id string, actor auth.Identity) error
	UploadResourceMaterial(ctx context.Context, req *UploadMaterialRequest, file storage.File, actor auth.Identity) (*models.ResourceMaterial, error)
	DeleteResourceMaterial(ctx context.Context, id string, actor auth.Identity) error
}
