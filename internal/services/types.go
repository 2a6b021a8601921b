package services

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/scoring"
)

// ===== QUIZ REQUESTS =====

type QuestionInput struct {
	Text          string                 `json:"text" validate:"required,max=2000"`
	Type          models.QuestionType    `json:"type" validate:"required,question_type"`
	Options       []string               `json:"options" validate:"omitempty,max=20,dive,max=500"`
	CorrectAnswer json.RawMessage        `json:"correct_answer" swaggertype:"object"`
	Marks         *int                   `json:"marks" validate:"omitempty,min=1,max=100"`
	Subject       *string                `json:"subject" validate:"omitempty,max=100"`
	Explanation   *string                `json:"explanation" validate:"omitempty,max=2000"`
	AnswerLink    *string                `json:"answer_link" validate:"omitempty,url,max=500"`
	Difficulty    models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Tags          []string               `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type CreateQuizRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=2000"`
	Duration    int             `json:"duration" validate:"required,gt=0,max=1440"`
	IsPublic    bool            `json:"is_public"`
	Password    *string         `json:"password" validate:"omitempty,min=4,max=72"`
	ClassID     *string         `json:"class_id" validate:"omitempty,uuid"`
	Questions   []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// UpdateQuizRequest changes only the fields that are present. An empty
// password removes the quiz password.
type UpdateQuizRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1,max=2000"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0,max=1440"`
	IsPublic    *bool   `json:"is_public"`
	Password    *string `json:"password" validate:"omitempty,max=72"`
	ClassID     *string `json:"class_id" validate:"omitempty,uuid"`
}

// UpdateQuestionRequest is merged into the stored question before validation.
type UpdateQuestionRequest struct {
	Text          *string                 `json:"text" validate:"omitempty,min=1,max=2000"`
	Type          *models.QuestionType    `json:"type" validate:"omitempty,question_type"`
	Options       []string                `json:"options" validate:"omitempty,max=20,dive,max=500"`
	CorrectAnswer json.RawMessage         `json:"correct_answer" swaggertype:"object"`
	Marks         *int                    `json:"marks" validate:"omitempty,min=1,max=100"`
	Position      *int                    `json:"position" validate:"omitempty,min=0"`
	Subject       *string                 `json:"subject" validate:"omitempty,max=100"`
	Explanation   *string                 `json:"explanation" validate:"omitempty,max=2000"`
	AnswerLink    *string                 `json:"answer_link" validate:"omitempty,url,max=500"`
	Difficulty    *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Tags          []string                `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type ListQuizzesRequest struct {
	PublicOnly bool   `form:"public"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int    `form:"offset" validate:"omitempty,min=0"`
}

// ===== QUIZ VIEWS =====

// QuestionView is a question as returned to a client. Answer-revealing fields
// are only filled for the quiz owner.
type QuestionView struct {
	ID            string                 `json:"id"`
	QuizID        string                 `json:"quiz_id"`
	Text          string                 `json:"text"`
	Type          models.QuestionType    `json:"type"`
	Options       []string               `json:"options"`
	CorrectAnswer json.RawMessage        `json:"correct_answer,omitempty" swaggertype:"object"`
	Marks         int                    `json:"marks"`
	Position      int                    `json:"position"`
	Subject       *string                `json:"subject,omitempty"`
	Explanation   *string                `json:"explanation,omitempty"`
	AnswerLink    *string                `json:"answer_link,omitempty"`
	Difficulty    models.DifficultyLevel `json:"difficulty"`
	Tags          []string               `json:"tags"`
	Images        []models.QuestionImage `json:"images"`
}

type QuizView struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Duration       int                `json:"duration"`
	IsPublic       bool               `json:"is_public"`
	HasPassword    bool               `json:"has_password"`
	AttemptCount   int                `json:"attempt_count"`
	TeacherID      string             `json:"teacher_id"`
	ClassID        *string            `json:"class_id,omitempty"`
	TotalMarks     int                `json:"total_marks"`
	QuestionsCount int                `json:"questions_count"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Questions      []QuestionView     `json:"questions,omitempty"`
	Images         []models.QuizImage `json:"images,omitempty"`
}

type QuizListResponse struct {
	Quizzes []QuizView `json:"quizzes"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}

func NewQuestionView(q *models.Question, includeAnswers bool) QuestionView {
	view := QuestionView{
		ID:         q.ID,
		QuizID:     q.QuizID,
		Text:       q.Text,
		Type:       q.Type,
		Options:    nonNil(q.Options),
		Marks:      q.EffectiveMarks(),
		Position:   q.Position,
		Subject:    q.Subject,
		Difficulty: q.Difficulty,
		Tags:       nonNil(q.Tags),
		Images:     q.Images,
	}
	if view.Images == nil {
		view.Images = []models.QuestionImage{}
	}
	if includeAnswers {
		view.CorrectAnswer = json.RawMessage(q.CorrectAnswer)
		view.Explanation = q.Explanation
		view.AnswerLink = q.AnswerLink
	}
	return view
}

func NewQuizView(quiz *models.Quiz, includeAnswers bool) QuizView {
	quiz.RefreshComputed()
	view := QuizView{
		ID:             quiz.ID,
		Title:          quiz.Title,
		Description:    quiz.Description,
		Duration:       quiz.Duration,
		IsPublic:       quiz.IsPublic,
		HasPassword:    quiz.HasPassword,
		AttemptCount:   quiz.AttemptCount,
		TeacherID:      quiz.TeacherID,
		ClassID:        quiz.ClassID,
		TotalMarks:     quiz.TotalMarks,
		QuestionsCount: quiz.QuestionsCount,
		CreatedAt:      quiz.CreatedAt,
		UpdatedAt:      quiz.UpdatedAt,
		Images:         quiz.Images,
	}
	if len(quiz.Questions) > 0 {
		view.Questions = make([]QuestionView, 0, len(quiz.Questions))
		for i := range quiz.Questions {
			view.Questions = append(view.Questions, NewQuestionView(&quiz.Questions[i], includeAnswers))
		}
	}
	return view
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ===== SUBMISSIONS =====

type SubmitRequest struct {
	Answers []models.SubmittedAnswer `json:"answers" validate:"max=500"`
}

type SubmitResult struct {
	ResponseID string  `json:"response_id"`
	Score      float64 `json:"score"`
	TotalMarks int     `json:"total_marks"`
	Percentage int     `json:"percentage"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	Name        *string   `json:"name"`
	Email       string    `json:"email"`
	Score       float64   `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	Percentage  int       `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuestionResult explains the grade of one question in a response.
type QuestionResult struct {
	scoring.Result
	Text          string              `json:"text"`
	Type          models.QuestionType `json:"type"`
	Answer        json.RawMessage     `json:"answer,omitempty" swaggertype:"object"`
	CorrectAnswer json.RawMessage     `json:"correct_answer" swaggertype:"object"`
	Explanation   *string             `json:"explanation,omitempty"`
}

type UserSummary struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

type ResponseDetail struct {
	ResponseID    string           `json:"response_id"`
	QuizID        string           `json:"quiz_id"`
	User          UserSummary      `json:"user"`
	Score         float64          `json:"score"`
	TotalMarks    int              `json:"total_marks"`
	Percentage    int              `json:"percentage"`
	ObtainedMarks float64          `json:"obtained_marks"`
	SubmittedAt   time.Time        `json:"submitted_at"`
	Questions     []QuestionResult `json:"questions"`
}

// AttemptedQuiz is one of the caller's own submissions.
type AttemptedQuiz struct {
	QuizID      string    `json:"quiz_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ResponseID  string    `json:"response_id"`
	Score       float64   `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	Percentage  int       `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ValidateQuizPasswordRequest struct {
	Password string `json:"password"`
}

// ===== AUTH & USERS =====

type SignupRequest struct {
	Email    string          `json:"email" validate:"required,email,max=255"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Name     *string         `json:"name" validate:"omitempty,max=100"`
	Role     models.UserRole `json:"role" validate:"omitempty,oneof=STUDENT TEACHER"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type TeacherStats struct {
	Quizzes       int64 `json:"quizzes"`
	Students      int64 `json:"students"`
	Classes       int64 `json:"classes"`
	TotalAttempts int64 `json:"total_attempts"`
}

type StudentStats struct {
	AttemptedQuizzes int64   `json:"attempted_quizzes"`
	Classes          int64   `json:"classes"`
	TotalScore       float64 `json:"total_score"`
	AverageScore     int     `json:"average_score"`
}

// UserStats holds exactly one of the role specific stat blocks.
type UserStats struct {
	Teacher *TeacherStats `json:"teacher,omitempty"`
	Student *StudentStats `json:"student,omitempty"`
}

type Subject struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int64  `json:"question_count"`
}

type Grade struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ===== ADMIN =====

type AdminCreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email,max=255"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Name     *string         `json:"name" validate:"omitempty,max=100"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
}

type AdminUpdateUserRequest struct {
	Email    *string          `json:"email" validate:"omitempty,email,max=255"`
	Password *string          `json:"password" validate:"omitempty,min=6,max=72"`
	Name     *string          `json:"name" validate:"omitempty,max=100"`
	Role     *models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type ListUsersRequest struct {
	Role   *string `form:"role" validate:"omitempty,user_role"`
	Search string  `form:"search" validate:"omitempty,max=100"`
	Limit  int     `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int     `form:"offset" validate:"omitempty,min=0"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ===== CLASSES =====

type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Password    string  `json:"password" validate:"required,min=4,max=72"`
}

type UpdateClassRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Password    *string `json:"password" validate:"omitempty,min=4,max=72"`
}

type JoinClassRequest struct {
	ClassID  string `json:"class_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ===== MEDIA =====

type UploadMaterialRequest struct {
	Title       string  `form:"title" validate:"required,max=200"`
	Description *string `form:"description" validate:"omitempty,max=2000"`
	ClassID     *string `form:"class_id" validate:"omitempty"`
}
