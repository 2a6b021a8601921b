package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"golang.org/x/sync/errgroup"
)

type userService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewUserService(deps Dependencies) UserService {
	return &userService{
		repo:      deps.Repo,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "user_service"}),
	}
}

func (s *userService) GetProfile(ctx context.Context, actor auth.Identity) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest, actor auth.Identity) (user *models.User, err error) {
	op := s.opLogger.WithOperation(ctx, "update_profile", actor.ID)
	defer func() { op.LogResult(actor.ID, "user", err) }()

	normalizeEmail(req.Email)
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err = s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "get user")
	}

	if req.Name != nil {
		user.Name = trimmedOrNil(req.Name)
	}
	if req.Email != nil {
		if err := changeEmail(ctx, s.repo, user, *req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, userWriteError(err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, req *ChangePasswordRequest, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "change_password", actor.ID)
	defer func() { op.LogResult(actor.ID, "user", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		return notFoundAs(err, ErrUserNotFound, "get user")
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return ErrIncorrectPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return userWriteError(err)
	}
	return nil
}

// Stats returns the teacher block for teachers and admins and the student
// block for everyone else.
func (s *userService) Stats(ctx context.Context, actor auth.Identity) (*UserStats, error) {
	if actor.HasRole(models.RoleTeacher, models.RoleAdmin) {
		stats, err := s.teacherStats(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return &UserStats{Teacher: stats}, nil
	}

	stats, err := s.studentStats(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &UserStats{Student: stats}, nil
}

func (s *userService) teacherStats(ctx context.Context, teacherID string) (*TeacherStats, error) {
	var (
		stats     TeacherStats
		responses *repositories.TeacherResponseStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Quizzes, err = s.repo.Quiz().CountByTeacher(gctx, nil, teacherID)
		return err
	})
	g.Go(func() (err error) {
		stats.Classes, err = s.repo.Class().CountByTeacher(gctx, nil, teacherID)
		return err
	})
	g.Go(func() (err error) {
		responses, err = s.repo.Response().TeacherStats(gctx, nil, teacherID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute teacher stats: %w", err)
	}

	stats.Students = responses.DistinctStudents
	stats.TotalAttempts = responses.TotalAttempts
	return &stats, nil
}

func (s *userService) studentStats(ctx context.Context, userID string) (*StudentStats, error) {
	responses, err := s.repo.Response().UserStats(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute student stats: %w", err)
	}
	classes, err := s.repo.Class().CountByStudent(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count classes: %w", err)
	}

	return &StudentStats{
		AttemptedQuizzes: responses.Attempts,
		Classes:          classes,
		TotalScore:       responses.TotalScore,
		AverageScore:     int(math.Round(responses.AverageScore)),
	}, nil
}

func (s *userService) Subjects(ctx context.Context) ([]Subject, error) {
	counts, err := s.repo.Question().ListSubjects(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	subjects := make([]Subject, 0, len(counts))
	for _, c := range counts {
		subjects = append(subjects, Subject{
			ID:            SubjectID(c.Subject),
			Name:          c.Subject,
			QuestionCount: c.QuestionCount,
		})
	}
	return subjects, nil
}

// Grades are the levels a quiz can target. The list is fixed.
var Grades = []Grade{
	{ID: "11", Name: "Class 11"},
	{ID: "12", Name: "Class 12"},
	{ID: "neet", Name: "NEET Preparation"},
	{ID: "jee", Name: "JEE Preparation"},
}

func (s *userService) Grades(ctx context.Context) []Grade {
	out := make([]Grade, len(Grades))
	copy(out, Grades)
	return out
}

// SubjectID lowercases the name and joins its words with underscores.
func SubjectID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// changeEmail sets a new normalized email on user after checking that no
// other account uses it.
func changeEmail(ctx context.Context, repo repositories.Repository, user *models.User, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == user.Email {
		return nil
	}
	taken, err := repo.User().ExistsByEmail(ctx, nil, email, &user.ID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	user.Email = email
	return nil
}

func userWriteError(err error) error {
	if repositories.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	if repositories.IsNotFoundError(err) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to update user: %w", err)
}
