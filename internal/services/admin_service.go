package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type adminService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewAdminService(deps Dependencies) AdminService {
	return &adminService{
		repo:      deps.Repo,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "admin_service"}),
	}
}

func (s *adminService) ListUsers(ctx context.Context, req *ListUsersRequest) (*UserListResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	limit, offset := repositories.NormalizePage(req.Limit, req.Offset)
	users, total, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Role:   req.Role,
		Search: req.Search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*models.User{}
	}

	return &UserListResponse{Users: users, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *adminService) CreateUser(ctx context.Context, req *AdminCreateUserRequest) (user *models.User, err error) {
	op := s.opLogger.WithOperation(ctx, "admin_create_user", "")
	defer func() {
		id := ""
		if user != nil {
			id = user.ID
		}
		op.LogResult(id, "user", err)
	}()

	normalizeEmail(&req.Email)
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	return createUser(ctx, s.repo, req.Email, req.Password, trimmedOrNil(req.Name), req.Role)
}

func (s *adminService) UpdateUser(ctx context.Context, id string, req *AdminUpdateUserRequest) (user *models.User, err error) {
	op := s.opLogger.WithOperation(ctx, "admin_update_user", "")
	defer func() { op.LogResult(id, "user", err) }()

	normalizeEmail(req.Email)
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err = s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "get user")
	}

	if req.Name != nil {
		user.Name = trimmedOrNil(req.Name)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Email != nil {
		if err := changeEmail(ctx, s.repo, user, *req.Email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, userWriteError(err)
	}
	return user, nil
}

// DeleteUser refuses to orphan quizzes or classes; responses and
// enrolments go with the user.
func (s *adminService) DeleteUser(ctx context.Context, id string) (err error) {
	op := s.opLogger.WithOperation(ctx, "admin_delete_user", "")
	defer func() { op.LogResult(id, "user", err) }()

	if _, err := s.repo.User().GetByID(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrUserNotFound, "get user")
	}

	quizzes, err := s.repo.Quiz().CountByTeacher(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count quizzes: %w", err)
	}
	classes, err := s.repo.Class().CountByTeacher(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count classes: %w", err)
	}
	if quizzes > 0 || classes > 0 {
		return ErrUserOwnsContent
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrUserNotFound, "delete user")
	}
	return nil
}
