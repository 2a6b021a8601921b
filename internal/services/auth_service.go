package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenManager
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewAuthService(deps Dependencies) AuthService {
	return &authService{
		repo:      deps.Repo,
		tokens:    deps.Tokens,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "auth_service"}),
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (user *models.User, err error) {
	op := s.opLogger.WithOperation(ctx, "signup", "")
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

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	return createUser(ctx, s.repo, req.Email, req.Password, trimmedOrNil(req.Name), role)
}

// Login answers every credential failure with the same error.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	normalizeEmail(&req.Email)
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logFailedLogin(ctx, "", req.Email, "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		s.logFailedLogin(ctx, user.ID, req.Email, "wrong password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, actor auth.Identity) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound, "get user")
	}
	return user, nil
}

func (s *authService) logFailedLogin(ctx context.Context, userID, email, reason string) {
	s.opLogger.LogSecurityEvent(ctx, SecurityEvent{
		Type:        SecurityEventFailedLogin,
		Severity:    SecuritySeverityMedium,
		UserID:      userID,
		Description: "failed login",
		Metadata:    map[string]interface{}{"email": email, "reason": reason},
	})
}

// createUser is shared by signup and the admin API.
func createUser(ctx context.Context, repo repositories.Repository, email, password string, name *string, role models.UserRole) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	taken, err := repo.User().ExistsByEmail(ctx, nil, email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
