package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type classService struct {
	repo      repositories.Repository
	events    events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewClassService(deps Dependencies) ClassService {
	return &classService{
		repo:      deps.Repo,
		events:    deps.Events,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "class_service"}),
	}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, actor auth.Identity) (class *models.Class, err error) {
	op := s.opLogger.WithOperation(ctx, "create_class", actor.ID)
	defer func() {
		id := ""
		if class != nil {
			id = class.ID
		}
		op.LogResult(id, "class", err)
	}()

	if !actor.HasRole(models.RoleTeacher, models.RoleAdmin) {
		return nil, ErrInsufficientPrivilege
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	class = &models.Class{
		Name:         strings.TrimSpace(req.Name),
		Description:  trimmedOrNil(req.Description),
		PasswordHash: hash,
		TeacherID:    actor.ID,
	}
	if err := s.repo.Class().Create(ctx, nil, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return class, nil
}

func (s *classService) Teaching(ctx context.Context, actor auth.Identity) ([]*models.Class, error) {
	classes, err := s.repo.Class().ListByTeacher(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return nonNilClasses(classes), nil
}

func (s *classService) Enrolled(ctx context.Context, actor auth.Identity) ([]*models.Class, error) {
	classes, err := s.repo.Class().ListByStudent(ctx, nil, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return nonNilClasses(classes), nil
}

// Join enrols the actor. Joining a class twice is a no-op.
func (s *classService) Join(ctx context.Context, req *JoinClassRequest, actor auth.Identity) (class *models.Class, err error) {
	op := s.opLogger.WithOperation(ctx, "join_class", actor.ID)
	defer func() { op.LogResult(req.ClassID, "class", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	class, err = s.repo.Class().GetByID(ctx, nil, req.ClassID)
	if err != nil {
		return nil, notFoundAs(err, ErrClassNotFound, "get class")
	}

	ok, err := auth.CheckPassword(class.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to check class password: %w", err)
	}
	if !ok {
		s.opLogger.LogSecurityEvent(ctx, SecurityEvent{
			Type:        SecurityEventWrongClassPassword,
			Severity:    SecuritySeverityLow,
			UserID:      actor.ID,
			Description: "wrong class password",
			Metadata:    map[string]interface{}{"class_id": class.ID},
		})
		return nil, ErrClassPasswordMismatch
	}

	if err := s.repo.Class().AddStudent(ctx, nil, class.ID, actor.ID); err != nil {
		return nil, fmt.Errorf("failed to join class: %w", err)
	}

	publishEvent(ctx, s.events, s.logger, events.EventClassJoined, events.ClassJoinedEvent{
		ClassID:   class.ID,
		TeacherID: class.TeacherID,
		StudentID: actor.ID,
	})
	return class, nil
}

func (s *classService) Update(ctx context.Context, id string, req *UpdateClassRequest, actor auth.Identity) (class *models.Class, err error) {
	op := s.opLogger.WithOperation(ctx, "update_class", actor.ID)
	defer func() { op.LogResult(id, "class", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.getOwnedClass(ctx, id, actor); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = trimmedOrNil(req.Description)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.repo.Class().Update(ctx, nil, id, updates); err != nil {
			return nil, notFoundAs(err, ErrClassNotFound, "update class")
		}
	}

	class, err = s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrClassNotFound, "get class")
	}
	return class, nil
}

func (s *classService) Delete(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_class", actor.ID)
	defer func() { op.LogResult(id, "class", err) }()

	if _, err := s.getOwnedClass(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Class().Delete(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrClassNotFound, "delete class")
	}
	return nil
}

// getOwnedClass hides classes of other teachers behind ErrClassNotFound.
func (s *classService) getOwnedClass(ctx context.Context, id string, actor auth.Identity) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrClassNotFound, "get class")
	}
	if class.TeacherID != actor.ID {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func nonNilClasses(classes []*models.Class) []*models.Class {
	if classes == nil {
		return []*models.Class{}
	}
	return classes
}
