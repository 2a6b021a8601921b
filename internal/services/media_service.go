package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

const DefaultMaxUploadBytes int64 = 10 << 20

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

type mediaService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	maxBytes  int64
}

func NewMediaService(deps Dependencies) MediaService {
	maxBytes := deps.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &mediaService{
		repo:      deps.Repo,
		store:     deps.Store,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "media_service"}),
		maxBytes:  maxBytes,
	}
}

// ===== QUIZ IMAGES =====

func (s *mediaService) UploadQuizImage(ctx context.Context, quizID string, file storage.File, actor auth.Identity) (image *models.QuizImage, err error) {
	op := s.opLogger.WithOperation(ctx, "upload_quiz_image", actor.ID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	if err := s.checkImage(file); err != nil {
		return nil, err
	}
	if _, err := s.ownedQuiz(ctx, quizID, actor, "upload_image"); err != nil {
		return nil, err
	}

	obj, err := s.store.Upload(ctx, file, storage.FolderQuizImages)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image = &models.QuizImage{QuizID: quizID, StoredObject: *obj}
	if err := s.repo.Media().CreateQuizImage(ctx, nil, image); err != nil {
		s.discard(ctx, obj.Key)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return image, nil
}

func (s *mediaService) DeleteQuizImage(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_quiz_image", actor.ID)
	defer func() { op.LogResult(id, "quiz_image", err) }()

	image, err := s.repo.Media().GetQuizImage(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrMediaNotFound, "get image")
	}
	if _, err := s.ownedQuiz(ctx, image.QuizID, actor, "delete_image"); err != nil {
		return err
	}

	deleteBlobs(ctx, s.store, s.logger, []string{image.Key})
	if err := s.repo.Media().DeleteQuizImage(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrMediaNotFound, "delete image")
	}
	return nil
}

// ===== QUESTION IMAGES =====

func (s *mediaService) UploadQuestionImage(ctx context.Context, questionID string, file storage.File, actor auth.Identity) (image *models.QuestionImage, err error) {
	op := s.opLogger.WithOperation(ctx, "upload_question_image", actor.ID)
	defer func() { op.LogResult(questionID, "question", err) }()

	if err := s.checkImage(file); err != nil {
		return nil, err
	}
	if err := s.ownQuestion(ctx, questionID, actor, "upload_image"); err != nil {
		return nil, err
	}

	obj, err := s.store.Upload(ctx, file, storage.FolderQuestionImages)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image = &models.QuestionImage{QuestionID: questionID, StoredObject: *obj}
	if err := s.repo.Media().CreateQuestionImage(ctx, nil, image); err != nil {
		s.discard(ctx, obj.Key)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return image, nil
}

func (s *mediaService) DeleteQuestionImage(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_question_image", actor.ID)
	defer func() { op.LogResult(id, "question_image", err) }()

	image, err := s.repo.Media().GetQuestionImage(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrMediaNotFound, "get image")
	}
	if err := s.ownQuestion(ctx, image.QuestionID, actor, "delete_image"); err != nil {
		return err
	}

	deleteBlobs(ctx, s.store, s.logger, []string{image.Key})
	if err := s.repo.Media().DeleteQuestionImage(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrMediaNotFound, "delete image")
	}
	return nil
}

// ===== RESOURCE MATERIALS =====

func (s *mediaService) UploadResourceMaterial(ctx context.Context, req *UploadMaterialRequest, file storage.File, actor auth.Identity) (material *models.ResourceMaterial, err error) {
	op := s.opLogger.WithOperation(ctx, "upload_resource_material", actor.ID)
	defer func() {
		id := ""
		if material != nil {
			id = material.ID
		}
		op.LogResult(id, "resource_material", err)
	}()

	if !actor.HasRole(models.RoleTeacher, models.RoleAdmin) {
		return nil, ErrInsufficientPrivilege
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkSize(file); err != nil {
		return nil, err
	}

	classID := trimmedOrNil(req.ClassID)
	if classID != nil {
		class, err := s.repo.Class().GetByID(ctx, nil, *classID)
		if err != nil {
			return nil, notFoundAs(err, ErrClassNotFound, "get class")
		}
		if class.TeacherID != actor.ID {
			return nil, NewPermissionError(actor.ID, class.ID, "class", "upload_material", "not the class teacher")
		}
	}

	obj, err := s.store.Upload(ctx, file, storage.FolderResourceMaterials)
	if err != nil {
		return nil, fmt.Errorf("failed to upload material: %w", err)
	}

	material = &models.ResourceMaterial{
		Title:        strings.TrimSpace(req.Title),
		Description:  trimmedOrNil(req.Description),
		ClassID:      classID,
		TeacherID:    actor.ID,
		StoredObject: *obj,
	}
	if err := s.repo.Media().CreateResourceMaterial(ctx, nil, material); err != nil {
		s.discard(ctx, obj.Key)
		return nil, fmt.Errorf("failed to save material: %w", err)
	}
	return material, nil
}

func (s *mediaService) DeleteResourceMaterial(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_resource_material", actor.ID)
	defer func() { op.LogResult(id, "resource_material", err) }()

	material, err := s.repo.Media().GetResourceMaterial(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrMediaNotFound, "get material")
	}
	if material.TeacherID != actor.ID {
		return NewPermissionError(actor.ID, id, "resource_material", "delete", "not the uploader")
	}

	deleteBlobs(ctx, s.store, s.logger, []string{material.Key})
	if err := s.repo.Media().DeleteResourceMaterial(ctx, nil, id); err != nil {
		return notFoundAs(err, ErrMediaNotFound, "delete material")
	}
	return nil
}

// ===== HELPERS =====

func (s *mediaService) ownedQuiz(ctx context.Context, quizID string, actor auth.Identity, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, quizID, "quiz", action, "not the quiz owner")
	}
	return quiz, nil
}

func (s *mediaService) ownQuestion(ctx context.Context, questionID string, actor auth.Identity, action string) error {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		return notFoundAs(err, ErrQuestionNotFound, "get question")
	}
	_, err = s.ownedQuiz(ctx, question.QuizID, actor, action)
	return err
}

func (s *mediaService) checkSize(file storage.File) error {
	if file.Size > s.maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

func (s *mediaService) checkImage(file storage.File) error {
	if err := s.checkSize(file); err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return nil
	}
	if imageExtensions[strings.ToLower(filepath.Ext(file.FileName))] {
		return nil
	}
	return ErrUnsupportedFormat
}

// discard removes a blob whose database record could not be written.
func (s *mediaService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove orphaned blob", "key", key, "error", err)
	}
}
