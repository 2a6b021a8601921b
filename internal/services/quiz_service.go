package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type quizService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	cache     cache.CacheService
	events    events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewQuizService(deps Dependencies) QuizService {
	return &quizService{
		repo:      deps.Repo,
		store:     deps.Store,
		cache:     deps.Cache,
		events:    deps.Events,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "quiz_service"}),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, actor auth.Identity) (view *QuizView, err error) {
	op := s.opLogger.WithOperation(ctx, "create_quiz", actor.ID)
	defer func() {
		id := ""
		if view != nil {
			id = view.ID
		}
		op.LogResult(id, "quiz", err)
	}()

	if !actor.HasRole(models.RoleTeacher, models.RoleAdmin) {
		return nil, NewPermissionError(actor.ID, "", "quiz", "create", "only teachers can create quizzes")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	questions := make([]models.Question, len(req.Questions))
	batch := make([]*models.Question, len(req.Questions))
	for i := range req.Questions {
		questions[i] = buildQuestion(&req.Questions[i], i)
		batch[i] = &questions[i]
	}
	// Every question must pass before anything is written
	if err := s.validator.Question().ValidateBatch(batch); err != nil {
		return nil, err
	}
	for _, q := range batch {
		if err := canonicalizeAnswer(q); err != nil {
			return nil, err
		}
	}

	if req.ClassID != nil {
		if err := s.checkClassOwner(ctx, *req.ClassID, actor); err != nil {
			return nil, err
		}
	}

	passwordHash, err := hashOptional(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash quiz password: %w", err)
	}

	quiz := &models.Quiz{
		Title:        req.Title,
		Description:  req.Description,
		Duration:     req.Duration,
		IsPublic:     req.IsPublic,
		PasswordHash: passwordHash,
		TeacherID:    actor.ID,
		ClassID:      req.ClassID,
		Questions:    questions,
	}

	if err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Quiz().Create(ctx, tx, quiz)
	}); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "teacher_id", actor.ID, "questions", len(quiz.Questions))

	publishEvent(ctx, s.events, s.logger, events.EventQuizCreated, events.QuizCreatedEvent{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		TeacherID:      quiz.TeacherID,
		ClassID:        quiz.ClassID,
		QuestionsCount: quiz.QuestionsCount,
		TotalMarks:     quiz.TotalMarks,
		IsPublic:       quiz.IsPublic,
	})

	v := NewQuizView(quiz, true)
	return &v, nil
}

func (s *quizService) GetByID(ctx context.Context, id string, actor auth.Identity) (*QuizView, error) {
	quiz, err := s.repo.Quiz().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}

	view := NewQuizView(quiz, quiz.IsOwnedBy(actor.ID))
	return &view, nil
}

func (s *quizService) Update(ctx context.Context, id string, req *UpdateQuizRequest, actor auth.Identity) (view *QuizView, err error) {
	op := s.opLogger.WithOperation(ctx, "update_quiz", actor.ID)
	defer func() { op.LogResult(id, "quiz", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.getOwnedQuiz(ctx, id, actor, "update")
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.Password != nil {
		hash, err := hashOptional(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash quiz password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if req.ClassID != nil {
		if err := s.checkClassOwner(ctx, *req.ClassID, actor); err != nil {
			return nil, err
		}
		updates["class_id"] = *req.ClassID
	}

	if err := s.repo.Quiz().Update(ctx, nil, quiz.ID, updates); err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "update quiz")
	}

	updated, err := s.repo.Quiz().GetByIDWithDetails(ctx, nil, quiz.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "reload quiz")
	}
	v := NewQuizView(updated, true)
	return &v, nil
}

// Delete awaits every blob deletion before the rows go. Blob failures are
// tolerated so record cleanup never gets stuck.
func (s *quizService) Delete(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_quiz", actor.ID)
	defer func() { op.LogResult(id, "quiz", err) }()

	quiz, err := s.getOwnedQuiz(ctx, id, actor, "delete")
	if err != nil {
		return err
	}

	keys, err := s.repo.Media().QuizBlobKeys(ctx, nil, quiz.ID)
	if err != nil {
		return fmt.Errorf("failed to collect quiz blobs: %w", err)
	}
	deleted, failed := deleteBlobs(ctx, s.store, s.logger, keys)

	if err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Quiz().Delete(ctx, tx, quiz.ID)
	}); err != nil {
		return notFoundAs(err, ErrQuizNotFound, "delete quiz")
	}

	if err := s.cache.DeletePattern(ctx, cache.LeaderboardPattern(quiz.ID)); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "quiz_id", quiz.ID, "error", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", quiz.ID, "blobs_deleted", deleted, "blobs_failed", failed)

	publishEvent(ctx, s.events, s.logger, events.EventQuizDeleted, events.QuizDeletedEvent{
		QuizID:       quiz.ID,
		TeacherID:    quiz.TeacherID,
		BlobsDeleted: deleted,
		BlobsFailed:  failed,
	})
	return nil
}

// List returns public quizzes when asked, otherwise the teacher's own.
// Students without the public flag also get public quizzes.
func (s *quizService) List(ctx context.Context, req *ListQuizzesRequest, actor auth.Identity) (*QuizListResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	filters := repositories.QuizFilters{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	switch {
	case req.PublicOnly:
		filters.PublicOnly = true
	case actor.HasRole(models.RoleTeacher):
		filters.TeacherID = &actor.ID
	case actor.HasRole(models.RoleAdmin):
		// admins see every quiz
	default:
		filters.PublicOnly = true
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	limit, offset := repositories.NormalizePage(req.Limit, req.Offset)
	resp := &QuizListResponse{
		Quizzes: make([]QuizView, 0, len(quizzes)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for _, quiz := range quizzes {
		view := NewQuizView(quiz, false)
		view.Questions = nil
		resp.Quizzes = append(resp.Quizzes, view)
	}
	return resp, nil
}

func (s *quizService) GetPublic(ctx context.Context, id string, password string) (*QuizView, error) {
	quiz, err := s.repo.Quiz().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if err := s.unlockPublic(ctx, quiz, password); err != nil {
		return nil, err
	}

	view := NewQuizView(quiz, false)
	return &view, nil
}

func (s *quizService) ValidatePassword(ctx context.Context, id string, password string) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	return s.unlockPublic(ctx, quiz, password)
}

func (s *quizService) Metadata(ctx context.Context, id string, actor auth.Identity) (*QuizView, error) {
	view, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	view.Questions = nil
	return view, nil
}

// unlockPublic admits callers to a public quiz. A quiz without a password
// admits everyone.
func (s *quizService) unlockPublic(ctx context.Context, quiz *models.Quiz, password string) error {
	if !quiz.IsPublic {
		return ErrQuizNotPublic
	}
	if !quiz.HasPassword {
		return nil
	}
	if password == "" {
		return ErrQuizPasswordRequired
	}

	ok, err := auth.CheckPassword(*quiz.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("failed to check quiz password: %w", err)
	}
	if !ok {
		s.opLogger.LogSecurityEvent(ctx, SecurityEvent{
			Type:        SecurityEventWrongQuizPassword,
			Severity:    SecuritySeverityLow,
			Description: "wrong quiz password",
			Metadata:    map[string]interface{}{"quiz_id": quiz.ID},
		})
		return ErrQuizPasswordIncorrect
	}
	return nil
}

// ===== HELPERS =====

func (s *quizService) getOwnedQuiz(ctx context.Context, id string, actor auth.Identity, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, id, "quiz", action, "not the quiz owner")
	}
	return quiz, nil
}

func (s *quizService) checkClassOwner(ctx context.Context, classID string, actor auth.Identity) error {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		return notFoundAs(err, ErrClassNotFound, "get class")
	}
	if class.TeacherID != actor.ID {
		return NewPermissionError(actor.ID, classID, "class", "attach_quiz", "not the class owner")
	}
	return nil
}

// buildQuestion maps request input onto a model without validating it.
func buildQuestion(in *QuestionInput, position int) models.Question {
	q := models.Question{
		Text:          in.Text,
		Type:          in.Type,
		Options:       datatypes.JSONSlice[string](in.Options),
		CorrectAnswer: models.AnswerJSON(in.CorrectAnswer),
		Marks:         models.DefaultMarks,
		Position:      position,
		Subject:       trimmedOrNil(in.Subject),
		Explanation:   in.Explanation,
		AnswerLink:    in.AnswerLink,
		Difficulty:    in.Difficulty,
		Tags:          datatypes.JSONSlice[string](in.Tags),
	}
	if in.Marks != nil {
		q.Marks = *in.Marks
	}
	if q.Difficulty == "" {
		q.Difficulty = models.DifficultyMedium
	}
	return q
}

// canonicalizeAnswer rewrites the stored answer key in its normal form and
// drops options that the question type does not use.
func canonicalizeAnswer(q *models.Question) error {
	key, err := q.AnswerKey()
	if err != nil {
		return NewValidationError("correct_answer", err.Error(), string(q.CorrectAnswer))
	}
	encoded, err := models.EncodeAnswerKey(key)
	if err != nil {
		return fmt.Errorf("failed to encode answer key: %w", err)
	}
	q.CorrectAnswer = encoded
	if !q.Type.UsesOptions() {
		q.Options = nil
	}
	return nil
}
