package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type questionService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewQuestionService(deps Dependencies) QuestionService {
	return &questionService{
		repo:      deps.Repo,
		store:     deps.Store,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "question_service"}),
	}
}

func (s *questionService) Add(ctx context.Context, quizID string, req *QuestionInput, actor auth.Identity) (view *QuestionView, err error) {
	op := s.opLogger.WithOperation(ctx, "add_question", actor.ID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, quizID, "quiz", "add_question", "not the quiz owner")
	}

	question := buildQuestion(req, 0)
	question.QuizID = quiz.ID
	if err := s.validator.Question().ValidateQuestion(&question); err != nil {
		return nil, err
	}
	if err := canonicalizeAnswer(&question); err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		pos, err := s.repo.Question().NextPosition(ctx, tx, quiz.ID)
		if err != nil {
			return err
		}
		question.Position = pos
		return s.repo.Question().Create(ctx, tx, &question)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add question: %w", err)
	}

	v := NewQuestionView(&question, true)
	return &v, nil
}

// Update merges the request into the stored question and validates the
// result as a whole.
func (s *questionService) Update(ctx context.Context, id string, req *UpdateQuestionRequest, actor auth.Identity) (view *QuestionView, err error) {
	op := s.opLogger.WithOperation(ctx, "update_question", actor.ID)
	defer func() { op.LogResult(id, "question", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question, err := s.getOwnedQuestion(ctx, id, actor, "update")
	if err != nil {
		return nil, err
	}

	mergeQuestion(question, req)
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}
	if err := canonicalizeAnswer(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	v := NewQuestionView(question, true)
	return &v, nil
}

func (s *questionService) Delete(ctx context.Context, id string, actor auth.Identity) (err error) {
	op := s.opLogger.WithOperation(ctx, "delete_question", actor.ID)
	defer func() { op.LogResult(id, "question", err) }()

	question, err := s.getOwnedQuestion(ctx, id, actor, "delete")
	if err != nil {
		return err
	}

	keys, err := s.repo.Media().QuestionBlobKeys(ctx, nil, question.ID)
	if err != nil {
		return fmt.Errorf("failed to collect question blobs: %w", err)
	}
	deleted, failed := deleteBlobs(ctx, s.store, s.logger, keys)

	if err := s.repo.Question().Delete(ctx, nil, question.ID); err != nil {
		return notFoundAs(err, ErrQuestionNotFound, "delete question")
	}

	s.logger.Info("Question deleted", "question_id", question.ID, "blobs_deleted", deleted, "blobs_failed", failed)
	return nil
}

func (s *questionService) getOwnedQuestion(ctx context.Context, id string, actor auth.Identity, action string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, ErrQuestionNotFound, "get question")
	}
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, question.QuizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, id, "question", action, "not the quiz owner")
	}
	return question, nil
}

func mergeQuestion(q *models.Question, req *UpdateQuestionRequest) {
	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.Options != nil {
		q.Options = datatypes.JSONSlice[string](req.Options)
	}
	if !models.IsNullJSON(req.CorrectAnswer) {
		q.CorrectAnswer = models.AnswerJSON(req.CorrectAnswer)
	}
	if req.Marks != nil {
		q.Marks = *req.Marks
	}
	if req.Position != nil {
		q.Position = *req.Position
	}
	if req.Subject != nil {
		q.Subject = trimmedOrNil(req.Subject)
	}
	if req.Explanation != nil {
		q.Explanation = req.Explanation
	}
	if req.AnswerLink != nil {
		q.AnswerLink = req.AnswerLink
	}
	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.Tags != nil {
		q.Tags = datatypes.JSONSlice[string](req.Tags)
	}
}
