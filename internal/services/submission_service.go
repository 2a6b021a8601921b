package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/scoring"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type submissionService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	events         events.EventPublisher
	validator      *validator.Validator
	logger         *slog.Logger
	opLogger       *ServiceLogger
	leaderboardTTL time.Duration
}

func NewSubmissionService(deps Dependencies) SubmissionService {
	return &submissionService{
		repo:           deps.Repo,
		cache:          deps.Cache,
		events:         deps.Events,
		validator:      deps.Validator,
		logger:         deps.Logger,
		opLogger:       NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "submission_service"}),
		leaderboardTTL: deps.LeaderboardTTL,
	}
}

// Submit grades the answers and stores exactly one response per (quiz, user).
// The response insert and the attempt counter increment share a transaction;
// the unique index on responses decides concurrent races.
func (s *submissionService) Submit(ctx context.Context, quizID string, req *SubmitRequest, actor auth.Identity) (result *SubmitResult, err error) {
	op := s.opLogger.WithOperation(ctx, "submit_quiz", actor.ID)
	defer func() {
		op.LogResult(quizID, "quiz", err)
		switch {
		case err == nil:
			metrics.Submissions.WithLabelValues("accepted").Inc()
		case errors.Is(err, ErrAlreadySubmitted):
			metrics.Submissions.WithLabelValues("duplicate").Inc()
		default:
			metrics.Submissions.WithLabelValues("error").Inc()
		}
	}()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := validateAnswers(req.Answers); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if quiz.IsOwnedBy(actor.ID) {
		return nil, ErrOwnQuizSubmit
	}

	exists, err := s.repo.Response().ExistsForUser(ctx, nil, quiz.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check prior response: %w", err)
	}
	if exists {
		return nil, ErrAlreadySubmitted
	}

	score, totalMarks := scoring.Score(quiz.Questions, req.Answers)

	stored := req.Answers
	if stored == nil {
		stored = []models.SubmittedAnswer{}
	}
	rawAnswers, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	response := &models.Response{
		QuizID:     quiz.ID,
		UserID:     actor.ID,
		Score:      score,
		TotalMarks: totalMarks,
		Answers:    datatypes.JSON(rawAnswers),
		Graded:     models.SnapshotQuestions(quiz.Questions),
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Response().Create(ctx, tx, response); err != nil {
			return err
		}
		return s.repo.Quiz().IncrementAttemptCount(ctx, tx, quiz.ID)
	})
	if err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	percentage := scoring.Percentage(score, totalMarks)
	metrics.SubmissionScore.Observe(float64(percentage))

	if err := s.cache.DeletePattern(ctx, cache.LeaderboardPattern(quiz.ID)); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "quiz_id", quiz.ID, "error", err)
	}

	publishEvent(ctx, s.events, s.logger, events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		ResponseID:  response.ID,
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		TeacherID:   quiz.TeacherID,
		UserID:      actor.ID,
		Score:       score,
		TotalMarks:  totalMarks,
		Percentage:  percentage,
		SubmittedAt: response.CreatedAt,
	})

	return &SubmitResult{
		ResponseID: response.ID,
		Score:      score,
		TotalMarks: totalMarks,
		Percentage: percentage,
	}, nil
}

func (s *submissionService) Leaderboard(ctx context.Context, quizID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	key := cache.LeaderboardKey(quizID, limit)
	var cached []LeaderboardEntry
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}

	responses, err := s.repo.Response().Leaderboard(ctx, nil, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(responses))
	for i, r := range responses {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      r.UserID,
			Name:        r.User.Name,
			Email:       r.User.Email,
			Score:       r.Score,
			TotalMarks:  r.TotalMarks,
			Percentage:  scoring.Percentage(r.Score, r.TotalMarks),
			SubmittedAt: r.CreatedAt,
		})
	}

	if err := s.cache.Set(ctx, key, entries, s.leaderboardTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", "quiz_id", quizID, "error", err)
	}
	return entries, nil
}

// Responses re-grades each stored response per question with the same
// grading function used at submission time, against the questions as they
// were when it was graded.
func (s *submissionService) Responses(ctx context.Context, quizID string, actor auth.Identity) ([]ResponseDetail, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}

	var responses []*models.Response
	if quiz.IsOwnedBy(actor.ID) {
		responses, err = s.repo.Response().ListByQuiz(ctx, nil, quiz.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses: %w", err)
		}
	} else {
		own, err := s.repo.Response().GetByQuizAndUser(ctx, nil, quiz.ID, actor.ID)
		if err != nil {
			return nil, notFoundAs(err, ErrResponseNotFound, "get response")
		}
		responses = []*models.Response{own}
	}

	details := make([]ResponseDetail, 0, len(responses))
	for _, r := range responses {
		detail, err := explainResponse(quiz, r)
		if err != nil {
			s.logger.Warn("Skipping undecodable response", "response_id", r.ID, "error", err)
			continue
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *submissionService) Attempted(ctx context.Context, actor auth.Identity) ([]AttemptedQuiz, error) {
	responses, err := s.repo.Response().ListByUser(ctx, nil, actor.ID)
	if err != nil {
		return nil, err
	}

	attempted := make([]AttemptedQuiz, 0, len(responses))
	for _, r := range responses {
		attempted = append(attempted, AttemptedQuiz{
			QuizID:      r.QuizID,
			Title:       r.Quiz.Title,
			Description: r.Quiz.Description,
			ResponseID:  r.ID,
			Score:       r.Score,
			TotalMarks:  r.TotalMarks,
			Percentage:  scoring.Percentage(r.Score, r.TotalMarks),
			SubmittedAt: r.CreatedAt,
		})
	}
	return attempted, nil
}

func explainResponse(quiz *models.Quiz, r *models.Response) (ResponseDetail, error) {
	answers, err := r.DecodeAnswers()
	if err != nil {
		return ResponseDetail{}, err
	}

	graded, ok := r.GradedQuestions()
	if !ok {
		graded = quiz.Questions
	}
	results := scoring.Explain(graded, answers)
	obtained, _ := scoring.Sum(results)

	questions := make([]QuestionResult, 0, len(results))
	for i, res := range results {
		q := &graded[i]
		questions = append(questions, QuestionResult{
			Result:        res,
			Text:          q.Text,
			Type:          q.Type,
			Answer:        answers[q.ID],
			CorrectAnswer: json.RawMessage(q.CorrectAnswer),
			Explanation:   q.Explanation,
		})
	}

	return ResponseDetail{
		ResponseID: r.ID,
		QuizID:     r.QuizID,
		User: UserSummary{
			ID:    r.UserID,
			Name:  r.User.Name,
			Email: r.User.Email,
		},
		Score:         r.Score,
		TotalMarks:    r.TotalMarks,
		Percentage:    scoring.Percentage(r.Score, r.TotalMarks),
		ObtainedMarks: obtained,
		SubmittedAt:   r.CreatedAt,
		Questions:     questions,
	}, nil
}

// validateAnswers trims question ids in place and rejects blank or repeated
// ones. Grading matches the trimmed ids.
func validateAnswers(answers []models.SubmittedAnswer) error {
	var errs ValidationErrors
	seen := make(map[string]struct{}, len(answers))
	for i := range answers {
		field := fmt.Sprintf("answers[%d].question_id", i)
		id := strings.TrimSpace(answers[i].QuestionID)
		answers[i].QuestionID = id
		if id == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required", Rule: "required"})
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, ValidationError{Field: field, Message: "is repeated", Rule: "unique", Value: id})
			continue
		}
		seen[id] = struct{}{}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
