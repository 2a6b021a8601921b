package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// SubmitQuiz grades and records the caller's only response to a quiz
// @Summary Submit quiz
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param answers body services.SubmitRequest true "Answers"
// @Success 201 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/{id}/submit [post]
func (h *SubmissionHandler) SubmitQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting quiz", "quiz_id", quizID, "answers", len(req.Answers))

	result, err := h.submissionService.Submit(c.Request.Context(), quizID, &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetAttemptedQuizzes lists the caller's own submissions
// @Summary Attempted quizzes
// @Tags submissions
// @Produce json
// @Success 200 {array} services.AttemptedQuiz
// @Router /quiz/attempted [get]
func (h *SubmissionHandler) GetAttemptedQuizzes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	attempted, err := h.submissionService.Attempted(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempted)
}

// GetLeaderboard ranks responses by score, earliest first on ties
// @Summary Quiz leaderboard
// @Tags submissions
// @Produce json
// @Param id path string true "Quiz ID"
// @Param limit query int false "Number of entries (default 10)"
// @Success 200 {array} services.LeaderboardEntry
// @Router /quiz/{id}/leaderboard [get]
func (h *SubmissionHandler) GetLeaderboard(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}

	entries, err := h.submissionService.Leaderboard(c.Request.Context(), quizID, queryInt(c, "limit", services.DefaultLeaderboardSize))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetResponses returns graded responses with per-question detail
// @Summary Quiz responses
// @Tags submissions
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {array} services.ResponseDetail
// @Router /quiz/{id}/responses [get]
func (h *SubmissionHandler) GetResponses(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	responses, err := h.submissionService.Responses(c.Request.Context(), quizID, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}
