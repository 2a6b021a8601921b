package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	quizService         services.QuizService
	importExportService services.ImportExportService
	maxUploadBytes      int64
}

func NewQuizHandler(
	quizService services.QuizService,
	importExportService services.ImportExportService,
	maxUploadBytes int64,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:         NewBaseHandler(logger),
		quizService:         quizService,
		importExportService: importExportService,
		maxUploadBytes:      maxUploadBytes,
	}
}

// CreateQuiz creates a quiz together with its questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} services.QuizView
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quiz [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	h.LogRequest(c, "Creating quiz")

	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists the caller's quizzes, or public quizzes with ?public=true
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param public query bool false "Only public quizzes"
// @Param search query string false "Title search"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.QuizListResponse
// @Router /quiz [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.ListQuizzesRequest
	if !bindQuery(c, &req) {
		return
	}

	quizzes, err := h.quizService.List(c.Request.Context(), &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz returns a quiz with its questions
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.QuizView
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz changes the provided quiz fields
// @Summary Update quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param quiz body services.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} services.QuizView
// @Router /quiz/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.UpdateQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes the quiz, its blobs and its responses
// @Summary Delete quiz
// @Tags quizzes
// @Param id path string true "Quiz ID"
// @Success 204
// @Router /quiz/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPublicQuiz serves a public quiz without answers. No login needed.
// @Summary Get public quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Param password query string false "Quiz password"
// @Success 200 {object} services.QuizView
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quiz/{id}/public [get]
func (h *QuizHandler) GetPublicQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.quizService.GetPublic(c.Request.Context(), id, c.Query("password"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetQuizMetadata returns a quiz without its questions
// @Summary Get quiz metadata
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.QuizView
// @Router /quiz/{id}/metadata [get]
func (h *QuizHandler) GetQuizMetadata(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.Metadata(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ValidateQuizPassword checks the password of a public quiz
// @Summary Validate quiz password
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param body body services.ValidateQuizPasswordRequest true "Password"
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Router /quiz/{id}/validate-password [post]
func (h *QuizHandler) ValidateQuizPassword(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	var req services.ValidateQuizPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.quizService.ValidatePassword(c.Request.Context(), id, req.Password); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ExportResponses downloads the quiz's responses as xlsx or csv
// @Summary Export responses
// @Tags quizzes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Quiz ID"
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} file
// @Router /quiz/{id}/export [get]
func (h *QuizHandler) ExportResponses(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	data, err := h.importExportService.ExportResponses(c.Request.Context(), id, format, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-%s-responses.%s"`, id, format))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// ImportQuestions appends questions from an uploaded CSV or xlsx file
// @Summary Import questions
// @Tags quizzes
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Quiz ID"
// @Param file formData file true "CSV or xlsx sheet"
// @Success 200 {object} services.ImportResult
// @Router /quiz/{id}/import [post]
func (h *QuizHandler) ImportQuestions(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", h.maxUploadBytes)
	if !ok {
		return
	}
	defer closeFile()

	result, err := h.importExportService.ImportQuestions(c.Request.Context(), id, file.Reader, file.FileName, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
