package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	BaseHandler
	mediaService   services.MediaService
	maxUploadBytes int64
}

func NewUploadHandler(mediaService services.MediaService, maxUploadBytes int64, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler:    NewBaseHandler(logger),
		mediaService:   mediaService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadQuizImage attaches an image to a quiz
// @Summary Upload quiz image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Quiz ID"
// @Param image formData file true "Image"
// @Success 201 {object} models.QuizImage
// @Failure 413 {object} ErrorResponse
// @Router /uploads/quizzes/{id}/image [post]
func (h *UploadHandler) UploadQuizImage(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "image", h.maxUploadBytes)
	if !ok {
		return
	}
	defer closeFile()

	image, err := h.mediaService.UploadQuizImage(c.Request.Context(), quizID, file, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

func (h *UploadHandler) DeleteQuizImage(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.mediaService.DeleteQuizImage(c.Request.Context(), id, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadQuestionImage attaches an image to a question
// @Summary Upload question image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Question ID"
// @Param image formData file true "Image"
// @Success 201 {object} models.QuestionImage
// @Router /uploads/questions/{id}/image [post]
func (h *UploadHandler) UploadQuestionImage(c *gin.Context) {
	questionID := ParseStringIDParam(c, "id")
	if questionID == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "image", h.maxUploadBytes)
	if !ok {
		return
	}
	defer closeFile()

	image, err := h.mediaService.UploadQuestionImage(c.Request.Context(), questionID, file, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

func (h *UploadHandler) DeleteQuestionImage(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.mediaService.DeleteQuestionImage(c.Request.Context(), id, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadResourceMaterial stores a teaching file, optionally for one class
// @Summary Upload resource material
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param class_id formData string false "Class ID"
// @Success 201 {object} models.ResourceMaterial
// @Router /uploads/resource-materials [post]
func (h *UploadHandler) UploadResourceMaterial(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file", h.maxUploadBytes)
	if !ok {
		return
	}
	defer closeFile()

	var req services.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid form data", Details: err.Error()})
		return
	}

	material, err := h.mediaService.UploadResourceMaterial(c.Request.Context(), &req, file, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, material)
}

func (h *UploadHandler) DeleteResourceMaterial(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.mediaService.DeleteResourceMaterial(c.Request.Context(), id, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
