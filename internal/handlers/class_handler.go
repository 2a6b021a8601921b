package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
	}
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

func (h *ClassHandler) TeachingClasses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	classes, err := h.classService.Teaching(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) EnrolledClasses(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	classes, err := h.classService.Enrolled(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *ClassHandler) JoinClass(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.JoinClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Join(c.Request.Context(), &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Joined class successfully", Data: class})
}

func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req services.UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
