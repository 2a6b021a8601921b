package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size for form fields.
const multipartOverhead = 1 << 20

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// bindJSON answers 400 itself when the body does not decode.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// formFile opens a multipart file field. The caller must close the returned
// closer once the upload is done.
func formFile(c *gin.Context, field string, maxBytes int64) (storage.File, func(), bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile(field)
	if err != nil {
		status := http.StatusBadRequest
		msg := fmt.Sprintf("Missing file field %q", field)
		if strings.Contains(err.Error(), "request body too large") {
			status = http.StatusRequestEntityTooLarge
			msg = "File exceeds the maximum upload size"
		}
		c.JSON(status, ErrorResponse{Message: msg, Details: err.Error()})
		return storage.File{}, nil, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Unreadable upload", Details: err.Error()})
		return storage.File{}, nil, false
	}

	return storage.File{
		Reader:      f,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, true
}
