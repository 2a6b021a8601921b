package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryStore struct{}

func (memoryStore) Upload(_ context.Context, file storage.File, folder string) (*models.StoredObject, error) {
	key := folder + "/" + uuid.NewString()
	return &models.StoredObject{
		URL:      "http://store.test/" + key,
		Key:      key,
		FileName: file.FileName,
		FileSize: file.Size,
		FileType: file.ContentType,
	}, nil
}

func (memoryStore) Delete(context.Context, string) error { return nil }

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	repo := postgres.NewRepository(db)
	tokens := auth.NewTokenManager("handler-secret", time.Hour)

	svc := services.NewServiceManager(services.Dependencies{
		Repo:           repo,
		Store:          memoryStore{},
		Events:         events.NewMockEventPublisher(logger),
		Tokens:         tokens,
		Validator:      validator.New(),
		Logger:         logger,
		LeaderboardTTL: time.Minute,
	})

	router := gin.New()
	NewHandlerManager(svc, repo, tokens, nil, RouterConfig{}, utils.NewNopLogger()).SetupRoutes(router)
	return &testServer{router: router, db: db, tokens: tokens}
}

func (s *testServer) login(t *testing.T, email string, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := testutil.CreateUser(t, s.db, email, role)
	token, err := s.tokens.Generate(user)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login services.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	w = s.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t)
	_, studentToken := s.login(t, "student@example.com", models.RoleStudent)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/quiz", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/quiz", "garbage", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/quiz", studentToken, nil).Code)

	w := s.do(t, http.MethodPost, "/api/quiz", studentToken, gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/users", studentToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/quiz/missing", studentToken, nil).Code)
}

func TestQuizLifecycleRoutes(t *testing.T) {
	s := newTestServer(t)
	_, teacherToken := s.login(t, "teacher@example.com", models.RoleTeacher)
	_, studentToken := s.login(t, "student@example.com", models.RoleStudent)

	w := s.do(t, http.MethodPost, "/api/quiz", teacherToken, gin.H{
		"title":       "Arithmetic",
		"description": "sums",
		"duration":    10,
		"is_public":   true,
		"questions": []gin.H{
			{"text": "1+1?", "type": "INTEGER", "correct_answer": 2, "marks": 2},
			{"text": "Pick even", "type": "SINGLE_SELECT", "options": []string{"1", "2"}, "correct_answer": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz services.QuizView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))
	require.Len(t, quiz.Questions, 2)

	answers := gin.H{"answers": []gin.H{
		{"question_id": quiz.Questions[0].ID, "answer": 2},
		{"question_id": quiz.Questions[1].ID, "answer": 0},
	}}
	w = s.do(t, http.MethodPost, "/api/quiz/"+quiz.ID+"/submit", studentToken, answers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2.0, result.Score)
	assert.Equal(t, 3, result.TotalMarks)

	w = s.do(t, http.MethodPost, "/api/quiz/"+quiz.ID+"/submit", studentToken, answers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/quiz/"+quiz.ID+"/submit", teacherToken, answers)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/quiz/"+quiz.ID+"/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []services.LeaderboardEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 1)
	assert.Equal(t, "student@example.com", board[0].Email)

	w = s.do(t, http.MethodGet, "/api/quiz/"+quiz.ID+"/export?format=csv", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "student@example.com")

	w = s.do(t, http.MethodGet, "/api/quiz/"+quiz.ID+"/export?format=pdf", teacherToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/quiz/"+quiz.ID, studentToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/quiz/"+quiz.ID, teacherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/quiz/"+quiz.ID+"/leaderboard", "", nil).Code)
}

func TestQuizDiscoveryRoutes(t *testing.T) {
	s := newTestServer(t)
	_, teacherToken := s.login(t, "teacher@example.com", models.RoleTeacher)
	_, studentToken := s.login(t, "student@example.com", models.RoleStudent)

	w := s.do(t, http.MethodPost, "/api/quiz", teacherToken, gin.H{
		"title":       "Locked",
		"description": "needs a password",
		"duration":    5,
		"is_public":   true,
		"password":    "letmein",
		"questions": []gin.H{
			{"text": "2+2?", "type": "INTEGER", "correct_answer": 4},
			{"text": "3+3?", "type": "INTEGER", "correct_answer": 6},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quiz services.QuizView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))

	w = s.do(t, http.MethodGet, "/api/quiz/attempted", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/quiz/"+quiz.ID+"/submit", studentToken, gin.H{"answers": []gin.H{
		{"question_id": quiz.Questions[0].ID, "answer": 4},
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/quiz/attempted", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var attempted []services.AttemptedQuiz
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempted))
	require.Len(t, attempted, 1)
	assert.Equal(t, quiz.ID, attempted[0].QuizID)
	assert.Equal(t, "Locked", attempted[0].Title)
	assert.Equal(t, 50, attempted[0].Percentage)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/quiz/attempted", "", nil).Code)

	w = s.do(t, http.MethodGet, "/api/quiz/"+quiz.ID+"/metadata", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var meta services.QuizView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Empty(t, meta.Questions)
	assert.Equal(t, 2, meta.QuestionsCount)
	assert.True(t, meta.HasPassword)
	assert.NotContains(t, w.Body.String(), "questions\":")

	path := "/api/quiz/" + quiz.ID + "/validate-password"
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, path, "", gin.H{}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, path, "", gin.H{"password": "nope"}).Code)
	w = s.do(t, http.MethodPost, path, "", gin.H{"password": "letmein"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/quiz/missing/validate-password", "", gin.H{"password": "x"}).Code)

	w = s.do(t, http.MethodGet, "/api/users/grades", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grades []services.Grade
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grades))
	assert.Equal(t, services.Grades, grades)
}

func TestCORSDefaultsWhenUnconfigured(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadQuizImageRoute(t *testing.T) {
	s := newTestServer(t)
	teacher, teacherToken := s.login(t, "teacher@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, s.db, teacher.ID, testutil.Integer("q", 1, 1, 0))

	upload := func(field, fileName, contentType string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/uploads/quizzes/"+quiz.ID+"/image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+teacherToken)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload("image", "cover.png", "image/png")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var image models.QuizImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &image))
	assert.Equal(t, quiz.ID, image.QuizID)

	assert.Equal(t, http.StatusBadRequest, upload("other", "cover.png", "image/png").Code)
	assert.Equal(t, http.StatusBadRequest, upload("image", "notes.txt", "text/plain").Code)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		want int
	}{
		"healthy":   {nil, http.StatusOK},
		"unhealthy": {errors.New("connection refused"), http.StatusServiceUnavailable},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(stubPinger{tc.err}).HealthCheck)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), name)
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.NewValidationError("title", "required", ""), http.StatusBadRequest},
		{"permission", services.NewPermissionError("u", "q", "quiz", "update", "not owner"), http.StatusForbidden},
		{"not found", fmt.Errorf("wrap: %w", services.ErrQuizNotFound), http.StatusNotFound},
		{"duplicate submit", services.ErrAlreadySubmitted, http.StatusConflict},
		{"owner submit", services.ErrOwnQuizSubmit, http.StatusForbidden},
		{"quiz password", services.ErrQuizPasswordRequired, http.StatusUnauthorized},
		{"too large", services.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", services.ErrUnsupportedFormat, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	h := NewBaseHandler(utils.NewNopLogger())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleServiceError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
