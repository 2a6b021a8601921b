package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuizRequest() *CreateQuizRequest {
	return &CreateQuizRequest{
		Title:       "Geography",
		Description: "capitals",
		Duration:    15,
		IsPublic:    true,
		Questions: []QuestionInput{
			{
				Text:          "Capital of Italy?",
				Type:          models.SingleSelect,
				Options:       []string{"Paris", "Rome", "Madrid"},
				CorrectAnswer: json.RawMessage(`1`),
				Marks:         intPtr(2),
			},
			{
				Text:          "Name the capital of Spain",
				Type:          models.FillInBlank,
				CorrectAnswer: json.RawMessage(`["Madrid"]`),
				Subject:       strPtr(" Geography "),
			},
		},
	}
}

func TestQuizService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	student := env.user(t, "student@example.com", models.RoleStudent)

	view, err := env.services.Quiz().Create(ctx, validQuizRequest(), teacher)
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalMarks)
	assert.Equal(t, 2, view.QuestionsCount)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, 0, view.Questions[0].Position)
	assert.Equal(t, 1, view.Questions[1].Position)
	assert.Equal(t, "Geography", *view.Questions[1].Subject)
	assert.Empty(t, view.Questions[1].Options)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizCreated, published[0].Type)

	owned, err := env.services.Quiz().GetByID(ctx, view.ID, teacher)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(owned.Questions[0].CorrectAnswer))

	other, err := env.services.Quiz().GetByID(ctx, view.ID, student)
	require.NoError(t, err)
	for _, q := range other.Questions {
		assert.Nil(t, q.CorrectAnswer)
		assert.Nil(t, q.Explanation)
	}
}

func TestQuizService_CreateIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)

	req := validQuizRequest()
	req.Questions = append(req.Questions, QuestionInput{
		Text:          "Out of range",
		Type:          models.SingleSelect,
		Options:       []string{"a", "b"},
		CorrectAnswer: json.RawMessage(`5`),
	})

	_, err := env.services.Quiz().Create(ctx, req, teacher)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var quizzes, questions int64
	require.NoError(t, env.db.Model(&models.Quiz{}).Count(&quizzes).Error)
	require.NoError(t, env.db.Model(&models.Question{}).Count(&questions).Error)
	assert.Zero(t, quizzes)
	assert.Zero(t, questions)
}

func TestQuizService_CreateRequiresTeacher(t *testing.T) {
	env := newTestEnv(t)
	student := env.user(t, "student@example.com", models.RoleStudent)

	_, err := env.services.Quiz().Create(context.Background(), validQuizRequest(), student)

	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestQuizService_UpdateOnlyChangesProvidedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	other := env.user(t, "other@example.com", models.RoleTeacher)

	created, err := env.services.Quiz().Create(ctx, validQuizRequest(), teacher)
	require.NoError(t, err)

	updated, err := env.services.Quiz().Update(ctx, created.ID, &UpdateQuizRequest{
		Title:    strPtr("World capitals"),
		Password: strPtr("secret"),
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, "World capitals", updated.Title)
	assert.Equal(t, "capitals", updated.Description)
	assert.Equal(t, 15, updated.Duration)
	assert.True(t, updated.HasPassword)

	_, err = env.services.Quiz().Update(ctx, created.ID, &UpdateQuizRequest{Title: strPtr("hijack")}, other)
	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestQuizService_GetPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)

	req := validQuizRequest()
	req.Password = strPtr("open-sesame")
	created, err := env.services.Quiz().Create(ctx, req, teacher)
	require.NoError(t, err)

	_, err = env.services.Quiz().GetPublic(ctx, created.ID, "")
	assert.ErrorIs(t, err, ErrQuizPasswordRequired)

	_, err = env.services.Quiz().GetPublic(ctx, created.ID, "wrong")
	assert.ErrorIs(t, err, ErrQuizPasswordIncorrect)

	view, err := env.services.Quiz().GetPublic(ctx, created.ID, "open-sesame")
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Nil(t, view.Questions[0].CorrectAnswer)

	private := validQuizRequest()
	private.IsPublic = false
	hidden, err := env.services.Quiz().Create(ctx, private, teacher)
	require.NoError(t, err)
	_, err = env.services.Quiz().GetPublic(ctx, hidden.ID, "")
	assert.ErrorIs(t, err, ErrQuizNotPublic)
}

func TestQuizService_ValidatePasswordAndMetadata(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	student := env.user(t, "student@example.com", models.RoleStudent)

	req := validQuizRequest()
	req.Password = strPtr("open-sesame")
	locked, err := env.services.Quiz().Create(ctx, req, teacher)
	require.NoError(t, err)

	assert.ErrorIs(t, env.services.Quiz().ValidatePassword(ctx, locked.ID, ""), ErrQuizPasswordRequired)
	assert.ErrorIs(t, env.services.Quiz().ValidatePassword(ctx, locked.ID, "wrong"), ErrQuizPasswordIncorrect)
	assert.NoError(t, env.services.Quiz().ValidatePassword(ctx, locked.ID, "open-sesame"))
	assert.ErrorIs(t, env.services.Quiz().ValidatePassword(ctx, "missing", "x"), ErrQuizNotFound)

	open, err := env.services.Quiz().Create(ctx, validQuizRequest(), teacher)
	require.NoError(t, err)
	assert.NoError(t, env.services.Quiz().ValidatePassword(ctx, open.ID, ""))

	private := validQuizRequest()
	private.IsPublic = false
	hidden, err := env.services.Quiz().Create(ctx, private, teacher)
	require.NoError(t, err)
	assert.ErrorIs(t, env.services.Quiz().ValidatePassword(ctx, hidden.ID, ""), ErrQuizNotPublic)

	meta, err := env.services.Quiz().Metadata(ctx, locked.ID, student)
	require.NoError(t, err)
	assert.Nil(t, meta.Questions)
	assert.Equal(t, 2, meta.QuestionsCount)
	assert.Equal(t, 3, meta.TotalMarks)
	assert.True(t, meta.HasPassword)

	_, err = env.services.Quiz().Metadata(ctx, "missing", student)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizService_DeleteToleratesBlobFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	student := env.user(t, "student@example.com", models.RoleStudent)
	quiz := seedQuiz(t, env, teacher.ID)

	images := []models.QuizImage{
		{QuizID: quiz.ID, StoredObject: models.StoredObject{URL: "u1", Key: "quiz-images/ok.png"}},
		{QuizID: quiz.ID, StoredObject: models.StoredObject{URL: "u2", Key: "quiz-images/broken.png"}},
	}
	require.NoError(t, env.db.Create(&images).Error)
	require.NoError(t, env.db.Create(&models.QuestionImage{
		QuestionID:   quiz.Questions[0].ID,
		StoredObject: models.StoredObject{URL: "u3", Key: "question-images/q.png"},
	}).Error)
	env.store.failDelete["quiz-images/broken.png"] = true

	_, err := env.services.Submission().Submit(ctx, quiz.ID, &SubmitRequest{Answers: answersFor(quiz, 2)}, student)
	require.NoError(t, err)

	require.NoError(t, env.services.Quiz().Delete(ctx, quiz.ID, teacher))

	assert.ElementsMatch(t, []string{
		"quiz-images/ok.png",
		"quiz-images/broken.png",
		"question-images/q.png",
	}, env.store.deleted)

	_, err = env.services.Quiz().GetByID(ctx, quiz.ID, teacher)
	assert.ErrorIs(t, err, ErrQuizNotFound)

	for _, model := range []interface{}{&models.Question{}, &models.QuizImage{}, &models.QuestionImage{}, &models.Response{}} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	published := env.publisher.GetPublishedEvents()
	last := published[len(published)-1]
	require.Equal(t, events.EventQuizDeleted, last.Type)
	data := last.Data.(events.QuizDeletedEvent)
	assert.Equal(t, 2, data.BlobsDeleted)
	assert.Equal(t, 1, data.BlobsFailed)
}

func TestQuizService_DeleteByNonOwner(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	other := env.user(t, "other@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, env.db, teacher.ID, testutil.Integer("q", 1, 1, 0))

	err := env.services.Quiz().Delete(context.Background(), quiz.ID, other)
	assert.True(t, IsUnauthorized(err))
	assert.Empty(t, env.store.deleted)
}

func TestQuizService_ListScopes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	other := env.user(t, "other@example.com", models.RoleTeacher)
	student := env.user(t, "student@example.com", models.RoleStudent)

	testutil.CreateQuiz(t, env.db, teacher.ID, testutil.Integer("q", 1, 1, 0))
	testutil.CreateQuiz(t, env.db, other.ID, testutil.Integer("q", 1, 1, 0))

	mine, err := env.services.Quiz().List(ctx, &ListQuizzesRequest{}, teacher)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	public, err := env.services.Quiz().List(ctx, &ListQuizzesRequest{PublicOnly: true}, teacher)
	require.NoError(t, err)
	assert.EqualValues(t, 2, public.Total)

	forStudent, err := env.services.Quiz().List(ctx, &ListQuizzesRequest{}, student)
	require.NoError(t, err)
	assert.EqualValues(t, 2, forStudent.Total)
	for _, q := range forStudent.Quizzes {
		assert.Nil(t, q.Questions)
	}
}
